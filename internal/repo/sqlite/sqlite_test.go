package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vantrack/server/internal/db"
	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/repo"
)

// setupTestDB opens an in-memory database with the real migrations applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	testDB, err := db.OpenSQLite(ctx, db.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Close() })
	require.NoError(t, db.Migrate(ctx, testDB, "sqlite"))
	return testDB
}

func strPtr(s string) *string { return &s }

func seedVehicle(t *testing.T, r *VehicleRepo, plate, driver string) model.Vehicle {
	t.Helper()
	v, err := r.Create(context.Background(), model.VehicleFields{
		Plate:      plate,
		DriverName: driver,
		VestColor:  model.VestGreen,
	})
	require.NoError(t, err)
	return v
}

func TestVehicleRepo_CreateAndGet(t *testing.T) {
	r := NewVehicleRepo(setupTestDB(t))
	ctx := context.Background()

	created, err := r.Create(ctx, model.VehicleFields{
		Plate:            "5545JKZ",
		DriverName:       "Mario Ruiz",
		VestColor:        model.VestOrange,
		ResponsibleName:  strPtr("Lucía"),
		DriverPhone:      strPtr("600111222"),
		ResponsiblePhone: nil,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Nil(t, created.LastSeen)
	assert.Nil(t, created.PreviousSeen)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, model.VestOrange, got.VestColor)
	require.NotNil(t, got.DriverPhone)
	assert.Equal(t, "600111222", *got.DriverPhone)
	assert.Nil(t, got.ResponsiblePhone)

	_, err = r.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestVehicleRepo_FindByPlate(t *testing.T) {
	r := NewVehicleRepo(setupTestDB(t))
	ctx := context.Background()
	first := seedVehicle(t, r, "5545JKZ", "Mario")
	seedVehicle(t, r, "1234ABC", "Ana")
	seedVehicle(t, r, "9545JKZ", "Luis")

	got, err := r.FindByPlate(ctx, "jkz")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID, "lowest id wins when several plates match")

	got, err = r.FindByPlate(ctx, "34AB")
	require.NoError(t, err)
	assert.Equal(t, "1234ABC", got.Plate)

	_, err = r.FindByPlate(ctx, "ABC-123")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = r.FindByPlate(ctx, "%")
	assert.ErrorIs(t, err, repo.ErrNotFound, "wildcards are matched literally")
}

func TestVehicleRepo_ListFilterAndOrder(t *testing.T) {
	r := NewVehicleRepo(setupTestDB(t))
	ctx := context.Background()
	seedVehicle(t, r, "BBB111", "Zoe")
	seedVehicle(t, r, "AAA222", "Mario")
	v3, err := r.Create(ctx, model.VehicleFields{
		Plate: "CCC333", DriverName: "Ana", VestColor: model.VestRed, ResponsibleName: strPtr("Marta"),
	})
	require.NoError(t, err)

	all, err := r.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].ID < all[1].ID && all[1].ID < all[2].ID)

	filtered, err := r.List(ctx, "mar")
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "AAA222", filtered[0].Plate)
	assert.Equal(t, v3.ID, filtered[1].ID)
}

func TestVehicleRepo_UpdateKeepsSightings(t *testing.T) {
	r := NewVehicleRepo(setupTestDB(t))
	ctx := context.Background()
	v := seedVehicle(t, r, "5545JKZ", "Mario")
	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	_, err := r.RecordSighting(ctx, v.ID, at)
	require.NoError(t, err)

	updated, err := r.Update(ctx, v.ID, model.VehicleFields{
		Plate: "5545JKY", DriverName: "Mario Ruiz", VestColor: model.VestYellow,
	})
	require.NoError(t, err)
	assert.Equal(t, "5545JKY", updated.Plate)
	assert.Equal(t, model.VestYellow, updated.VestColor)
	require.NotNil(t, updated.LastSeen)
	assert.True(t, updated.LastSeen.Equal(at))

	_, err = r.Update(ctx, 9999, model.VehicleFields{Plate: "X", DriverName: "Y", VestColor: model.VestGreen})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestVehicleRepo_Delete(t *testing.T) {
	r := NewVehicleRepo(setupTestDB(t))
	ctx := context.Background()
	v := seedVehicle(t, r, "5545JKZ", "Mario")

	require.NoError(t, r.Delete(ctx, v.ID))
	_, err := r.GetByID(ctx, v.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, v.ID), repo.ErrNotFound)
}

func TestVehicleRepo_RecordSighting(t *testing.T) {
	r := NewVehicleRepo(setupTestDB(t))
	ctx := context.Background()
	v := seedVehicle(t, r, "5545JKZ", "Mario")

	t1 := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 10, 16, 13, 45, 0, 0, time.UTC)

	got, err := r.RecordSighting(ctx, v.ID, t1)
	require.NoError(t, err)
	require.NotNil(t, got.LastSeen)
	assert.True(t, got.LastSeen.Equal(t1))
	assert.Nil(t, got.PreviousSeen, "first sighting leaves previous_seen null")

	got, err = r.RecordSighting(ctx, v.ID, t2)
	require.NoError(t, err)
	require.NotNil(t, got.PreviousSeen)
	assert.True(t, got.PreviousSeen.Equal(t1))
	assert.True(t, got.LastSeen.Equal(t2))

	_, err = r.RecordSighting(ctx, 9999, t2)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestAccessCodeRepo_UpsertDailyKeepsOneRow(t *testing.T) {
	database := setupTestDB(t)
	r := NewAccessCodeRepo(database)
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

	_, err := r.GetDaily(ctx, "2026-10-16")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	first, err := r.UpsertDaily(ctx, "A1B2C3D4", "2026-10-16", now)
	require.NoError(t, err)
	second, err := r.UpsertDaily(ctx, "E5F6G7H8", "2026-10-16", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "regeneration replaces the row for the date")

	got, err := r.GetDaily(ctx, "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, "E5F6G7H8", got.Code)
	assert.Equal(t, model.CodeTypeDaily, got.Type)
	assert.True(t, got.Active)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	var count int
	require.NoError(t, database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM access_codes WHERE code_type = 'daily' AND code_date = ?`, "2026-10-16").Scan(&count))
	assert.Equal(t, 1, count)

	_, err = r.UpsertDaily(ctx, "ZZZZ0000", "2026-10-17", now)
	require.NoError(t, err)
	got, err = r.GetDaily(ctx, "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, "E5F6G7H8", got.Code, "other dates are untouched")
}

func TestAccessLogRepo_AppendAndList(t *testing.T) {
	r := NewAccessLogRepo(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

	require.NoError(t, r.Append(ctx, model.AccessLogEntry{CodeUsed: "A1B2", UserType: model.CodeTypeDaily, AccessedAt: base, IP: "10.0.0.1"}))
	require.NoError(t, r.Append(ctx, model.AccessLogEntry{CodeUsed: "A1B2", UserType: model.CodeTypeDaily, AccessedAt: base.Add(time.Hour)}))

	entries, err := r.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].AccessedAt.Equal(base.Add(time.Hour)))
	assert.Equal(t, "", entries[0].IP)
	assert.Equal(t, "10.0.0.1", entries[1].IP)

	entries, err = r.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
