package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/repo"
)

func TestVehicleStore_Lifecycle(t *testing.T) {
	s := NewVehicleStore()
	ctx := context.Background()

	a, err := s.Create(ctx, model.VehicleFields{Plate: "5545JKZ", DriverName: "Mario", VestColor: model.VestGreen})
	require.NoError(t, err)
	b, err := s.Create(ctx, model.VehicleFields{Plate: "9545JKZ", DriverName: "Ana", VestColor: model.VestRed})
	require.NoError(t, err)
	assert.Equal(t, a.ID+1, b.ID)

	found, err := s.FindByPlate(ctx, "jkz")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)

	at := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	seen, err := s.RecordSighting(ctx, b.ID, at)
	require.NoError(t, err)
	assert.True(t, seen.LastSeen.Equal(at))

	updated, err := s.Update(ctx, b.ID, model.VehicleFields{Plate: "9545JKX", DriverName: "Ana", VestColor: model.VestRed})
	require.NoError(t, err)
	require.NotNil(t, updated.LastSeen, "edits never touch sighting timestamps")

	list, err := s.List(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "9545JKX", list[0].Plate)

	require.NoError(t, s.Delete(ctx, a.ID))
	_, err = s.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestAccessCodeStore_UpsertDaily(t *testing.T) {
	s := NewAccessCodeStore()
	ctx := context.Background()
	now := time.Now()

	first, err := s.UpsertDaily(ctx, "AAAA1111", "2026-10-16", now)
	require.NoError(t, err)
	second, err := s.UpsertDaily(ctx, "BBBB2222", "2026-10-16", now)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := s.GetDaily(ctx, "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, "BBBB2222", got.Code)

	_, err = s.GetDaily(ctx, "2026-10-15")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestAccessLogStore_ListRecentNewestFirst(t *testing.T) {
	s := NewAccessLogStore()
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, model.AccessLogEntry{CodeUsed: "one"}))
	require.NoError(t, s.Append(ctx, model.AccessLogEntry{CodeUsed: "two"}))

	entries, err := s.ListRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "two", entries[0].CodeUsed)
}
