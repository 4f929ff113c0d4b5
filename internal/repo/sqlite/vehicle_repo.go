package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/repo"
)

const vehicleColumns = `id, plate, driver_name, vest_color, responsible_name, driver_phone,
		       responsible_phone, last_seen, previous_seen`

// VehicleRepo is the SQLite VehicleRepo
type VehicleRepo struct {
	db *sql.DB
}

var _ repo.VehicleRepo = (*VehicleRepo)(nil)

// NewVehicleRepo creates a SQLite-backed VehicleRepo
func NewVehicleRepo(db *sql.DB) *VehicleRepo {
	return &VehicleRepo{db: db}
}

func scanVehicle(row rowScanner) (model.Vehicle, error) {
	var v model.Vehicle
	var vest string
	var responsible, driverPhone, responsiblePhone sql.NullString
	var lastSeen, previousSeen sql.NullInt64
	err := row.Scan(&v.ID, &v.Plate, &v.DriverName, &vest, &responsible, &driverPhone,
		&responsiblePhone, &lastSeen, &previousSeen)
	if err != nil {
		return model.Vehicle{}, err
	}
	v.VestColor = model.VestColor(vest)
	v.ResponsibleName = nullString(responsible)
	v.DriverPhone = nullString(driverPhone)
	v.ResponsiblePhone = nullString(responsiblePhone)
	v.LastSeen = fromMillis(lastSeen)
	v.PreviousSeen = fromMillis(previousSeen)
	return v, nil
}

func (r *VehicleRepo) List(ctx context.Context, filter string) ([]model.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	var args []any
	if filter = strings.TrimSpace(filter); filter != "" {
		like := repo.EscapeLike(filter)
		query += ` WHERE plate LIKE '%' || ? || '%' ESCAPE '\'
		   OR driver_name LIKE '%' || ? || '%' ESCAPE '\'
		   OR responsible_name LIKE '%' || ? || '%' ESCAPE '\'`
		args = append(args, like, like, like)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := make([]model.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return vehicles, nil
}

func (r *VehicleRepo) GetByID(ctx context.Context, id int64) (model.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, repo.ErrNotFound)
		}
		return model.Vehicle{}, fmt.Errorf("query vehicle: %w", err)
	}
	return v, nil
}

// FindByPlate relies on SQLite LIKE being case-insensitive for ASCII.
func (r *VehicleRepo) FindByPlate(ctx context.Context, fragment string) (model.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE plate LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY id ASC
		LIMIT 1
	`, repo.EscapeLike(fragment))
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Vehicle{}, fmt.Errorf("plate %q: %w", fragment, repo.ErrNotFound)
		}
		return model.Vehicle{}, fmt.Errorf("search plate: %w", err)
	}
	return v, nil
}

func (r *VehicleRepo) Create(ctx context.Context, f model.VehicleFields) (model.Vehicle, error) {
	now := toMillis(time.Now())
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO vehicles (plate, driver_name, vest_color, responsible_name, driver_phone,
		                      responsible_phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+vehicleColumns,
		f.Plate, f.DriverName, string(f.VestColor), f.ResponsibleName, f.DriverPhone, f.ResponsiblePhone, now, now,
	)
	v, err := scanVehicle(row)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}
	return v, nil
}

func (r *VehicleRepo) Update(ctx context.Context, id int64, f model.VehicleFields) (model.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE vehicles
		SET plate = ?, driver_name = ?, vest_color = ?, responsible_name = ?,
		    driver_phone = ?, responsible_phone = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+vehicleColumns,
		f.Plate, f.DriverName, string(f.VestColor), f.ResponsibleName, f.DriverPhone, f.ResponsiblePhone,
		toMillis(time.Now()), id,
	)
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, repo.ErrNotFound)
		}
		return model.Vehicle{}, fmt.Errorf("update vehicle: %w", err)
	}
	return v, nil
}

func (r *VehicleRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("vehicle %d: %w", id, repo.ErrNotFound)
	}
	return nil
}

func (r *VehicleRepo) RecordSighting(ctx context.Context, id int64, at time.Time) (model.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE vehicles
		SET previous_seen = COALESCE(last_seen, previous_seen),
		    last_seen = ?,
		    updated_at = ?
		WHERE id = ?
		RETURNING `+vehicleColumns,
		toMillis(at), toMillis(time.Now()), id,
	)
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, repo.ErrNotFound)
		}
		return model.Vehicle{}, fmt.Errorf("record sighting: %w", err)
	}
	return v, nil
}
