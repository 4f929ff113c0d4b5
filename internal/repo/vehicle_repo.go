package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vantrack/server/internal/model"
)

const vehicleColumns = `id, plate, driver_name, vest_color, responsible_name, driver_phone,
		       responsible_phone, last_seen, previous_seen`

type vehicleRepo struct {
	db *sql.DB
}

// NewVehicleRepo creates a Postgres-backed VehicleRepo
func NewVehicleRepo(db *sql.DB) VehicleRepo {
	return &vehicleRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (model.Vehicle, error) {
	var v model.Vehicle
	var vest string
	var responsible, driverPhone, responsiblePhone sql.NullString
	var lastSeen, previousSeen sql.NullTime
	err := row.Scan(
		&v.ID,
		&v.Plate,
		&v.DriverName,
		&vest,
		&responsible,
		&driverPhone,
		&responsiblePhone,
		&lastSeen,
		&previousSeen,
	)
	if err != nil {
		return model.Vehicle{}, err
	}
	v.VestColor = model.VestColor(vest)
	v.ResponsibleName = nullString(responsible)
	v.DriverPhone = nullString(driverPhone)
	v.ResponsiblePhone = nullString(responsiblePhone)
	v.LastSeen = nullTime(lastSeen)
	v.PreviousSeen = nullTime(previousSeen)
	return v, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// List returns vehicles ordered by id, optionally filtered by plate, driver or responsible name
func (r *vehicleRepo) List(ctx context.Context, filter string) ([]model.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	var args []any
	if filter = strings.TrimSpace(filter); filter != "" {
		query += ` WHERE plate ILIKE '%' || $1 || '%'
		   OR driver_name ILIKE '%' || $1 || '%'
		   OR responsible_name ILIKE '%' || $1 || '%'`
		args = append(args, EscapeLike(filter))
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := make([]model.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", err)
	}
	return vehicles, nil
}

// GetByID retrieves a vehicle by ID
func (r *vehicleRepo) GetByID(ctx context.Context, id int64) (model.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, ErrNotFound)
		}
		return model.Vehicle{}, fmt.Errorf("failed to query vehicle: %w", err)
	}
	return v, nil
}

// FindByPlate returns the first vehicle whose plate contains fragment
func (r *vehicleRepo) FindByPlate(ctx context.Context, fragment string) (model.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE plate ILIKE '%' || $1 || '%'
		ORDER BY id ASC
		LIMIT 1
	`, EscapeLike(fragment))
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Vehicle{}, fmt.Errorf("plate %q: %w", fragment, ErrNotFound)
		}
		return model.Vehicle{}, fmt.Errorf("failed to search plate: %w", err)
	}
	return v, nil
}

// Create inserts a new vehicle and returns it with its assigned id
func (r *vehicleRepo) Create(ctx context.Context, f model.VehicleFields) (model.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO vehicles (plate, driver_name, vest_color, responsible_name, driver_phone, responsible_phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+vehicleColumns,
		f.Plate, f.DriverName, string(f.VestColor), f.ResponsibleName, f.DriverPhone, f.ResponsiblePhone,
	)
	v, err := scanVehicle(row)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("failed to create vehicle: %w", err)
	}
	return v, nil
}

// Update overwrites the editable fields of a vehicle
func (r *vehicleRepo) Update(ctx context.Context, id int64, f model.VehicleFields) (model.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE vehicles
		SET plate = $2, driver_name = $3, vest_color = $4, responsible_name = $5,
		    driver_phone = $6, responsible_phone = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+vehicleColumns,
		id, f.Plate, f.DriverName, string(f.VestColor), f.ResponsibleName, f.DriverPhone, f.ResponsiblePhone,
	)
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, ErrNotFound)
		}
		return model.Vehicle{}, fmt.Errorf("failed to update vehicle: %w", err)
	}
	return v, nil
}

// Delete removes a vehicle permanently
func (r *vehicleRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("vehicle %d: %w", id, ErrNotFound)
	}
	return nil
}

// RecordSighting shifts last_seen into previous_seen and sets last_seen = at
func (r *vehicleRepo) RecordSighting(ctx context.Context, id int64, at time.Time) (model.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE vehicles
		SET previous_seen = COALESCE(last_seen, previous_seen),
		    last_seen = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+vehicleColumns,
		id, at,
	)
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, ErrNotFound)
		}
		return model.Vehicle{}, fmt.Errorf("failed to record sighting: %w", err)
	}
	return v, nil
}
