package fleet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/repo"
)

// vestAliases accepts the Spanish names used on the original paper roster.
var vestAliases = map[string]model.VestColor{
	"verde":    model.VestGreen,
	"amarillo": model.VestYellow,
	"naranja":  model.VestOrange,
	"rojo":     model.VestRed,
	"otro":     model.VestOther,
}

// ParseVestColor maps input to a VestColor. Blank input defaults to green.
func ParseVestColor(s string) (model.VestColor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return model.VestGreen, nil
	}
	if c := model.VestColor(s); c.Valid() {
		return c, nil
	}
	if c, ok := vestAliases[s]; ok {
		return c, nil
	}
	return "", &ValidationError{Field: "vest_color", Message: fmt.Sprintf("unknown vest color %q", s)}
}

// VehicleInput is the raw admin form for creating or editing a vehicle.
type VehicleInput struct {
	Plate            string
	DriverName       string
	VestColor        string
	ResponsibleName  string
	DriverPhone      string
	ResponsiblePhone string
}

// Normalize validates the input and converts it to storable fields.
func (in VehicleInput) Normalize() (model.VehicleFields, error) {
	plate := strings.ToUpper(strings.TrimSpace(in.Plate))
	if plate == "" {
		return model.VehicleFields{}, &ValidationError{Field: "plate", Message: "plate is required"}
	}
	driver := strings.TrimSpace(in.DriverName)
	if driver == "" {
		return model.VehicleFields{}, &ValidationError{Field: "driver_name", Message: "driver name is required"}
	}
	vest, err := ParseVestColor(in.VestColor)
	if err != nil {
		return model.VehicleFields{}, err
	}
	return model.VehicleFields{
		Plate:            plate,
		DriverName:       driver,
		VestColor:        vest,
		ResponsibleName:  optional(strings.TrimSpace(in.ResponsibleName)),
		DriverPhone:      optional(digitsOnly(in.DriverPhone)),
		ResponsiblePhone: optional(digitsOnly(in.ResponsiblePhone)),
	}, nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, s)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Roster is the admin service over the vehicle list.
type Roster struct {
	vehicles repo.VehicleRepo
	log      logging.Logger
}

func NewRoster(vehicles repo.VehicleRepo, log logging.Logger) *Roster {
	return &Roster{vehicles: vehicles, log: log}
}

func (s *Roster) List(ctx context.Context, filter string) ([]model.Vehicle, error) {
	vehicles, err := s.vehicles.List(ctx, filter)
	if err != nil {
		s.log.Error(ctx, "list vehicles failed", "error", err)
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *Roster) Get(ctx context.Context, id int64) (model.Vehicle, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	return v, s.translate(ctx, "get vehicle", id, err)
}

// Create validates and inserts a vehicle. Validation errors are returned
// without touching the store.
func (s *Roster) Create(ctx context.Context, in VehicleInput) (model.Vehicle, error) {
	fields, err := in.Normalize()
	if err != nil {
		return model.Vehicle{}, err
	}
	v, err := s.vehicles.Create(ctx, fields)
	if err != nil {
		s.log.Error(ctx, "create vehicle failed", "plate", fields.Plate, "error", err)
		return model.Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}
	s.log.Info(ctx, "vehicle created", "vehicle_id", v.ID, "plate", v.Plate)
	return v, nil
}

func (s *Roster) Update(ctx context.Context, id int64, in VehicleInput) (model.Vehicle, error) {
	fields, err := in.Normalize()
	if err != nil {
		return model.Vehicle{}, err
	}
	v, err := s.vehicles.Update(ctx, id, fields)
	if err := s.translate(ctx, "update vehicle", id, err); err != nil {
		return model.Vehicle{}, err
	}
	s.log.Info(ctx, "vehicle updated", "vehicle_id", id)
	return v, nil
}

func (s *Roster) Delete(ctx context.Context, id int64) error {
	if err := s.translate(ctx, "delete vehicle", id, s.vehicles.Delete(ctx, id)); err != nil {
		return err
	}
	s.log.Info(ctx, "vehicle deleted", "vehicle_id", id)
	return nil
}

func (s *Roster) translate(ctx context.Context, op string, id int64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrVehicleNotFound, id)
	}
	s.log.Error(ctx, op+" failed", "vehicle_id", id, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}
