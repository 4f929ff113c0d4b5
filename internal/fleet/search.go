package fleet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/repo"
)

var separatorStripper = strings.NewReplacer("-", "", " ", "")

// NormalizePlate trims and uppercases user input.
func NormalizePlate(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// StripSeparators removes hyphens and spaces from a plate.
func StripSeparators(plate string) string {
	return separatorStripper.Replace(plate)
}

// SearchResult is the vehicle found and whether the separator-free fallback found it.
type SearchResult struct {
	Vehicle  model.Vehicle
	Flexible bool
}

// Resolver looks vehicles up by plate.
type Resolver struct {
	vehicles repo.VehicleRepo
	log      logging.Logger
}

func NewResolver(vehicles repo.VehicleRepo, log logging.Logger) *Resolver {
	return &Resolver{vehicles: vehicles, log: log}
}

// Search finds a vehicle whose plate contains the normalized input. When that
// yields nothing it retries with hyphens and spaces removed. A miss returns
// *PlateNotFoundError naming the normalized input.
func (r *Resolver) Search(ctx context.Context, raw string) (SearchResult, error) {
	plate := NormalizePlate(raw)
	if plate == "" {
		return SearchResult{}, ErrEmptyPlate
	}

	v, err := r.vehicles.FindByPlate(ctx, plate)
	if err == nil {
		return SearchResult{Vehicle: v}, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		r.log.Error(ctx, "plate search failed", "plate", plate, "error", err)
		return SearchResult{}, fmt.Errorf("search plate: %w", err)
	}

	stripped := StripSeparators(plate)
	if stripped == "" || stripped == plate {
		return SearchResult{}, &PlateNotFoundError{Plate: plate}
	}

	r.log.Debug(ctx, "retrying plate search without separators", "plate", plate, "stripped", stripped)
	v, err = r.vehicles.FindByPlate(ctx, stripped)
	if err == nil {
		return SearchResult{Vehicle: v, Flexible: true}, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		r.log.Error(ctx, "flexible plate search failed", "plate", stripped, "error", err)
		return SearchResult{}, fmt.Errorf("search plate: %w", err)
	}
	return SearchResult{}, &PlateNotFoundError{Plate: plate}
}
