// Package fleet holds the vehicle lookup, sighting and roster logic.
package fleet

import (
	"errors"
	"fmt"
)

var (
	// ErrVehicleNotFound is returned when an id names no vehicle.
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrEmptyPlate is returned when a search is attempted with a blank plate.
	ErrEmptyPlate = errors.New("plate is required")
)

// PlateNotFoundError reports a search that matched nothing after both attempts.
type PlateNotFoundError struct {
	Plate string
}

func (e *PlateNotFoundError) Error() string {
	return fmt.Sprintf("no vehicle found with plate %q", e.Plate)
}

// ValidationError rejects roster input before it reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
