package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vantrack/server/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// VehicleRepo defines the interface for vehicle roster operations
type VehicleRepo interface {
	List(ctx context.Context, filter string) ([]model.Vehicle, error)
	GetByID(ctx context.Context, id int64) (model.Vehicle, error)
	// FindByPlate returns the lowest-id vehicle whose plate contains fragment,
	// compared case-insensitively.
	FindByPlate(ctx context.Context, fragment string) (model.Vehicle, error)
	Create(ctx context.Context, f model.VehicleFields) (model.Vehicle, error)
	Update(ctx context.Context, id int64, f model.VehicleFields) (model.Vehicle, error)
	Delete(ctx context.Context, id int64) error
	// RecordSighting moves last_seen into previous_seen (when set) and stores at
	// as the new last_seen, in one statement.
	RecordSighting(ctx context.Context, id int64, at time.Time) (model.Vehicle, error)
}

// AccessCodeRepo defines the interface for access code operations
type AccessCodeRepo interface {
	GetDaily(ctx context.Context, date string) (model.AccessCode, error)
	// UpsertDaily makes code the single active daily code for date.
	UpsertDaily(ctx context.Context, code, date string, now time.Time) (model.AccessCode, error)
}

// AccessLogRepo defines the interface for the append-only access log
type AccessLogRepo interface {
	Append(ctx context.Context, entry model.AccessLogEntry) error
	ListRecent(ctx context.Context, limit int) ([]model.AccessLogEntry, error)
}

// EscapeLike escapes LIKE metacharacters so s matches literally with ESCAPE '\'.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ApplySighting returns v with the sighting at applied: a non-null last_seen
// shifts into previous_seen and at becomes last_seen.
func ApplySighting(v model.Vehicle, at time.Time) model.Vehicle {
	if v.LastSeen != nil {
		prev := *v.LastSeen
		v.PreviousSeen = &prev
	}
	v.LastSeen = &at
	return v
}

// MatchesFilter reports whether filter occurs case-insensitively in the plate,
// driver name or responsible name. An empty filter matches everything.
func MatchesFilter(v model.Vehicle, filter string) bool {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return true
	}
	if strings.Contains(strings.ToLower(v.Plate), filter) ||
		strings.Contains(strings.ToLower(v.DriverName), filter) {
		return true
	}
	return v.ResponsibleName != nil && strings.Contains(strings.ToLower(*v.ResponsibleName), filter)
}
