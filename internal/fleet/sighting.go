package fleet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/notify"
	"github.com/vantrack/server/internal/repo"
)

const (
	msPerHour   = int64(time.Hour / time.Millisecond)
	msPerMinute = int64(time.Minute / time.Millisecond)
)

// Elapsed is the whole hours and remaining minutes between two sightings.
type Elapsed struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
}

// ElapsedBetween splits last-prev into hours and minutes. Both parts are
// floored; minutes come from the remainder, which keeps the sign of the delta,
// so a delta of -3h45m yields -4h -45m.
func ElapsedBetween(prev, last time.Time) Elapsed {
	ms := last.Sub(prev).Milliseconds()
	return Elapsed{
		Hours:   floorDiv(ms, msPerHour),
		Minutes: floorDiv(ms%msPerHour, msPerMinute),
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// SightingGap returns the elapsed time between the previous and last sighting,
// or false when either is missing.
func SightingGap(v model.Vehicle) (Elapsed, bool) {
	if v.PreviousSeen == nil || v.LastSeen == nil {
		return Elapsed{}, false
	}
	return ElapsedBetween(*v.PreviousSeen, *v.LastSeen), true
}

// Recorder marks vehicles as seen.
type Recorder struct {
	vehicles  repo.VehicleRepo
	publisher notify.Publisher
	now       func() time.Time
	log       logging.Logger
}

func NewRecorder(vehicles repo.VehicleRepo, publisher notify.Publisher, now func() time.Time, log logging.Logger) *Recorder {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	if now == nil {
		now = time.Now
	}
	return &Recorder{vehicles: vehicles, publisher: publisher, now: now, log: log}
}

// MarkSeen records a sighting of vehicle id at the current time and returns
// the updated record. The store applies the timestamp shift in one update.
func (r *Recorder) MarkSeen(ctx context.Context, id int64) (model.Vehicle, error) {
	at := r.now().UTC()
	v, err := r.vehicles.RecordSighting(ctx, id, at)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Vehicle{}, fmt.Errorf("%w: %d", ErrVehicleNotFound, id)
		}
		r.log.Error(ctx, "record sighting failed", "vehicle_id", id, "error", err)
		return model.Vehicle{}, fmt.Errorf("record sighting: %w", err)
	}

	r.log.Info(ctx, "sighting recorded", "vehicle_id", v.ID, "plate", v.Plate)
	if err := r.publisher.PublishSighting(ctx, notify.NewSightingEvent(v)); err != nil {
		r.log.Warn(ctx, "publish sighting failed", "vehicle_id", v.ID, "error", err)
	}
	return v, nil
}
