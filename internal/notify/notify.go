// Package notify publishes sighting events to downstream consumers.
package notify

import (
	"context"
	"time"

	"github.com/vantrack/server/internal/model"
)

// SightingEvent is the JSON payload published after a sighting is recorded
type SightingEvent struct {
	VehicleID    int64      `json:"id"`
	Plate        string     `json:"plate"`
	LastSeen     *time.Time `json:"last_seen"`
	PreviousSeen *time.Time `json:"previous_seen"`
}

// NewSightingEvent builds the event for an updated vehicle
func NewSightingEvent(v model.Vehicle) SightingEvent {
	return SightingEvent{
		VehicleID:    v.ID,
		Plate:        v.Plate,
		LastSeen:     v.LastSeen,
		PreviousSeen: v.PreviousSeen,
	}
}

// Publisher delivers sighting events
type Publisher interface {
	PublishSighting(ctx context.Context, event SightingEvent) error
	Close()
}

// Nop discards every event
type Nop struct{}

func (Nop) PublishSighting(context.Context, SightingEvent) error { return nil }
func (Nop) Close()                                               {}
