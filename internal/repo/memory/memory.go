// Package memory implements the repo interfaces in process memory. It backs
// STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/repo"
)

type VehicleStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]model.Vehicle
}

var _ repo.VehicleRepo = (*VehicleStore)(nil)

func NewVehicleStore() *VehicleStore {
	return &VehicleStore{nextID: 1, data: make(map[int64]model.Vehicle)}
}

func (s *VehicleStore) sorted() []model.Vehicle {
	out := make([]model.Vehicle, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *VehicleStore) List(_ context.Context, filter string) ([]model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Vehicle, 0, len(s.data))
	for _, v := range s.sorted() {
		if repo.MatchesFilter(v, filter) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *VehicleStore) GetByID(_ context.Context, id int64) (model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[id]
	if !ok {
		return model.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, repo.ErrNotFound)
	}
	return v, nil
}

func (s *VehicleStore) FindByPlate(_ context.Context, fragment string) (model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToUpper(fragment)
	for _, v := range s.sorted() {
		if strings.Contains(strings.ToUpper(v.Plate), needle) {
			return v, nil
		}
	}
	return model.Vehicle{}, fmt.Errorf("plate %q: %w", fragment, repo.ErrNotFound)
}

func (s *VehicleStore) Create(_ context.Context, f model.VehicleFields) (model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := applyFields(model.Vehicle{ID: s.nextID}, f)
	s.data[v.ID] = v
	s.nextID++
	return v, nil
}

func (s *VehicleStore) Update(_ context.Context, id int64, f model.VehicleFields) (model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[id]
	if !ok {
		return model.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, repo.ErrNotFound)
	}
	v = applyFields(v, f)
	s.data[id] = v
	return v, nil
}

func (s *VehicleStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return fmt.Errorf("vehicle %d: %w", id, repo.ErrNotFound)
	}
	delete(s.data, id)
	return nil
}

func (s *VehicleStore) RecordSighting(_ context.Context, id int64, at time.Time) (model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[id]
	if !ok {
		return model.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, repo.ErrNotFound)
	}
	v = repo.ApplySighting(v, at)
	s.data[id] = v
	return v, nil
}

func applyFields(v model.Vehicle, f model.VehicleFields) model.Vehicle {
	v.Plate = f.Plate
	v.DriverName = f.DriverName
	v.VestColor = f.VestColor
	v.ResponsibleName = f.ResponsibleName
	v.DriverPhone = f.DriverPhone
	v.ResponsiblePhone = f.ResponsiblePhone
	return v
}

type AccessCodeStore struct {
	mu    sync.Mutex
	daily map[string]model.AccessCode
}

var _ repo.AccessCodeRepo = (*AccessCodeStore)(nil)

func NewAccessCodeStore() *AccessCodeStore {
	return &AccessCodeStore{daily: make(map[string]model.AccessCode)}
}

func (s *AccessCodeStore) GetDaily(_ context.Context, date string) (model.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.daily[date]
	if !ok || !c.Active {
		return model.AccessCode{}, fmt.Errorf("daily code for %s: %w", date, repo.ErrNotFound)
	}
	return c, nil
}

func (s *AccessCodeStore) UpsertDaily(_ context.Context, code, date string, now time.Time) (model.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.daily[date]
	if !ok {
		c = model.AccessCode{ID: uuid.New(), Type: model.CodeTypeDaily, Date: date, CreatedAt: now}
	}
	c.Code = code
	c.Active = true
	c.UpdatedAt = now
	s.daily[date] = c
	return c, nil
}

type AccessLogStore struct {
	mu      sync.Mutex
	entries []model.AccessLogEntry
}

var _ repo.AccessLogRepo = (*AccessLogStore)(nil)

func NewAccessLogStore() *AccessLogStore {
	return &AccessLogStore{}
}

func (s *AccessLogStore) Append(_ context.Context, entry model.AccessLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *AccessLogStore) ListRecent(_ context.Context, limit int) ([]model.AccessLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AccessLogEntry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}
