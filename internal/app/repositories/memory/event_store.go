package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/geo"
)

// EventStore keeps events in a map and answers radius queries with Haversine
type EventStore struct {
	mu     sync.RWMutex
	events map[primitive.ObjectID]*models.Event
}

// NewEventStore creates an empty event store
func NewEventStore() *EventStore {
	return &EventStore{events: make(map[primitive.ObjectID]*models.Event)}
}

// Create inserts an event
func (s *EventStore) Create(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if _, exists := s.events[event.ID]; exists {
		return apperrors.NewConflictError("event already exists")
	}
	s.events[event.ID] = event.Clone()
	return nil
}

// GetByID returns a copy of the event
func (s *EventStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return event.Clone(), nil
}

// Save replaces the event when the stored version matches
func (s *EventStore) Save(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.events[event.ID]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	if stored.Version != event.Version {
		return apperrors.ErrVersionConflict
	}
	event.Version++
	event.UpdatedAt = time.Now().UTC()
	s.events[event.ID] = event.Clone()
	return nil
}

// Delete removes an event
func (s *EventStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

// FindNearby returns events within radiusKm, nearest first
func (s *EventStore) FindNearby(_ context.Context, longitude, latitude, radiusKm float64) ([]*models.Event, error) {
	type hit struct {
		event    *models.Event
		distance float64
	}

	s.mu.RLock()
	var hits []hit
	for _, event := range s.events {
		d := geo.HaversineKm(latitude, longitude, event.Location.Latitude(), event.Location.Longitude())
		if d <= radiusKm {
			hits = append(hits, hit{event: event.Clone(), distance: d})
		}
	}
	s.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	out := make([]*models.Event, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.event)
	}
	return out, nil
}

// ListByUser returns events userID created or attends, soonest first
func (s *EventStore) ListByUser(_ context.Context, userID string) ([]*models.Event, error) {
	s.mu.RLock()
	out := []*models.Event{}
	for _, event := range s.events {
		if event.Creator == userID || event.IsAttending(userID) {
			out = append(out, event.Clone())
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out, nil
}
