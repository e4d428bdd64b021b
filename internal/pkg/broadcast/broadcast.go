// Package broadcast defines the channel services use to push live updates to
// connected clients, plus the Redis relay and test substitutes.
package broadcast

import (
	"context"
	"errors"
	"sync"
)

// Event types
const (
	TypeMessage = "message"
)

// Event is one live update. Every connected client receives every event.
type Event struct {
	Type   string      `json:"type"`
	ChatID string      `json:"chatId"`
	Data   interface{} `json:"data"`
}

// Broadcaster delivers an event to all connected clients
type Broadcaster interface {
	Broadcast(ctx context.Context, evt Event) error
}

// Noop discards every event
type Noop struct{}

// Broadcast implements Broadcaster
func (Noop) Broadcast(context.Context, Event) error { return nil }

// ErrRecorderFailure is returned by a failing Recorder
var ErrRecorderFailure = errors.New("broadcast: recorder set to fail")

// Recorder keeps every event it is given. With Fail set it records nothing
// and returns ErrRecorderFailure.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Broadcast implements Broadcaster
func (r *Recorder) Broadcast(_ context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return ErrRecorderFailure
	}
	r.events = append(r.events, evt)
	return nil
}

// Fail toggles failure mode
func (r *Recorder) Fail(fail bool) {
	r.mu.Lock()
	r.fail = fail
	r.mu.Unlock()
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
