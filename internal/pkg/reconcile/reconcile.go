// Package reconcile records membership updates that were only partly applied
// so an operator or a background job can repair them.
package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Operations that can leave documents out of step
const (
	OpJoinEvent   = "join_event"
	OpLeaveEvent  = "leave_event"
	OpDeleteEvent  = "delete_event"
)

// Signal describes one partially applied update
type Signal struct {
	Operation string    `json:"operation"`
	EventID   string    `json:"eventId,omitempty"`
	ChatID    string    `json:"chatId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// Sink receives reconciliation signals
type Sink interface {
	Emit(ctx context.Context, sig Signal) error
}

// LogSink writes signals to the log at error level
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a LogSink
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "reconcile").Logger()}
}

// Emit implements Sink
func (s *LogSink) Emit(_ context.Context, sig Signal) error {
	s.logger.Error().
		Str("operation", sig.Operation).
		Str("eventID", sig.EventID).
		Str("chatID", sig.ChatID).
		Str("userID", sig.UserID).
		Str("reason", sig.Reason).
		Time("at", sig.At).
		Msg("Membership update needs reconciliation")
	return nil
}

// Recorder collects signals in memory
type Recorder struct {
	mu      sync.Mutex
	signals []Signal
}

// Emit implements Sink
func (r *Recorder) Emit(_ context.Context, sig Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, sig)
	return nil
}

// Signals returns a copy of the recorded signals
func (r *Recorder) Signals() []Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Signal(nil), r.signals...)
}
