package reconcile

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLogSinkWritesSignalFields(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(zerolog.New(&buf))

	err := sink.Emit(context.Background(), Signal{
		Operation: OpJoinEvent,
		EventID:   "e1",
		ChatID:    "c1",
		UserID:    "u1",
		Reason:    "chat save failed",
		At:        time.Now(),
	})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"operation":"join_event"`, `"eventID":"e1"`, `"chatID":"c1"`, `"level":"error"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_ = r.Emit(context.Background(), Signal{Operation: OpLeaveEvent})
	_ = r.Emit(context.Background(), Signal{Operation: OpDeleteEvent})

	got := r.Signals()
	if len(got) != 2 || got[0].Operation != OpLeaveEvent || got[1].Operation != OpDeleteEvent {
		t.Errorf("Signals() = %+v", got)
	}
}
