package broadcast

import (
	"context"
	"errors"
	"testing"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder()

	if err := rec.Broadcast(ctx, Event{Type: TypeMessage, ChatID: "c1"}); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}

	rec.Fail(true)
	if err := rec.Broadcast(ctx, Event{Type: TypeMessage, ChatID: "c2"}); !errors.Is(err, ErrRecorderFailure) {
		t.Fatalf("Broadcast() error = %v, want ErrRecorderFailure", err)
	}

	events := rec.Events()
	if len(events) != 1 || events[0].ChatID != "c1" {
		t.Errorf("Events() = %+v, want only c1", events)
	}
}

func TestNoop(t *testing.T) {
	var b Broadcaster = Noop{}
	if err := b.Broadcast(context.Background(), Event{}); err != nil {
		t.Errorf("Noop.Broadcast() error = %v", err)
	}
}
