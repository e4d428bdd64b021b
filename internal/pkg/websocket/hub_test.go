package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/broadcast"
)

func newTestClient(h *Hub, buffer int) *Client {
	return &Client{id: "test", hub: h, send: make(chan []byte, buffer), logger: zerolog.Nop()}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubFansOutToEveryClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	a, b := newTestClient(hub, 4), newTestClient(hub, 4)
	hub.register <- a
	hub.register <- b
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	evt := broadcast.Event{Type: broadcast.TypeMessage, ChatID: "abc", Data: map[string]string{"message": "hi"}}
	if err := hub.Broadcast(ctx, evt); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}

	for name, c := range map[string]*Client{"a": a, "b": b} {
		select {
		case raw := <-c.send:
			var got broadcast.Event
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("client %s: bad payload: %v", name, err)
			}
			if got.Type != "message" || got.ChatID != "abc" {
				t.Errorf("client %s got %+v", name, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client %s received nothing", name)
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	slow := newTestClient(hub, 0)
	hub.register <- slow
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	if err := hub.Broadcast(ctx, broadcast.Event{Type: broadcast.TypeMessage}); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	waitFor(t, func() bool { return hub.ClientCount() == 0 })

	if _, ok := <-slow.send; ok {
		t.Error("slow client's send channel should be closed")
	}
}

func TestHubBroadcastReportsFullQueue(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx := context.Background()

	// Run is not started, so nothing drains the queue.
	for i := 0; i < broadcastQueueSize; i++ {
		if err := hub.Broadcast(ctx, broadcast.Event{}); err != nil {
			t.Fatalf("Broadcast() #%d error = %v", i, err)
		}
	}
	if err := hub.Broadcast(ctx, broadcast.Event{}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Broadcast() error = %v, want ErrQueueFull", err)
	}
}
