package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/broadcast"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/metrics"
)

// ErrQueueFull is returned by Broadcast when the hub cannot keep up
var ErrQueueFull = errors.New("websocket hub: broadcast queue full")

const broadcastQueueSize = 256

// Hub maintains the set of active clients and fans every event out to all of them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Encoded events waiting for fan-out
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Guards clients for readers outside Run
	mu sync.RWMutex

	logger zerolog.Logger
}

var _ broadcast.Broadcaster = (*Hub)(nil)

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With().Str("component", "websocket_hub").Logger(),
	}
}

// Run handles registrations and fan-out until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case payload := <-h.broadcast:
			h.fanOut(payload)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketClients.Inc()
	h.logger.Info().
		Str("clientID", client.id).
		Str("addr", client.remoteAddr()).
		Int("clients", count).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	metrics.WebSocketClients.Dec()

	h.logger.Info().
		Str("clientID", client.id).
		Str("addr", client.remoteAddr()).
		Msg("Client unregistered")
}

// fanOut runs on the hub goroutine. Clients whose send buffer is full are
// dropped on the spot.
func (h *Hub) fanOut(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			delete(h.clients, client)
			close(client.send)
			metrics.WebSocketClients.Dec()
			h.logger.Warn().Str("clientID", client.id).Msg("Dropped slow client")
		}
	}

	h.logger.Debug().Int("clientCount", len(h.clients)).Msg("Event broadcasted")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
		metrics.WebSocketClients.Dec()
	}
}

// Broadcast queues evt for every connected client. It never blocks on slow
// clients; a full queue is reported as ErrQueueFull.
func (h *Hub) Broadcast(ctx context.Context, evt broadcast.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal websocket event: %w", err)
	}

	select {
	case h.broadcast <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
