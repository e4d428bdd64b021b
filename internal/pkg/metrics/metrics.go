// Package metrics holds the Prometheus collectors for the HTTP surface and
// the chat/event domain, registered on the default registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values
const (
	OutcomeCreated      = "created"
	OutcomeDeduplicated = "deduplicated"

	ResultDelivered = "delivered"
	ResultFailed    = "failed"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoconnect_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geoconnect_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Chats
	ChatsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoconnect_chats_created_total",
			Help: "Chat create requests by outcome (created or deduplicated)",
		},
		[]string{"outcome"},
	)

	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geoconnect_messages_sent_total",
			Help: "Messages appended to chats",
		},
	)

	// Membership
	PartialMembershipUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoconnect_membership_partial_updates_total",
			Help: "Cross-document membership updates left partially applied",
		},
		[]string{"operation"},
	)

	// Broadcast
	Broadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoconnect_broadcasts_total",
			Help: "Live update broadcasts by result",
		},
		[]string{"result"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geoconnect_websocket_clients",
			Help: "Currently connected websocket clients",
		},
	)
)

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordChatCreate counts a chat create request
func RecordChatCreate(created bool) {
	if created {
		ChatsCreated.WithLabelValues(OutcomeCreated).Inc()
		return
	}
	ChatsCreated.WithLabelValues(OutcomeDeduplicated).Inc()
}

// RecordBroadcast counts a broadcast attempt
func RecordBroadcast(err error) {
	if err != nil {
		Broadcasts.WithLabelValues(ResultFailed).Inc()
		return
	}
	Broadcasts.WithLabelValues(ResultDelivered).Inc()
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
