package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordChatCreate(t *testing.T) {
	created := testutil.ToFloat64(ChatsCreated.WithLabelValues(OutcomeCreated))
	deduped := testutil.ToFloat64(ChatsCreated.WithLabelValues(OutcomeDeduplicated))

	RecordChatCreate(true)
	RecordChatCreate(false)
	RecordChatCreate(false)

	if got := testutil.ToFloat64(ChatsCreated.WithLabelValues(OutcomeCreated)) - created; got != 1 {
		t.Errorf("created delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ChatsCreated.WithLabelValues(OutcomeDeduplicated)) - deduped; got != 2 {
		t.Errorf("deduplicated delta = %v, want 2", got)
	}
}

func TestRecordBroadcast(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		label string
	}{
		{"delivered", nil, ResultDelivered},
		{"failed", errors.New("hub queue full"), ResultFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(Broadcasts.WithLabelValues(tt.label))
			RecordBroadcast(tt.err)
			if got := testutil.ToFloat64(Broadcasts.WithLabelValues(tt.label)) - before; got != 1 {
				t.Errorf("%s delta = %v, want 1", tt.label, got)
			}
		})
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordHTTPRequest("GET", "/ping", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"geoconnect_http_requests_total", "geoconnect_websocket_clients"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
