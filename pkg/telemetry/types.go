package telemetry

import (
	"net/http"
	"sync"

	"github.com/actionscope/actionscope/pkg/scrub"
)

// Event is a single telemetry record to be sent to the collector.
type Event struct {
	// Name is the event name: a tracepoint name for standalone events or
	// the command name for session summaries.
	Name string

	// Properties is the string property bag attached to the event.
	Properties map[string]string

	// SafeKeys lists property keys whose values are known-safe free text
	// and are excluded from the scrub pass.
	SafeKeys []string
}

// EventPayload is the wire shape of one record.
type EventPayload struct {
	Event          string            `json:"event"`
	EventTimestamp int64             `json:"event_timestamp"`
	Source         string            `json:"source"`
	Properties     map[string]string `json:"properties,omitempty"`
}

// HTTPClient interface for making HTTP requests (allows mocking in tests)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the reporter. Use New to construct one and Shutdown to release
// it; a disabled client accepts events and discards them.
type Client struct {
	logger     *telemetryLogger
	userUUID   string
	enabled    bool
	httpClient HTTPClient
	endpoint   string
	apiKey     string
	header     string
	version    string
	scrubber   *scrub.Scrubber

	events chan Event
	done   chan struct{}

	shutdownOnce sync.Once
}

// IsEnabled reports whether the client transmits events.
func (tc *Client) IsEnabled() bool {
	return tc.enabled
}
