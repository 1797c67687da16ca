package telemetry

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/actionscope/actionscope/pkg/config"
	"github.com/actionscope/actionscope/pkg/scrub"
)

// eventBufferSize is the capacity of the in-memory event queue. Sends while
// the queue is full drop the event instead of blocking the caller.
const eventBufferSize = 1000

// telemetryLogger wraps slog.Logger to automatically prepend "[Telemetry]" to all messages
type telemetryLogger struct {
	logger *slog.Logger
}

func newTelemetryLogger(logger *slog.Logger) *telemetryLogger {
	return &telemetryLogger{logger: logger}
}

func (tl *telemetryLogger) Debug(msg string, args ...any) {
	tl.logger.Debug("[Telemetry] "+msg, args...)
}

func (tl *telemetryLogger) Warn(msg string, args ...any) {
	tl.logger.Warn("[Telemetry] "+msg, args...)
}

func (tl *telemetryLogger) Error(msg string, args ...any) {
	tl.logger.Error("[Telemetry] "+msg, args...)
}

// New creates a reporter client from cfg. A disabled configuration returns a
// client whose Send is a no-op, so callers never need to branch on the
// telemetry setting.
func New(cfg *config.Config, logger *slog.Logger, version string, customHTTPClient ...HTTPClient) *Client {
	tl := newTelemetryLogger(logger)

	if !cfg.Enabled {
		return &Client{
			logger:  tl,
			enabled: false,
			version: version,
		}
	}

	var httpClient HTTPClient
	if len(customHTTPClient) > 0 && customHTTPClient[0] != nil {
		httpClient = customHTTPClient[0]
	} else {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	client := &Client{
		logger:     tl,
		userUUID:   getUserUUID(),
		enabled:    true,
		httpClient: httpClient,
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		header:     cfg.Header,
		version:    version,
		scrubber:   scrub.New(),
		events:     make(chan Event, eventBufferSize),
		done:       make(chan struct{}),
	}

	go client.process()

	tl.Debug("Reporter configured",
		"has_endpoint", cfg.Endpoint != "",
		"has_api_key", cfg.APIKey != "",
	)

	return client
}

// Send queues event for transmission without blocking. Events sent to a
// disabled client, or while the queue is full, are discarded.
func (tc *Client) Send(ctx context.Context, event Event) {
	if !tc.enabled {
		return
	}

	select {
	case tc.events <- event:
	default:
		tc.logger.Warn("Event dropped", "reason", "buffer_full", "event_name", event.Name)
	}
}

// process drains the event queue until Shutdown closes it.
func (tc *Client) process() {
	defer close(tc.done)
	for event := range tc.events {
		tc.sendEvent(&event)
	}
}

// Shutdown flushes queued events and releases the client. It is safe to call
// more than once; only the first call has any effect. The context bounds how
// long the flush may take.
func (tc *Client) Shutdown(ctx context.Context) error {
	if !tc.enabled {
		return nil
	}

	var err error
	tc.shutdownOnce.Do(func() {
		close(tc.events)
		select {
		case <-tc.done:
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	return err
}
