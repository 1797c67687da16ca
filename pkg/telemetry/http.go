package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// createEvent builds the wire payload: the caller's properties after the
// scrub pass, plus process metadata.
func (tc *Client) createEvent(event *Event) EventPayload {
	osName, osLanguage := getSystemInfo()

	properties := make(map[string]string, len(event.Properties)+4)
	for k, v := range event.Properties {
		properties[k] = v
	}
	tc.scrubber.Properties(properties, event.SafeKeys)

	properties["user_uuid"] = tc.userUUID
	properties["version"] = tc.version
	properties["os"] = osName
	properties["os_language"] = osLanguage

	return EventPayload{
		Event:          event.Name,
		EventTimestamp: time.Now().UnixMilli(),
		Source:         "actionscope",
		Properties:     properties,
	}
}

// sendEvent posts a single event to the collector and logs the outcome.
func (tc *Client) sendEvent(event *Event) {
	payload := tc.createEvent(event)

	if tc.apiKey == "" || tc.endpoint == "" {
		tc.logger.Debug("Skipping event, no endpoint or API key configured",
			"event_name", payload.Event,
			"has_endpoint", tc.endpoint != "",
			"has_api_key", tc.apiKey != "",
		)
		return
	}

	if err := tc.performHTTPRequest(&payload); err != nil {
		tc.logger.Debug("Failed to send event", "error", err, "event_name", payload.Event)
		return
	}
	tc.logger.Debug("Event sent", "event_name", payload.Event)
}

// performHTTPRequest handles the actual HTTP request to the collector.
func (tc *Client) performHTTPRequest(payload *EventPayload) error {
	// The collector ingests batches; a single event still travels as a
	// one-element records array.
	requestBody := map[string]any{
		"records": []any{payload},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request to JSON: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tc.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("actionscope/%s", tc.version))
	if tc.apiKey != "" && tc.header != "" {
		req.Header.Set(tc.header, tc.apiKey)
	}

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := make([]byte, 1024)
		n, _ := resp.Body.Read(body)
		return fmt.Errorf("HTTP request failed with status %d: %s", resp.StatusCode, string(body[:n]))
	}

	return nil
}
