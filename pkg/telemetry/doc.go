// Package telemetry implements the reporter client: the process-wide sink
// that transmits action events to a hosted collector.
//
// The client is constructed once, injected into whatever needs to send
// events, and shut down exactly once at teardown. Events are queued onto a
// buffered channel and posted by a background worker so that sending never
// blocks the action being tracked; when the buffer is full events are
// dropped rather than queued.
//
// Before transmission every property value is passed through the scrub
// pass (see package scrub) unless the sender listed the key as safe free
// text.
package telemetry
