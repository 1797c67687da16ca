package action

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Reserved property keys. SetProperty does not guard against collisions
// with these; callers pick their own keys responsibly.
const (
	KeyJourneyID         = "journeyId"
	KeyCommand           = "command"
	KeyCancelStep        = "cancelStep"
	KeyDuration          = "duration"
	KeyResult            = "result"
	KeyError             = "error"
	KeyErrorMessage      = "errorMessage"
	KeyStack             = "stack"
	KeySuppressTelemetry = "suppressTelemetry"
)

// Result tags how an invocation ended.
type Result string

const (
	ResultSucceeded Result = "Succeeded"
	ResultFailed    Result = "Failed"
	ResultCanceled  Result = "Canceled"
)

// Options control how an action is reported.
type Options struct {
	// SuppressIfSuccessful sends no telemetry at all when the action
	// succeeds. It never suppresses failure events.
	SuppressIfSuccessful bool
}

// OptionUpdate is a partial Options. Nil fields leave the current value
// unchanged, so repeated SetOptions calls merge shallowly.
type OptionUpdate struct {
	SuppressIfSuccessful *bool
}

// Action is one command invocation's telemetry session. Create a fresh one
// per invocation with New; an Action is not reused across invocations.
type Action struct {
	journeyID string
	command   string

	mu         sync.Mutex
	properties map[string]string
	options    Options
	result     Result
}

// New creates an Action for command with a fresh journey identifier. The
// result starts at Succeeded; initial properties are copied in.
func New(command string, initial map[string]string) *Action {
	props := make(map[string]string, len(initial))
	for k, v := range initial {
		props[k] = v
	}
	return &Action{
		journeyID:  uuid.New().String(),
		command:    command,
		properties: props,
		result:     ResultSucceeded,
	}
}

// JourneyID returns the identifier correlating all events of this action.
func (a *Action) JourneyID() string {
	return a.journeyID
}

// Command returns the command label.
func (a *Action) Command() string {
	return a.command
}

// Result returns the current result tag.
func (a *Action) Result() Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

func (a *Action) setResult(r Result) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result = r
}

// SetProperty upserts a string property.
func (a *Action) SetProperty(key, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.properties[key] = value
}

// SetStep records the step the action is currently in, under the reserved
// cancelStep key. When the user cancels, the last recorded step tells the
// collector how far the action got.
func (a *Action) SetStep(step string) {
	a.SetProperty(KeyCancelStep, step)
}

// SetOptions merges update into the action's options.
func (a *Action) SetOptions(update OptionUpdate) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if update.SuppressIfSuccessful != nil {
		a.options.SuppressIfSuccessful = *update.SuppressIfSuccessful
	}
}

// Options returns a copy of the current options.
func (a *Action) Options() Options {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.options
}

// Time runs fn and records its wall-clock duration in fractional seconds,
// stringified, under key. The property is recorded on every exit path,
// whether fn succeeds, fails, or panics. Time emits no event itself; it
// only annotates the action.
func (a *Action) Time(ctx context.Context, key string, fn func(context.Context) error) error {
	start := time.Now()
	defer func() {
		a.SetProperty(key, strconv.FormatFloat(time.Since(start).Seconds(), 'f', 3, 64))
	}()
	return fn(ctx)
}

// snapshot returns the full property bag including the reserved journey and
// result entries.
func (a *Action) snapshot() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	props := make(map[string]string, len(a.properties)+2)
	for k, v := range a.properties {
		props[k] = v
	}
	props[KeyJourneyID] = a.journeyID
	props[KeyResult] = string(a.result)
	return props
}
