package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/actionscope/actionscope/pkg/logging"
	"github.com/actionscope/actionscope/pkg/msg"
	"github.com/actionscope/actionscope/pkg/paths"
	"github.com/actionscope/actionscope/pkg/telemetry"
)

// Reporter is the telemetry sink the runner emits events to.
// *telemetry.Client satisfies it.
type Reporter interface {
	Send(ctx context.Context, event telemetry.Event)
}

// Outcome is the tagged result of one boundary invocation.
type Outcome struct {
	Result Result
	// Error is populated when Result is Failed or Canceled.
	Error ErrorInfo
}

// Succeeded reports whether the invocation completed without error.
func (o Outcome) Succeeded() bool {
	return o.Result == ResultSucceeded
}

// Runner finalizes tracked actions against a reporter. One Runner serves
// all invocations of a process; the per-invocation state lives in Action.
type Runner struct {
	reporter  Reporter
	messenger msg.Messenger
	diag      *logging.DiagnosticLog
	classify  Classifier
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClassifier replaces the default error classifier.
func WithClassifier(c Classifier) RunnerOption {
	return func(r *Runner) {
		r.classify = c
	}
}

// WithDiagnosticLog attaches the local log that failure messages are
// appended to. Without one, failures are still reported and shown but not
// recorded locally.
func WithDiagnosticLog(d *logging.DiagnosticLog) RunnerOption {
	return func(r *Runner) {
		r.diag = d
	}
}

// NewRunner creates a Runner. messenger may be msg.Discard{} for hosts that
// present errors themselves.
func NewRunner(reporter Reporter, messenger msg.Messenger, opts ...RunnerOption) *Runner {
	r := &Runner{
		reporter:  reporter,
		messenger: messenger,
		classify:  Classify,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invoke runs fn under a, timing it into the duration property, and
// finalizes the action: the result tag is set, failure details are recorded
// into the property bag, and exactly one summary event is sent (none when
// the action opted into SuppressIfSuccessful and succeeded).
//
// Invoke returns the outcome instead of presenting it; callers that want
// the standard presentation use Run.
func (r *Runner) Invoke(ctx context.Context, a *Action, fn func(context.Context) error) Outcome {
	ctx = WithAction(ctx, a)

	err := a.Time(ctx, KeyDuration, fn)

	outcome := Outcome{Result: ResultSucceeded}
	if err != nil {
		info := r.classify(err)
		if info.IsUserCancelled {
			a.setResult(ResultCanceled)
			outcome = Outcome{Result: ResultCanceled, Error: info}
		} else {
			a.setResult(ResultFailed)
			a.SetProperty(KeyError, info.Type)
			a.SetProperty(KeyErrorMessage, info.Message)
			if info.Stack != "" {
				a.SetProperty(KeyStack, info.Stack)
			}
			if a.Options().SuppressIfSuccessful {
				// The flag only suppresses successes; failed runs are
				// tagged so the collector can tell they opted in.
				a.SetProperty(KeySuppressTelemetry, "true")
			}
			outcome = Outcome{Result: ResultFailed, Error: info}
		}
	}

	r.report(ctx, a)
	return outcome
}

// Run is the top-level boundary for command handlers: Invoke plus the
// standard presentation. Failures are appended to the diagnostic log and
// shown to the user; nothing is re-thrown. Cancellations are silent.
func (r *Runner) Run(ctx context.Context, a *Action, fn func(context.Context) error) Outcome {
	outcome := r.Invoke(ctx, a, fn)
	if outcome.Result != ResultFailed {
		return outcome
	}

	logPath := paths.DiagnosticLogPath()
	if r.diag != nil {
		logPath = r.diag.Path()
		// Best-effort; the error event already carries the message.
		_ = r.diag.Append(fmt.Sprintf("[%s] %s", a.Command(), outcome.Error.Message))
	}

	message := strings.TrimRight(outcome.Error.Message, "\n")
	if strings.Contains(message, "\n") {
		r.messenger.ShowErrorWithLogHint(logPath)
	} else {
		r.messenger.ShowError(message)
	}

	return outcome
}

// report sends the summary event. It runs on every Invoke exit path.
func (r *Runner) report(ctx context.Context, a *Action) {
	result := a.Result()
	if result == ResultSucceeded && a.Options().SuppressIfSuccessful {
		return
	}

	event := telemetry.Event{
		Name:       a.Command(),
		Properties: a.snapshot(),
	}
	if result == ResultFailed {
		// Error text and stacks are known free text; they skip the scrub
		// pass so the collector sees them verbatim.
		event.SafeKeys = []string{KeyError, KeyErrorMessage, KeyStack}
	}
	r.reporter.Send(ctx, event)
}

// LogError immediately sends a standalone error event at the given
// tracepoint, independent of the action's summary event. The error text and
// stack are marked safe for the scrub pass.
func (r *Runner) LogError(ctx context.Context, a *Action, layer, tracePoint string, err error) {
	info := r.classify(err)

	props := map[string]string{
		KeyJourneyID:    a.JourneyID(),
		KeyCommand:      a.Command(),
		"layer":         layer,
		KeyErrorMessage: info.Message,
	}
	if info.Stack != "" {
		props[KeyStack] = info.Stack
	}

	r.reporter.Send(ctx, telemetry.Event{
		Name:       tracePoint,
		Properties: props,
		SafeKeys:   []string{KeyErrorMessage, KeyStack},
	})
}

// LogInfo immediately sends a standalone informational event at the given
// tracepoint, carrying the action's correlation fields.
func (r *Runner) LogInfo(ctx context.Context, a *Action, layer, tracePoint, info string) {
	r.reporter.Send(ctx, telemetry.Event{
		Name: tracePoint,
		Properties: map[string]string{
			KeyJourneyID: a.JourneyID(),
			KeyCommand:   a.Command(),
			"layer":      layer,
			"info":       info,
		},
	})
}
