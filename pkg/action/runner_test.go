package action

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionscope/actionscope/pkg/logging"
	"github.com/actionscope/actionscope/pkg/telemetry"
)

// recorder captures events instead of sending them.
type recorder struct {
	events []telemetry.Event
}

func (r *recorder) Send(_ context.Context, event telemetry.Event) {
	r.events = append(r.events, event)
}

// fakeMessenger captures user-facing messages.
type fakeMessenger struct {
	errors   []string
	logHints []string
}

func (m *fakeMessenger) ShowError(message string) {
	m.errors = append(m.errors, message)
}

func (m *fakeMessenger) ShowErrorWithLogHint(logPath string) {
	m.logHints = append(m.logHints, logPath)
}

func newTestRunner(t *testing.T) (*Runner, *recorder, *fakeMessenger) {
	t.Helper()
	rec := &recorder{}
	messenger := &fakeMessenger{}
	return NewRunner(rec, messenger), rec, messenger
}

func TestRun_SuccessSendsOneSummaryEvent(t *testing.T) {
	runner, rec, messenger := newTestRunner(t)
	a := New("deploy", nil)

	outcome := runner.Run(context.Background(), a, func(context.Context) error {
		return nil
	})

	assert.Equal(t, ResultSucceeded, outcome.Result)
	assert.True(t, outcome.Succeeded())
	require.Len(t, rec.events, 1)

	event := rec.events[0]
	assert.Equal(t, "deploy", event.Name)
	assert.Equal(t, "Succeeded", event.Properties[KeyResult])
	assert.Equal(t, a.JourneyID(), event.Properties[KeyJourneyID])
	assert.NotEmpty(t, event.Properties[KeyDuration])

	assert.Empty(t, messenger.errors)
	assert.Empty(t, messenger.logHints)
}

func TestRun_SuppressIfSuccessfulSendsNothing(t *testing.T) {
	runner, rec, _ := newTestRunner(t)
	a := New("deploy", nil)
	yes := true
	a.SetOptions(OptionUpdate{SuppressIfSuccessful: &yes})

	outcome := runner.Run(context.Background(), a, func(context.Context) error {
		return nil
	})

	assert.Equal(t, ResultSucceeded, outcome.Result)
	assert.Empty(t, rec.events)
}

func TestRun_SuppressIfSuccessfulStillSendsFailures(t *testing.T) {
	runner, rec, _ := newTestRunner(t)
	a := New("deploy", nil)
	yes := true
	a.SetOptions(OptionUpdate{SuppressIfSuccessful: &yes})

	outcome := runner.Run(context.Background(), a, func(context.Context) error {
		return errors.New("deploy blew up")
	})

	assert.Equal(t, ResultFailed, outcome.Result)
	require.Len(t, rec.events, 1)

	event := rec.events[0]
	assert.Equal(t, "Failed", event.Properties[KeyResult])
	assert.Equal(t, "true", event.Properties[KeySuppressTelemetry])
}

func TestRun_CancellationIsSilent(t *testing.T) {
	runner, rec, messenger := newTestRunner(t)
	a := New("deploy", nil)
	a.SetStep("uploading")

	outcome := runner.Run(context.Background(), a, func(context.Context) error {
		return ErrCancelled
	})

	assert.Equal(t, ResultCanceled, outcome.Result)
	assert.True(t, outcome.Error.IsUserCancelled)

	// No user-facing message for cancellations
	assert.Empty(t, messenger.errors)
	assert.Empty(t, messenger.logHints)

	// But exactly one summary event, tagged Canceled, with the last step
	require.Len(t, rec.events, 1)
	event := rec.events[0]
	assert.Equal(t, "Canceled", event.Properties[KeyResult])
	assert.Equal(t, "uploading", event.Properties[KeyCancelStep])
	// Canceled runs carry no error fields
	assert.NotContains(t, event.Properties, KeyErrorMessage)
}

func TestRun_ContextCanceledCountsAsCancellation(t *testing.T) {
	runner, rec, messenger := newTestRunner(t)
	a := New("deploy", nil)

	outcome := runner.Run(context.Background(), a, func(context.Context) error {
		return context.Canceled
	})

	assert.Equal(t, ResultCanceled, outcome.Result)
	assert.Empty(t, messenger.errors)
	require.Len(t, rec.events, 1)
	assert.Equal(t, "Canceled", rec.events[0].Properties[KeyResult])
}

func TestRun_SingleLineErrorShownVerbatim(t *testing.T) {
	runner, _, messenger := newTestRunner(t)
	a := New("deploy", nil)

	runner.Run(context.Background(), a, func(context.Context) error {
		return errors.New("Foo failed")
	})

	require.Len(t, messenger.errors, 1)
	assert.Equal(t, "Foo failed", messenger.errors[0])
	assert.Empty(t, messenger.logHints)
}

func TestRun_MultiLineErrorShowsLogHint(t *testing.T) {
	dir := t.TempDir()
	diag, err := logging.Open(filepath.Join(dir, "diag.log"))
	require.NoError(t, err)
	defer diag.Close()

	rec := &recorder{}
	messenger := &fakeMessenger{}
	runner := NewRunner(rec, messenger, WithDiagnosticLog(diag))

	a := New("deploy", nil)
	runner.Run(context.Background(), a, func(context.Context) error {
		return errors.New("first line\nsecond line")
	})

	assert.Empty(t, messenger.errors)
	require.Len(t, messenger.logHints, 1)
	assert.Equal(t, diag.Path(), messenger.logHints[0])
}

func TestRun_FailureRecordsErrorProperties(t *testing.T) {
	runner, rec, _ := newTestRunner(t)
	a := New("deploy", nil)

	outcome := runner.Run(context.Background(), a, func(context.Context) error {
		return errors.New("deploy blew up")
	})

	assert.Equal(t, ResultFailed, outcome.Result)
	assert.Equal(t, "deploy blew up", outcome.Error.Message)

	require.Len(t, rec.events, 1)
	event := rec.events[0]
	assert.Equal(t, "Failed", event.Properties[KeyResult])
	assert.Equal(t, "deploy blew up", event.Properties[KeyErrorMessage])
	assert.NotEmpty(t, event.Properties[KeyError])

	// Error fields skip the scrub pass
	assert.ElementsMatch(t, []string{KeyError, KeyErrorMessage, KeyStack}, event.SafeKeys)
}

func TestInvoke_ReturnsOutcomeWithoutPresentation(t *testing.T) {
	runner, rec, messenger := newTestRunner(t)
	a := New("deploy", nil)

	outcome := runner.Invoke(context.Background(), a, func(context.Context) error {
		return errors.New("quietly broken")
	})

	assert.Equal(t, ResultFailed, outcome.Result)
	assert.Equal(t, "quietly broken", outcome.Error.Message)

	// Invoke reports but does not present; the caller decides what to show.
	assert.Empty(t, messenger.errors)
	assert.Empty(t, messenger.logHints)
	require.Len(t, rec.events, 1)
}

func TestInvoke_ActionAvailableInContext(t *testing.T) {
	runner, _, _ := newTestRunner(t)
	a := New("deploy", nil)

	runner.Invoke(context.Background(), a, func(ctx context.Context) error {
		FromContext(ctx).SetProperty("nested", "yes")
		return nil
	})

	assert.Equal(t, "yes", a.snapshot()["nested"])
}

func TestInvoke_CustomClassifier(t *testing.T) {
	rec := &recorder{}
	messenger := &fakeMessenger{}
	hostCancel := errors.New("host says user backed out")

	runner := NewRunner(rec, messenger, WithClassifier(func(err error) ErrorInfo {
		return ErrorInfo{
			IsUserCancelled: errors.Is(err, hostCancel),
			Type:            "hostError",
			Message:         err.Error(),
		}
	}))

	a := New("deploy", nil)
	outcome := runner.Invoke(context.Background(), a, func(context.Context) error {
		return hostCancel
	})

	assert.Equal(t, ResultCanceled, outcome.Result)
}

func TestLogError_SendsStandaloneEvent(t *testing.T) {
	runner, rec, _ := newTestRunner(t)
	a := New("deploy", nil)

	runner.LogError(context.Background(), a, "storage", "deploy.upload.failed", errors.New("upload refused"))

	require.Len(t, rec.events, 1)
	event := rec.events[0]
	assert.Equal(t, "deploy.upload.failed", event.Name)
	assert.Equal(t, a.JourneyID(), event.Properties[KeyJourneyID])
	assert.Equal(t, "deploy", event.Properties[KeyCommand])
	assert.Equal(t, "storage", event.Properties["layer"])
	assert.Equal(t, "upload refused", event.Properties[KeyErrorMessage])
	assert.ElementsMatch(t, []string{KeyErrorMessage, KeyStack}, event.SafeKeys)
}

func TestLogInfo_SendsStandaloneEvent(t *testing.T) {
	runner, rec, _ := newTestRunner(t)
	a := New("deploy", nil)

	runner.LogInfo(context.Background(), a, "cli", "deploy.started", "warm start")

	require.Len(t, rec.events, 1)
	event := rec.events[0]
	assert.Equal(t, "deploy.started", event.Name)
	assert.Equal(t, a.JourneyID(), event.Properties[KeyJourneyID])
	assert.Equal(t, "warm start", event.Properties["info"])
	assert.Empty(t, event.SafeKeys)
}

func TestRun_FailureAppendsToDiagnosticLog(t *testing.T) {
	dir := t.TempDir()
	diag, err := logging.Open(filepath.Join(dir, "diag.log"))
	require.NoError(t, err)
	defer diag.Close()

	rec := &recorder{}
	messenger := &fakeMessenger{}
	runner := NewRunner(rec, messenger, WithDiagnosticLog(diag))

	a := New("deploy", nil)
	runner.Run(context.Background(), a, func(context.Context) error {
		return errors.New("disk full")
	})

	content, err := os.ReadFile(diag.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "[deploy] disk full")
}
