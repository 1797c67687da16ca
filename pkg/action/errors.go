package action

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ErrCancelled marks an error chain as a deliberate user cancellation.
// Wrap it (or return it directly) from a unit of work when the user backs
// out; the runner then tags the action Canceled instead of Failed and stays
// silent.
var ErrCancelled = errors.New("operation cancelled by user")

// ErrorInfo is the structured classification of a failure.
type ErrorInfo struct {
	// IsUserCancelled reports whether the error represents the user
	// backing out rather than something going wrong.
	IsUserCancelled bool
	// Type is the Go type of the root error.
	Type string
	// Message is the error text.
	Message string
	// Stack is a formatted stack trace when the error carries one, else
	// empty.
	Stack string
}

// Classifier inspects an error and produces its structured classification.
// Hosts with their own cancellation signals plug in their own.
type Classifier func(error) ErrorInfo

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Classify is the default Classifier. Cancellation is context.Canceled or
// ErrCancelled anywhere in the chain; a context deadline is a failure, not
// a cancellation. Stack traces are extracted from errors created with
// github.com/pkg/errors.
func Classify(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{}
	}

	info := ErrorInfo{
		Type:    fmt.Sprintf("%T", rootCause(err)),
		Message: err.Error(),
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, ErrCancelled) {
		info.IsUserCancelled = true
		return info
	}

	var st stackTracer
	if errors.As(err, &st) {
		info.Stack = fmt.Sprintf("%+v", st.StackTrace())
	}

	return info
}

// rootCause unwraps to the innermost error so Type names the original
// failure rather than a wrapper.
func rootCause(err error) error {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}
