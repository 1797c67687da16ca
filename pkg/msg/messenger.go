// Package msg surfaces failure messages to the user.
//
// The boundary in package action decides which variant to show: short
// single-line errors verbatim, anything multi-line as a generic pointer to
// the diagnostic log.
package msg

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Messenger is the host surface for user-facing error messages.
type Messenger interface {
	// ShowError displays message verbatim.
	ShowError(message string)
	// ShowErrorWithLogHint displays a generic failure notice pointing at
	// the diagnostic log.
	ShowErrorWithLogHint(logPath string)
}

var errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()

// Writer is a Messenger that writes to an io.Writer, with color when the
// writer is a terminal.
type Writer struct {
	out io.Writer
}

// NewWriter returns a Messenger writing to out. Color is enabled only when
// out is os.Stderr or os.Stdout attached to a terminal.
func NewWriter(out io.Writer) *Writer {
	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		color.NoColor = true
	}
	return &Writer{out: out}
}

func (w *Writer) ShowError(message string) {
	fmt.Fprintf(w.out, "%s %s\n", errorLabel("Error:"), message)
}

func (w *Writer) ShowErrorWithLogHint(logPath string) {
	fmt.Fprintf(w.out, "%s the operation failed. See %s for details.\n", errorLabel("Error:"), logPath)
}

// Discard is a Messenger that shows nothing. Hosts that present errors
// through their own UI use it to silence the default presentation.
type Discard struct{}

func (Discard) ShowError(string)            {}
func (Discard) ShowErrorWithLogHint(string) {}
