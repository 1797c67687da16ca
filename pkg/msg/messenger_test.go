package msg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_ShowError(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.ShowError("Foo failed")

	assert.Equal(t, "Error: Foo failed\n", buf.String())
}

func TestWriter_ShowErrorWithLogHint(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.ShowErrorWithLogHint("/tmp/actionscope.log")

	assert.Equal(t, "Error: the operation failed. See /tmp/actionscope.log for details.\n", buf.String())
}

func TestDiscard(t *testing.T) {
	var m Messenger = Discard{}
	m.ShowError("ignored")
	m.ShowErrorWithLogHint("ignored")
}
