// Package logging provides the append-only local diagnostic log.
//
// The log is an ordinary text file that rotates when it exceeds a size
// limit. It doubles as the slog sink in debug mode and as the place failed
// action messages are recorded, so the user-facing "see the log" hint always
// points at one file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	DefaultMaxSize    = 10 * 1024 * 1024 // 10MB
	DefaultMaxBackups = 3
)

// DiagnosticLog is an io.WriteCloser over a size-rotated local log file.
type DiagnosticLog struct {
	path       string
	maxSize    int64
	maxBackups int

	mu   sync.Mutex
	file *os.File
	size int64
}

type Option func(*DiagnosticLog)

func WithMaxSize(size int64) Option {
	return func(d *DiagnosticLog) {
		d.maxSize = size
	}
}

func WithMaxBackups(count int) Option {
	return func(d *DiagnosticLog) {
		d.maxBackups = count
	}
}

// Open opens (creating if needed) the diagnostic log at path.
func Open(path string, opts ...Option) (*DiagnosticLog, error) {
	d := &DiagnosticLog{
		path:       path,
		maxSize:    DefaultMaxSize,
		maxBackups: DefaultMaxBackups,
	}

	for _, opt := range opts {
		opt(d)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	if err := d.openFile(); err != nil {
		return nil, err
	}

	return d, nil
}

// Path returns the location of the log file, for user-facing hints.
func (d *DiagnosticLog) Path() string {
	return d.path
}

func (d *DiagnosticLog) openFile() error {
	file, err := os.OpenFile(d.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	d.file = file
	d.size = info.Size()
	return nil
}

func (d *DiagnosticLog) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.size+int64(len(p)) > d.maxSize {
		if err := d.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := d.file.Write(p)
	d.size += int64(n)
	return n, err
}

// Append writes a single timestamped line. Failure messages from tracked
// actions land here.
func (d *DiagnosticLog) Append(line string) error {
	stamped := fmt.Sprintf("%s %s\n", time.Now().Format(time.RFC3339), line)
	_, err := d.Write([]byte(stamped))
	return err
}

func (d *DiagnosticLog) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

func (d *DiagnosticLog) rotate() error {
	if err := d.file.Close(); err != nil {
		return err
	}

	// Remove the oldest backup if it exists
	oldest := fmt.Sprintf("%s.%d", d.path, d.maxBackups)
	_ = os.Remove(oldest)

	// Shift existing backups: .2 -> .3, .1 -> .2, etc.
	for i := d.maxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", d.path, i)
		newPath := fmt.Sprintf("%s.%d", d.path, i+1)
		_ = os.Rename(oldPath, newPath)
	}

	// Rename current log to .1
	if err := os.Rename(d.path, d.path+".1"); err != nil && !os.IsNotExist(err) {
		return err
	}

	d.size = 0
	return d.openFile()
}
