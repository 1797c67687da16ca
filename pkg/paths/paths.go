package paths

import (
	"os"
	"path/filepath"
)

// GetConfigDir returns the user's config directory for actionscope.
//
// If the home directory cannot be determined, it falls back to a directory
// under the system temporary directory. This is a best-effort fallback and
// not intended to be a security boundary.
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), ".actionscope-config"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".config", "actionscope"))
}

// GetDataDir returns the user's data directory for actionscope (logs, state).
//
// If the home directory cannot be determined, it falls back to a directory
// under the system temporary directory.
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), ".actionscope"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".actionscope"))
}

// DiagnosticLogPath returns the path of the local diagnostic log that
// failure messages are appended to.
func DiagnosticLogPath() string {
	return filepath.Join(GetDataDir(), "actionscope.log")
}
