package telemetry

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/actionscope/actionscope/pkg/paths"
)

// getSystemInfo collects coarse system information attached to every event.
func getSystemInfo() (osName, osLanguage string) {
	osLang := os.Getenv("LANG")
	if osLang == "" {
		osLang = "en-US"
	}
	return runtime.GOOS, osLang
}

func userUUIDFilePath() string {
	return filepath.Join(paths.GetConfigDir(), "user-uuid")
}

// getUserUUID gets or creates the persistent anonymous user identifier.
func getUserUUID() string {
	uuidFile := userUUIDFilePath()

	if data, err := os.ReadFile(uuidFile); err == nil {
		existing := strings.TrimSpace(string(data))
		if existing != "" {
			return existing
		}
	}

	newUUID := uuid.New().String()
	if err := saveUserUUID(newUUID); err != nil {
		// Could not persist; keep a per-process identifier.
		return newUUID
	}

	return newUUID
}

func saveUserUUID(newUUID string) error {
	uuidFile := userUUIDFilePath()

	if err := os.MkdirAll(filepath.Dir(uuidFile), 0o755); err != nil {
		return err
	}

	return os.WriteFile(uuidFile, []byte(newUUID), 0o600)
}
