// Package scrub redacts likely-personal or secret material from free-text
// telemetry property values before they leave the process.
//
// The reporter runs every property value through Scrub unless the sender
// marked the key as safe free text. Redaction is deterministic so that
// identical inputs aggregate to identical outputs on the collector side.
package scrub

import (
	"os"
	"regexp"
	"strings"
)

const (
	RedactedHome   = "<redacted:home>"
	RedactedEmail  = "<redacted:email>"
	RedactedSecret = "<redacted:secret>"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// Long runs of hex or base64-looking characters are treated as secrets.
	// 32 hex chars covers MD5 and up; 40 covers git SHAs and API tokens.
	hexSecretPattern    = regexp.MustCompile(`\b[0-9a-fA-F]{32,}\b`)
	base64SecretPattern = regexp.MustCompile(`\b[A-Za-z0-9+/=_-]{40,}\b`)
)

// Scrubber redacts free-text values. The zero value is not usable; call New.
type Scrubber struct {
	homeDir string
}

// New returns a Scrubber bound to the current user's home directory.
func New() *Scrubber {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return &Scrubber{homeDir: home}
}

// NewWithHome returns a Scrubber that treats home as the user's home
// directory. Used by tests and by hosts that resolve home themselves.
func NewWithHome(home string) *Scrubber {
	return &Scrubber{homeDir: home}
}

// Scrub returns s with home directory paths, email addresses, and
// token-shaped strings replaced by fixed placeholders.
func (sc *Scrubber) Scrub(s string) string {
	if s == "" {
		return s
	}
	if sc.homeDir != "" && sc.homeDir != "/" {
		s = strings.ReplaceAll(s, sc.homeDir, RedactedHome)
	}
	s = emailPattern.ReplaceAllString(s, RedactedEmail)
	s = hexSecretPattern.ReplaceAllString(s, RedactedSecret)
	s = base64SecretPattern.ReplaceAllString(s, RedactedSecret)
	return s
}

// Properties scrubs every value of props in place, skipping keys listed in
// safe. The map is modified and returned for convenience.
func (sc *Scrubber) Properties(props map[string]string, safe []string) map[string]string {
	if len(props) == 0 {
		return props
	}
	safeSet := make(map[string]struct{}, len(safe))
	for _, k := range safe {
		safeSet[k] = struct{}{}
	}
	for k, v := range props {
		if _, ok := safeSet[k]; ok {
			continue
		}
		props[k] = sc.Scrub(v)
	}
	return props
}
