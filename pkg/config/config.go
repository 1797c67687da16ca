// Package config resolves the telemetry reporter configuration.
//
// Resolution order for every field: environment variable, then the user
// config file (~/.config/actionscope/config.yaml), then build-time defaults
// injected via -ldflags.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"

	"github.com/actionscope/actionscope/pkg/paths"
)

// Build-time defaults (set via -ldflags).
var (
	DefaultEnabled  = "true"
	DefaultEndpoint = ""
	DefaultAPIKey   = ""
	DefaultHeader   = "x-api-key"
)

// Environment variables, all optional.
const (
	EnvEnabled  = "ACTIONSCOPE_TELEMETRY"
	EnvEndpoint = "ACTIONSCOPE_ENDPOINT"
	EnvAPIKey   = "ACTIONSCOPE_API_KEY"
	EnvHeader   = "ACTIONSCOPE_HEADER"
)

// Config is the resolved reporter configuration.
type Config struct {
	// Enabled gates all event transmission. Disabled still constructs a
	// working (no-op) reporter.
	Enabled bool `yaml:"enabled"`
	// Endpoint is the collector URL events are POSTed to.
	Endpoint string `yaml:"endpoint,omitempty"`
	// APIKey authenticates against the collector.
	APIKey string `yaml:"api_key,omitempty"`
	// Header is the request header the APIKey is sent in.
	Header string `yaml:"header,omitempty"`
}

// Path returns the path to the user config file.
func Path() string {
	return filepath.Join(paths.GetConfigDir(), "config.yaml")
}

// Load resolves configuration from the environment, the user config file,
// and build-time defaults, in that order of precedence.
func Load() (*Config, error) {
	return loadFrom(Path())
}

func loadFrom(configPath string) (*Config, error) {
	cfg := &Config{
		Enabled:  DefaultEnabled == "true",
		Endpoint: DefaultEndpoint,
		APIKey:   DefaultAPIKey,
		Header:   DefaultHeader,
	}

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// No user config, defaults and environment apply.
	case err != nil:
		return nil, err
	default:
		// Enabled is a pointer here so that a config file that omits the
		// field does not silently disable telemetry.
		var fileCfg struct {
			Enabled  *bool  `yaml:"enabled"`
			Endpoint string `yaml:"endpoint"`
			APIKey   string `yaml:"api_key"`
			Header   string `yaml:"header"`
		}
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		if fileCfg.Enabled != nil {
			cfg.Enabled = *fileCfg.Enabled
		}
		if fileCfg.Endpoint != "" {
			cfg.Endpoint = fileCfg.Endpoint
		}
		if fileCfg.APIKey != "" {
			cfg.APIKey = fileCfg.APIKey
		}
		if fileCfg.Header != "" {
			cfg.Header = fileCfg.Header
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvEnabled); v != "" {
		cfg.Enabled = v == "true"
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvHeader); v != "" {
		cfg.Header = v
	}
}

// Save writes cfg to the user config file atomically.
func (c *Config) Save() error {
	return c.saveTo(Path())
}

func (c *Config) saveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return atomic.WriteFile(configPath, bytes.NewReader(data))
}
