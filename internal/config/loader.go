package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"domaind/internal/relations"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel     string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat    string `json:"log_format" yaml:"log_format" toml:"log_format"`
	PostgresDSN  string `json:"postgres_dsn" yaml:"postgres_dsn" toml:"postgres_dsn"`
	MaxBodyBytes int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORS         CORS   `json:"cors" yaml:"cors" toml:"cors"`

	// RequestLogLevel is off|error|info|debug. Empty follows LogLevel.
	RequestLogLevel string `json:"request_log_level" yaml:"request_log_level" toml:"request_log_level"`

	// EventBuffer is the per-connection queue of the websocket event stream.
	EventBuffer int `json:"event_buffer" yaml:"event_buffer" toml:"event_buffer"`

	// Durations use Go syntax, e.g. "30s".
	EventPingInterval string `json:"event_ping_interval" yaml:"event_ping_interval" toml:"event_ping_interval"`
	RedeliverInterval string `json:"redeliver_interval" yaml:"redeliver_interval" toml:"redeliver_interval"`

	// Relations declares relations per model name, keyed by relation name.
	Relations map[string]map[string]relations.Spec `json:"relations" yaml:"relations" toml:"relations"`
}

// CORS configures the opt-in CORS middleware.
type CORS struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// Environment variables overriding file values.
const (
	EnvAddr        = "DOMAIND_ADDR"
	EnvLogLevel    = "DOMAIND_LOG_LEVEL"
	EnvPostgresDSN = "DOMAIND_POSTGRES_DSN"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with the non-empty DOMAIND_* variables read through
// getenv.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv(EnvPostgresDSN); v != "" {
		cfg.PostgresDSN = v
	}
	return cfg
}

// Duration parses a Go duration string. Empty selects def.
func Duration(s string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid duration %q: must be positive", s)
	}
	return d, nil
}
