package config

import (
	"strings"
	"time"

	"github.com/marmos91/ecfs/pkg/namespace"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyDatabaseDefaults(&cfg.Database)
	cfg.ControlPlane.ApplyDefaults()
	applyPolicyDefaults(&cfg.Policies)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyDatabaseDefaults defaults to SQLite and fills in the selected
// backend's settings.
func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.Type == "" {
		cfg.Type = StoreTypeSQLite
	}
	if cfg.Type == StoreTypeBadger && cfg.Badger.Path == "" && !cfg.Badger.InMemory {
		cfg.Badger.Path = dataPath("namespace.badger")
	}
	if sql := cfg.SQL(); sql != nil {
		sql.ApplyDefaults()
		cfg.SQLite = sql.SQLite
		cfg.Postgres = sql.Postgres
	}
}

func applyPolicyDefaults(cfg *PoliciesConfig) {
	if len(cfg.Enabled) == 0 {
		cfg.Enabled = []string{namespace.DefaultEnabledPolicy}
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Database: DatabaseConfig{Type: StoreTypeSQLite},
	}
	ApplyDefaults(cfg)
	return cfg
}

// GetDefaultClientConfig returns a ClientConfig with all default values applied.
func GetDefaultClientConfig() *ClientConfig {
	cfg := &ClientConfig{}
	ApplyClientDefaults(cfg)
	return cfg
}
