package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig configures ecfsctl.
type ClientConfig struct {
	// ServerURL is the control plane address, e.g. http://localhost:8080.
	ServerURL string `mapstructure:"server_url" validate:"required,url" yaml:"server_url"`

	// Token is the bearer token sent with every request.
	Token string `mapstructure:"token" yaml:"token,omitempty"`

	// RefreshToken is stored by `ecfs login` and exchanged by
	// `ecfs login --refresh` for a new token pair.
	RefreshToken string `mapstructure:"refresh_token" yaml:"refresh_token,omitempty"`

	// Timeout bounds each request to the control plane.
	// Default: 30s
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0" yaml:"timeout"`

	// WorkingDir resolves relative -path arguments.
	// Default: /
	WorkingDir string `mapstructure:"working_dir" validate:"required,startswith=/" yaml:"working_dir"`

	// Logging goes to stderr so that stdout carries command results only.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// GetDefaultClientConfigPath returns the default ecfsctl configuration path.
func GetDefaultClientConfigPath() string {
	return filepath.Join(getConfigDir(), "ecfsctl.yaml")
}

// LoadClient loads the ecfsctl configuration. A missing file is not an
// error: defaults and ECFS_* environment variables still apply.
func LoadClient(configPath string) (*ClientConfig, error) {
	v := viper.New()
	setupViper(v, configPath, "ecfsctl")

	// Bind every key so AutomaticEnv also applies without a config file.
	for _, key := range []string{"server_url", "token", "refresh_token", "timeout", "working_dir", "logging.level", "logging.format", "logging.output"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyClientDefaults(&cfg)

	if err := ValidateClient(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// ApplyClientDefaults fills in unset client configuration.
func ApplyClientDefaults(cfg *ClientConfig) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8080"
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.WorkingDir == "" {
		cfg.WorkingDir = "/"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "WARN"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}
