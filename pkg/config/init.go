package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configHeader = `# ecfs configuration file
#
# Every key can be overridden with an ECFS_ environment variable, e.g.
# ECFS_LOGGING_LEVEL=DEBUG or ECFS_DATABASE_TYPE=postgres.
# The JWT secret can also be provided via ECFS_CONTROLPLANE_SECRET.
#
# Run 'ecfs config schema' for the JSON schema of this file.

`

// NewInitialConfig returns the default configuration with a freshly
// generated JWT secret.
func NewInitialConfig() (*Config, error) {
	cfg := GetDefaultConfig()
	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}
	cfg.ControlPlane.JWT.Secret = secret
	return cfg, nil
}

// InitConfig writes an initial configuration file at the default location
// and returns its path.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// InitConfigToPath writes an initial configuration file at path. An
// existing file is only replaced when force is set.
func InitConfigToPath(path string, force bool) error {
	cfg, err := NewInitialConfig()
	if err != nil {
		return err
	}
	return WriteConfig(path, cfg, force)
}

// WriteConfig writes cfg with an explanatory header. An existing file is
// only replaced when force is set.
func WriteConfig(path string, cfg any, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateSecret returns a random 64 character hex string.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
