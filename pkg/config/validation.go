package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/marmos91/ecfs/pkg/namespace"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	if sql := cfg.Database.SQL(); sql != nil {
		if err := sql.Validate(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if _, err := namespace.NewCatalog(cfg.Policies.Enabled); err != nil {
		return fmt.Errorf("policies.enabled: %w", err)
	}
	return nil
}

// ValidateClient checks the ecfsctl configuration.
func ValidateClient(cfg *ClientConfig) error {
	return validate.Struct(cfg)
}

// dataPath returns a file under $XDG_DATA_HOME/ecfs.
func dataPath(name string) string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "ecfs", name)
}
