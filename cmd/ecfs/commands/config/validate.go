package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/ecfs/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the ecfs configuration file.

Checks for syntax errors, missing required fields, unknown policies and
invalid values.

Examples:
  # Validate default config
  ecfs config validate

  # Validate specific config file
  ecfs config validate --config /etc/ecfs/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if !cfg.ControlPlane.HasJWTSecret() {
		warnings = append(warnings, "JWT secret not configured - the server will refuse to start")
	}
	if len(cfg.ControlPlane.Users) == 0 {
		warnings = append(warnings, "No control plane users - tokens can only be minted with 'ecfs token'")
	}
	if cfg.Database.Type == config.StoreTypeMemory {
		warnings = append(warnings, "Memory store selected - policy assignments are lost on restart")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Database type:     %s\n", cfg.Database.Type)
	_, _ = fmt.Fprintf(out, "  API port:          %d\n", cfg.ControlPlane.Port)
	_, _ = fmt.Fprintf(out, "  Enabled policies:  %v\n", cfg.Policies.Enabled)
	_, _ = fmt.Fprintf(out, "  Users:             %d\n", len(cfg.ControlPlane.Users))
	_, _ = fmt.Fprintf(out, "  Log level:         %s\n", cfg.Logging.Level)

	return nil
}
