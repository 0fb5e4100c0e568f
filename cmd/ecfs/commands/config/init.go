package config

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/marmos91/ecfs/internal/cli/prompt"
	"github.com/marmos91/ecfs/pkg/config"
	"github.com/marmos91/ecfs/pkg/controlplane/api"
	"github.com/marmos91/ecfs/pkg/controlplane/api/auth"
	"github.com/marmos91/ecfs/pkg/namespace"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Create an ecfs configuration file with a freshly generated JWT secret.

By default, the configuration file is created at $XDG_CONFIG_HOME/ecfs/config.yaml.
Use --config to specify a custom path, and --interactive to be asked for the
store, port, enabled policies and a first admin user.

Examples:
  # Initialize with defaults
  ecfs config init

  # Walk through the main settings
  ecfs config init --interactive

  # Force overwrite existing config
  ecfs config init --force --config /etc/ecfs/config.yaml`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for the main settings")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.NewInitialConfig()
	if err != nil {
		return err
	}

	if initInteractive {
		if err := runWizard(cfg); err != nil {
			if prompt.IsAborted(err) {
				return fmt.Errorf("initialization aborted")
			}
			return err
		}
	}

	if err := config.WriteConfig(configPath, cfg, initForce); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	printNextSteps(cmd.OutOrStdout(), configPath, len(cfg.ControlPlane.Users) > 0)
	return nil
}

// runWizard asks for the settings most deployments change.
func runWizard(cfg *config.Config) error {
	storeType, err := prompt.Select("Namespace store", []prompt.SelectOption{
		{Label: "sqlite", Value: string(config.StoreTypeSQLite), Description: "Embedded SQL database file, single server"},
		{Label: "badger", Value: string(config.StoreTypeBadger), Description: "Embedded key-value store, single server"},
		{Label: "postgres", Value: string(config.StoreTypePostgres), Description: "Shared PostgreSQL database, multiple servers"},
		{Label: "memory", Value: string(config.StoreTypeMemory), Description: "Volatile, for testing only"},
	})
	if err != nil {
		return err
	}
	cfg.Database.Type = config.StoreType(storeType)

	if cfg.Database.Type == config.StoreTypePostgres {
		host, err := prompt.Input("PostgreSQL host", "localhost")
		if err != nil {
			return err
		}
		cfg.Database.Postgres.Host = host
		if cfg.Database.Postgres.Port, err = prompt.InputPort("PostgreSQL port", 5432); err != nil {
			return err
		}
		if cfg.Database.Postgres.Database, err = prompt.Input("PostgreSQL database", "ecfs"); err != nil {
			return err
		}
		if cfg.Database.Postgres.User, err = prompt.Input("PostgreSQL user", "ecfs"); err != nil {
			return err
		}
		if cfg.Database.Postgres.Password, err = prompt.Password("PostgreSQL password", 0); err != nil {
			return err
		}
	}
	config.ApplyDefaults(cfg)

	if cfg.ControlPlane.Port, err = prompt.InputPort("API port", cfg.ControlPlane.Port); err != nil {
		return err
	}

	var options []prompt.SelectOption
	for _, p := range namespace.SystemPolicies() {
		options = append(options, prompt.SelectOption{Label: p.Name, Value: p.Name})
	}
	enabled, err := prompt.MultiSelect("Enabled erasure coding policies", options, cfg.Policies.Enabled)
	if err != nil {
		return err
	}
	if len(enabled) > 0 {
		cfg.Policies.Enabled = enabled
	}

	addAdmin, err := prompt.Confirm("Create an admin user", true)
	if err != nil {
		return err
	}
	if !addAdmin {
		return nil
	}

	username, err := prompt.Input("Admin username", "admin")
	if err != nil {
		return err
	}
	password, err := prompt.NewPassword(auth.MinPasswordLength)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	cfg.ControlPlane.Users = append(cfg.ControlPlane.Users, auth.User{
		Username:     username,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
	})
	return nil
}

func printNextSteps(w io.Writer, configPath string, hasUsers bool) {
	_, _ = fmt.Fprintf(w, "Configuration file created at: %s\n", configPath)
	_, _ = fmt.Fprintln(w, "\nNext steps:")
	_, _ = fmt.Fprintln(w, "  1. Edit the configuration file to customize your setup")
	_, _ = fmt.Fprintf(w, "  2. Start the server with: ecfs start --config %s\n", configPath)
	if hasUsers {
		_, _ = fmt.Fprintln(w, "  3. Point ecfsctl at the server and log in with the admin user")
	} else {
		_, _ = fmt.Fprintln(w, "  3. Add a user with 'ecfs user add' or mint a token with 'ecfs token --subject <name>'")
	}
	_, _ = fmt.Fprintln(w, "\nSecurity note:")
	_, _ = fmt.Fprintln(w, "  A random JWT secret has been generated for development use.")
	_, _ = fmt.Fprintln(w, "  For production, provide the secret through the environment instead:")
	_, _ = fmt.Fprintf(w, "    export %s=$(openssl rand -hex 32)\n", api.EnvControlPlaneSecret)
}
