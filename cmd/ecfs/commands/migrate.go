package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/ecfs/internal/logger"
	"github.com/marmos91/ecfs/pkg/config"
	"github.com/marmos91/ecfs/pkg/namespace/store/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run namespace database migrations",
	Long: `Apply pending schema migrations to the namespace database.

PostgreSQL databases are migrated with versioned migrations; run this after
upgrading ecfs. SQLite databases are migrated when the server opens them,
so this command only checks that they can be opened.

Examples:
  # Run migrations with default config
  ecfs migrate

  # Show the schema version without migrating
  ecfs migrate status`,
	RunE: runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the PostgreSQL schema version",
	RunE:  runMigrateStatus,
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadSQLConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	sqlCfg := cfg.Database.SQL()

	logger.Info("Running database migrations", "type", cfg.Database.Type)

	if err := database.RunMigrations(ctx, sqlCfg); err != nil {
		return err
	}

	// Opening the store migrates SQLite and verifies the connection.
	store, err := database.New(sqlCfg)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer func() { _ = store.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Migrations completed successfully (database type: %s)\n", cfg.Database.Type)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadSQLConfig()
	if err != nil {
		return err
	}

	status, err := database.GetMigrationStatus(context.Background(), cfg.Database.SQL())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case !status.Applied:
		_, _ = fmt.Fprintln(out, "No migrations applied")
	case status.Dirty:
		_, _ = fmt.Fprintf(out, "Schema version %d (dirty: a migration failed, manual intervention required)\n", status.Version)
	default:
		_, _ = fmt.Fprintf(out, "Schema version %d\n", status.Version)
	}
	return nil
}

func loadSQLConfig() (*config.Config, error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, err
	}
	switch cfg.Database.Type {
	case config.StoreTypeSQLite, config.StoreTypePostgres:
		return cfg, nil
	default:
		return nil, fmt.Errorf("database type %s has no schema to migrate", cfg.Database.Type)
	}
}
