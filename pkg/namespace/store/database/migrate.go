package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver used by golang-migrate

	"github.com/marmos91/ecfs/internal/logger"
	"github.com/marmos91/ecfs/pkg/namespace/store/database/migrations"
)

const migrationsTable = "ecfs_schema_migrations"

// MigrationStatus reports the schema version of a PostgreSQL database.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Applied bool // false when no migration has run yet
}

// newMigrator opens a golang-migrate instance over the embedded migrations.
// The returned close function releases both the source and the connection.
func newMigrator(ctx context.Context, cfg *PostgresConfig) (*migrate.Migrate, func(), error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		MigrationsTable: migrationsTable,
		DatabaseName:    cfg.Database,
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, func() { _, _ = m.Close() }, nil
}

// RunMigrations applies pending migrations to the PostgreSQL database in
// cfg. golang-migrate holds an advisory lock while it runs, so concurrent
// servers starting against the same database are safe. SQLite databases are
// migrated by New and need no call.
func RunMigrations(ctx context.Context, cfg *Config) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}
	if cfg.Type != DatabaseTypePostgres {
		return nil
	}

	m, closeFn, err := newMigrator(ctx, &cfg.Postgres)
	if err != nil {
		return err
	}
	defer closeFn()

	logger.Info("Applying namespace schema migrations", "database", cfg.Postgres.Database)
	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Debug("Namespace schema is up to date")
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		logger.Warn("Namespace schema is dirty, manual intervention may be required", "version", version)
	} else {
		logger.Info("Namespace schema version", "version", version)
	}
	return nil
}

// GetMigrationStatus returns the schema version of the PostgreSQL database
// in cfg without applying anything.
func GetMigrationStatus(ctx context.Context, cfg *Config) (*MigrationStatus, error) {
	cfg.ApplyDefaults()
	if cfg.Type != DatabaseTypePostgres {
		return nil, fmt.Errorf("migration status is only tracked for postgres, not %s", cfg.Type)
	}

	m, closeFn, err := newMigrator(ctx, &cfg.Postgres)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return &MigrationStatus{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
}
