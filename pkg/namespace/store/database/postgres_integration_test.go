//go:build integration

package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/ecfs/pkg/namespace"
	"github.com/marmos91/ecfs/pkg/namespace/store/database"
	"github.com/marmos91/ecfs/pkg/namespace/storetest"
)

func TestPostgresConformance(t *testing.T) {
	ctx := context.Background()

	// PostgreSQL logs "ready to accept connections" once during bootstrap and
	// once when it is actually serving.
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ecfs_test"),
		postgres.WithUsername("ecfs_test"),
		postgres.WithPassword("ecfs_test"),
		testcontainers.WithWaitStrategyAndDeadline(5*time.Minute,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	newConfig := func() *database.Config {
		return &database.Config{
			Type: database.DatabaseTypePostgres,
			Postgres: database.PostgresConfig{
				Host:     host,
				Port:     port.Int(),
				Database: "ecfs_test",
				User:     "ecfs_test",
				Password: "ecfs_test",
			},
		}
	}

	t.Run("Migrations", func(t *testing.T) {
		if err := database.RunMigrations(ctx, newConfig()); err != nil {
			t.Fatalf("RunMigrations() failed: %v", err)
		}
		// A second run has nothing to apply.
		if err := database.RunMigrations(ctx, newConfig()); err != nil {
			t.Fatalf("RunMigrations() second run failed: %v", err)
		}

		status, err := database.GetMigrationStatus(ctx, newConfig())
		if err != nil {
			t.Fatalf("GetMigrationStatus() failed: %v", err)
		}
		if !status.Applied || status.Dirty || status.Version != 2 {
			t.Fatalf("unexpected migration status: %+v", status)
		}
	})

	storetest.RunConformanceSuite(t, func(t *testing.T) namespace.Store {
		store, err := database.New(newConfig())
		if err != nil {
			t.Fatalf("database.New() failed: %v", err)
		}
		// The container is shared, so every test starts from an empty table.
		if err := store.DB().Exec("DELETE FROM namespace_entries").Error; err != nil {
			t.Fatalf("failed to reset table: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}
