package config

import (
	"context"
	"fmt"

	"github.com/marmos91/ecfs/internal/logger"
	"github.com/marmos91/ecfs/pkg/namespace"
	"github.com/marmos91/ecfs/pkg/namespace/store/badger"
	"github.com/marmos91/ecfs/pkg/namespace/store/database"
	"github.com/marmos91/ecfs/pkg/namespace/store/memory"
)

// OpenStore creates the namespace store selected by cfg.
func OpenStore(cfg *DatabaseConfig) (namespace.Store, error) {
	switch cfg.Type {
	case StoreTypeMemory:
		return memory.New(), nil
	case StoreTypeBadger:
		return badger.New(cfg.Badger)
	case StoreTypeSQLite, StoreTypePostgres:
		return database.New(cfg.SQL())
	default:
		return nil, fmt.Errorf("unknown database type: %q", cfg.Type)
	}
}

// OpenNamespace opens the configured store and builds the namespace over
// it. The caller owns the returned store and must close it.
func OpenNamespace(ctx context.Context, cfg *Config) (*namespace.Namespace, namespace.Store, error) {
	catalog, err := namespace.NewCatalog(cfg.Policies.Enabled)
	if err != nil {
		return nil, nil, err
	}

	store, err := OpenStore(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Database.Type, err)
	}

	ns, err := namespace.New(ctx, store, catalog)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	logger.Info("Namespace store opened", logger.KeyStore, string(cfg.Database.Type), "enabled_policies", cfg.Policies.Enabled)
	return ns, store, nil
}
