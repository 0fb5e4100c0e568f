// Package database provides a namespace.Store backed by SQLite or PostgreSQL
// through GORM. SQLite schemas are created with AutoMigrate; PostgreSQL
// schemas are versioned with golang-migrate (see RunMigrations).
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marmos91/ecfs/internal/logger"
	"github.com/marmos91/ecfs/internal/telemetry"
	"github.com/marmos91/ecfs/pkg/namespace"
)

// entryRow is the persisted form of a namespace.Entry.
type entryRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Path      string    `gorm:"uniqueIndex;size:4096;not null"`
	Type      string    `gorm:"size:16;not null"`
	Policy    string    `gorm:"size:128"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (entryRow) TableName() string {
	return "namespace_entries"
}

func (r *entryRow) toEntry() *namespace.Entry {
	return &namespace.Entry{
		Path:      r.Path,
		Type:      namespace.EntryType(r.Type),
		Policy:    r.Policy,
		UpdatedAt: r.UpdatedAt,
	}
}

// Store implements namespace.Store using GORM.
type Store struct {
	db     *gorm.DB
	config *Config
}

var _ namespace.Store = (*Store)(nil)

// New opens the configured database and migrates the schema.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = &Config{}
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	var dialector gorm.Dialector
	switch config.Type {
	case DatabaseTypeSQLite:
		if err := os.MkdirAll(filepath.Dir(config.SQLite.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// WAL for concurrent readers, busy_timeout so writers wait instead of failing.
		dsn := config.SQLite.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		dialector = sqlite.Open(dsn)
	case DatabaseTypePostgres:
		dialector = postgres.Open(config.Postgres.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(config.LogQueries)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if config.Type == DatabaseTypePostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying database: %w", err)
		}
		sqlDB.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	}

	if config.Type == DatabaseTypePostgres {
		if err := RunMigrations(context.Background(), config); err != nil {
			return nil, err
		}
	} else if err := db.AutoMigrate(&entryRow{}); err != nil {
		return nil, fmt.Errorf("failed to run database migration: %w", err)
	}

	logger.Debug("Namespace database ready", "type", config.Type)
	return &Store{db: db, config: config}, nil
}

func (s *Store) Get(ctx context.Context, path string) (*namespace.Entry, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, string(s.config.Type), "get", telemetry.Path(path))
	defer span.End()

	var row entryRow
	err := s.db.WithContext(ctx).Where("path = ?", path).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, namespace.ErrNotFound
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	return row.toEntry(), nil
}

func (s *Store) Put(ctx context.Context, e *namespace.Entry) error {
	ctx, span := telemetry.StartStoreSpan(ctx, string(s.config.Type), "put", telemetry.Path(e.Path))
	defer span.End()

	row := entryRow{
		ID:        uuid.New().String(),
		Path:      e.Path,
		Type:      string(e.Type),
		Policy:    e.Policy,
		UpdatedAt: e.UpdatedAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "policy", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

func (s *Store) List(ctx context.Context, prefix string) ([]*namespace.Entry, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, string(s.config.Type), "list", telemetry.Path(prefix))
	defer span.End()

	var rows []entryRow
	err := s.db.WithContext(ctx).
		Where(`path LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Find(&rows).Error
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	// SQLite LIKE folds ASCII case and PostgreSQL collations need not be
	// bytewise, so filtering and ordering are finished here.
	out := make([]*namespace.Entry, 0, len(rows))
	for i := range rows {
		if strings.HasPrefix(rows[i].Path, prefix) {
			out = append(out, rows[i].toEntry())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the underlying GORM handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
