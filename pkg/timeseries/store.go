package timeseries

import (
	"context"
	stdsql "database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver under database/sql

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
)

//go:embed migrations
var migrationsFS embed.FS

// Store is the Postgres-backed time-series adapter. Safe for concurrent
// use; callers should construct one per process and share it.
type Store struct {
	db            *sqlx.DB
	retentionDays int
}

// New opens a connection pool against cfg.DSN, applies pending
// migrations, and returns a ready Store.
func New(ctx context.Context, cfg config.DatabaseConfig, tsCfg config.TimeseriesConfig) (*Store, error) {
	sqlDB, err := stdsql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("timeseries: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("timeseries: ping: %w", err)
	}

	if err := runMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("timeseries: migrate: %w", err)
	}

	retentionDays := tsCfg.RetentionDays
	if retentionDays <= 0 {
		retentionDays = 30
	}

	return &Store{db: sqlx.NewDb(sqlDB, "pgx"), retentionDays: retentionDays}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// runMigrations applies the embedded schema using golang-migrate, the
// same iofs-embed.FS wiring the teacher uses for its ent-backed schema,
// minus ent (see DESIGN.md).
func runMigrations(db *stdsql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "timeseries", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// Must not call m.Close(): it closes the database driver, which would
	// close the shared *sql.DB handed to postgres.WithInstance above.
	return sourceDriver.Close()
}

func clampHours(hours int) time.Duration {
	if hours <= 0 {
		hours = 1
	}
	return time.Duration(hours) * time.Hour
}
