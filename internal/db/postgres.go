package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicpulse/request-notifier/internal/config"
)

// Connect creates a pgxpool connection pool and verifies connectivity.
// One connection is held for the lifetime of the LISTEN loop, so the pool
// is sized with that in mind.
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	if cfg.ListenerEnabled && poolCfg.MaxConns < 2 {
		poolCfg.MaxConns = 2
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Migrate runs all pending up-migrations from sourceURL.
// It is idempotent: already-applied migrations are skipped.
func Migrate(sourceURL, databaseURL string) error {
	m, err := migrate.New(sourceURL, MigrationURL(databaseURL))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// MigrationURL rewrites a postgres:// or postgresql:// connection string to
// the pgx5:// scheme expected by golang-migrate's pgx/v5 driver.
func MigrationURL(databaseURL string) string {
	var rest string
	switch {
	case strings.HasPrefix(databaseURL, "postgresql://"):
		rest = databaseURL[len("postgresql://"):]
	case strings.HasPrefix(databaseURL, "postgres://"):
		rest = databaseURL[len("postgres://"):]
	case strings.HasPrefix(databaseURL, "pgx5://"):
		return databaseURL
	default:
		rest = databaseURL
	}
	return "pgx5://" + rest
}
