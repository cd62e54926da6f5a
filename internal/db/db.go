package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"notifier/internal/config"
)

const connectTimeout = 30 * time.Second

// Open connects to the configured database and applies the pool settings.
// Connecting is retried with exponential backoff for a short while so the
// service can start alongside its database.
func Open(cfg config.DBConfig) (*sqlx.DB, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = connectTimeout

	conn, err := backoff.RetryWithData(func() (*sqlx.DB, error) {
		return sqlx.Connect(cfg.Driver, cfg.DSN())
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	slog.Info("Successfully connected to database", "driver", cfg.Driver)
	return conn, nil
}
