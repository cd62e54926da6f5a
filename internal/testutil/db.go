package testutil

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"notifier/internal/config"
	"notifier/internal/db"
	"notifier/internal/migrations"
)

// PostgresURLEnv names the variable that switches NewTestDB to Postgres.
const PostgresURLEnv = "TEST_DATABASE_URL"

// NewTestDB creates a migrated SQLite database in a temporary directory.
// When TEST_DATABASE_URL is set it instead migrates a fresh schema in that
// Postgres database. It is closed automatically when the test completes.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	if dsn := os.Getenv(PostgresURLEnv); dsn != "" {
		return open(t, postgresSchema(t, dsn))
	}

	return open(t, config.DBConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "notifications.db"),
	})
}

// postgresSchema creates a schema private to the test and returns a config
// whose connections use it as their search_path. Packages are tested in
// parallel, so they cannot share the public schema.
func postgresSchema(t *testing.T, dsn string) config.DBConfig {
	t.Helper()

	admin, err := sqlx.Connect(config.DriverPostgres, dsn)
	if err != nil {
		t.Fatalf("connecting to %s: %v", PostgresURLEnv, err)
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Exec("CREATE SCHEMA " + schema); err != nil {
		admin.Close()
		t.Fatalf("creating schema %s: %v", schema, err)
	}

	t.Cleanup(func() {
		defer admin.Close()
		if _, err := admin.Exec("DROP SCHEMA " + schema + " CASCADE"); err != nil {
			t.Errorf("dropping schema %s: %v", schema, err)
		}
	})

	u, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("parsing %s: %v", PostgresURLEnv, err)
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	return config.DBConfig{Driver: config.DriverPostgres, URL: u.String()}
}

func open(t *testing.T, cfg config.DBConfig) *sqlx.DB {
	t.Helper()

	if err := migrations.Up(cfg); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	return conn
}

// QueryCounter is a slog.Handler that counts the "db query" records emitted
// by the notification store.
type QueryCounter struct {
	mu sync.Mutex
	n  int
}

func (c *QueryCounter) Enabled(context.Context, slog.Level) bool { return true }

func (c *QueryCounter) Handle(_ context.Context, r slog.Record) error {
	if r.Message == "db query" {
		c.mu.Lock()
		c.n++
		c.mu.Unlock()
	}
	return nil
}

func (c *QueryCounter) WithAttrs([]slog.Attr) slog.Handler { return c }

func (c *QueryCounter) WithGroup(string) slog.Handler { return c }

func (c *QueryCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func (c *QueryCounter) Reset() {
	c.mu.Lock()
	c.n = 0
	c.mu.Unlock()
}
