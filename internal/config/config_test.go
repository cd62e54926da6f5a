package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("INTERNAL_API_TOKEN", "internal-token")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "60-M", cfg.RateLimit)
	assert.Equal(t, 10, cfg.Worker.Concurrency)
	assert.Equal(t, 24*time.Hour, cfg.Worker.PurgeInterval)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
}

func TestLoadFromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/notifier-test.db")
	t.Setenv("PURGE_INTERVAL", "30m")
	t.Setenv("WORKER_CONCURRENCY", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/notifier-test.db", cfg.DB.SQLitePath)
	assert.Equal(t, 30*time.Minute, cfg.Worker.PurgeInterval)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET": "", "INTERNAL_API_TOKEN": "x"}},
		{"missing internal token", map[string]string{"JWT_SECRET": "x", "INTERNAL_API_TOKEN": ""}},
		{"unknown driver", map[string]string{"JWT_SECRET": "x", "INTERNAL_API_TOKEN": "x", "DB_DRIVER": "mysql"}},
		{"bad log level", map[string]string{"JWT_SECRET": "x", "INTERNAL_API_TOKEN": "x", "LOG_LEVEL": "verbose"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestDBConfigDSN(t *testing.T) {
	sqlite := DBConfig{Driver: DriverSQLite, SQLitePath: "/data/notifier.db"}
	assert.Equal(t, "file:/data/notifier.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqlite.DSN())
	assert.Equal(t, "sqlite:///data/notifier.db", sqlite.MigrationURL())

	pg := DBConfig{Driver: DriverPostgres, Host: "db", Port: "5432", User: "app", Password: "secret", Name: "notifier"}
	assert.Equal(t, "postgres://app:secret@db:5432/notifier?sslmode=disable", pg.DSN())
	assert.Equal(t, pg.DSN(), pg.MigrationURL())

	pg.URL = "postgres://override/db"
	assert.Equal(t, "postgres://override/db", pg.DSN())
}
