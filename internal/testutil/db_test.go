package testutil

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestDBIsMigrated(t *testing.T) {
	conn := NewTestDB(t)

	for _, table := range []string{"notifications", "notification_recipients"} {
		var n int
		require.NoError(t, conn.Get(&n, "SELECT COUNT(*) FROM "+table), table)
		assert.Zero(t, n, table)
	}
}

func TestNewTestDBUsesPrivatePostgresSchema(t *testing.T) {
	if os.Getenv(PostgresURLEnv) == "" {
		t.Skipf("%s not set", PostgresURLEnv)
	}

	first, second := NewTestDB(t), NewTestDB(t)
	assert.Equal(t, "postgres", first.DriverName())

	var a, b string
	require.NoError(t, first.Get(&a, "SELECT current_schema()"))
	require.NoError(t, second.Get(&b, "SELECT current_schema()"))
	assert.True(t, strings.HasPrefix(a, "test_"), a)
	assert.NotEqual(t, a, b)

	_, err := first.Exec("INSERT INTO notifications (type, data, created_at) VALUES ('t', '{}', now())")
	require.NoError(t, err)

	var n int
	require.NoError(t, second.Get(&n, "SELECT COUNT(*) FROM notifications"))
	assert.Zero(t, n)
}

func TestQueryCounter(t *testing.T) {
	c := &QueryCounter{}
	logger := slog.New(c).With("component", "store")

	logger.DebugContext(context.Background(), "db query", "op", "select")
	logger.Info("something else")
	logger.Debug("db query")
	assert.Equal(t, 2, c.Count())

	c.Reset()
	assert.Zero(t, c.Count())
}
