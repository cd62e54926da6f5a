package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifier/internal/auth"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return strings.TrimSpace(out.String())
}

func TestSecretCommand(t *testing.T) {
	secret := execute(t, "secret", "--length", "20")
	assert.Len(t, secret, 20)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("INTERNAL_API_TOKEN", "cli-internal")

	token := execute(t, "token", "--user", "12")

	userID, err := auth.ParseToken("cli-secret", token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), userID)
}

func TestMigrateCommands(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("INTERNAL_API_TOKEN", "cli-internal")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", t.TempDir()+"/cli.db")

	assert.Equal(t, "migrations applied", execute(t, "migrate", "up"))
	assert.Equal(t, "version 1 (dirty: false)", execute(t, "migrate", "version"))
	assert.Equal(t, "migrations rolled back", execute(t, "migrate", "down"))
	assert.Equal(t, "version 0 (dirty: false)", execute(t, "migrate", "version"))
}
