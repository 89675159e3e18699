package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-dashboard-backend/pkg/config"
	"org-dashboard-backend/pkg/models"
	"org-dashboard-backend/pkg/utils"
)

func TestRedactDSN(t *testing.T) {
	redacted := redactDSN("postgres://app:hunter2@db:5432/dash")
	assert.NotContains(t, redacted, "hunter2")
	assert.Contains(t, redacted, "@db:5432/dash")
	assert.Equal(t, "postgres://db/dash", redactDSN("postgres://db/dash"))
	assert.Equal(t, "host=db user=app", redactDSN("host=db user=app"))
	assert.Equal(t, "", redactDSN(""))
}

func TestMintToken(t *testing.T) {
	sess := models.Session{UserID: "u1", OrgID: "o1"}
	tok, err := mintToken("secret", sess, time.Hour)
	require.NoError(t, err)

	got, err := utils.NewJWTService("secret").ValidateAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	_, err = mintToken("secret", models.Session{}, time.Hour)
	assert.Error(t, err)
	_, err = mintToken("secret", sess, 0)
	assert.Error(t, err)
}

func TestMigrateSQLite(t *testing.T) {
	cfg := &config.Config{
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "dash.db"),
	}
	var out bytes.Buffer
	err := migrate(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "tasks: 0 rows")
	assert.Contains(t, out.String(), "board_columns: 0 rows")
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "dashboard version")
}
