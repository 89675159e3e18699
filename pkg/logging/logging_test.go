package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-dashboard-backend/pkg/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestProductionLogsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, &config.Config{Environment: "production", LogLevel: "info"})

	logger.Debug("hidden")
	logger.Info("request", "status", 200)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request", line["msg"])
	assert.Equal(t, "org-dashboard", line["service"])
	assert.EqualValues(t, 200, line["status"])
}

func TestDebugFlagLowersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, &config.Config{Environment: "development", LogLevel: "error", Debug: true})

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}
