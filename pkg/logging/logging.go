// Package logging configures the process-wide slog logger
package logging

import (
	"io"
	"log"
	"log/slog"
	"strings"

	"org-dashboard-backend/pkg/config"
)

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w. Production gets JSON, everything else
// human-readable text.
func New(w io.Writer, cfg *config.Config) *slog.Logger {
	level := ParseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", "org-dashboard")
}

// Init installs the logger as the slog default and routes the standard log
// package through it.
func Init(w io.Writer, cfg *config.Config) *slog.Logger {
	logger := New(w, cfg)
	slog.SetDefault(logger)
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags)
	return logger
}
