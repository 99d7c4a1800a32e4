package app

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the logger the app and engine share, driven by the
// Config's log settings. It never touches the global default logger, so
// concurrent App instances stay isolated.
func newLogger(config *Config, logW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(config.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(config.LogFormat) == "json" {
		return slog.New(slog.NewJSONHandler(logW, opts))
	}
	return slog.New(slog.NewTextHandler(logW, opts))
}
