package app

import (
	"io"
	"log/slog"
)

// Version is the engine version checked against runtime.required_version.
const Version = "0.1.0"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. Resolved output goes to
// outW; logs go to logW so JSON output stays machine-readable.
func NewApp(outW, logW io.Writer, config *Config) *App {
	logger := newLogger(config, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: config,
	}
}
