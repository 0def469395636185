// Package app wires the compiler pipeline together and drives one
// generation run: load fragments, expand variables, assemble contexts, emit
// the output document, write it atomically. Each run is fresh state; there
// is no caching across invocations.
package app

import (
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/grammarkit/grammarc/internal/config"
)

// App encapsulates one compiler instance: its logger, filesystem, and
// fragment loader.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	fs     afero.Fs
	loader config.Loader
	config *Config
}

// NewApp constructs the application with its own isolated logger, so tests
// can run several instances side by side.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, fsys afero.Fs) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		fs:     fsys,
		loader: loader,
		config: cfg,
	}
}
