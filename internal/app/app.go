package app

import (
	"io"
	"log/slog"

	"github.com/gabeda-io/gabeda/internal/feature"
	"github.com/gabeda-io/gabeda/internal/gabeda"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	store   *feature.Store
	session *gabeda.Context
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, feature store, and
// session.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		store:   feature.NewStore(),
		session: gabeda.New(),
	}
}

// Session returns the application's session context. This is primarily for
// testing.
func (a *App) Session() *gabeda.Context {
	return a.session
}

// Store returns the application's feature store. This is primarily for
// testing.
func (a *App) Store() *feature.Store {
	return a.store
}
