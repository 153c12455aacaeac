// Package app provides the top-level application lifecycle management for
// stocklens. It wires together all dependencies (providers, stores, caches,
// blob storage, services, and notifications) and starts the appropriate
// goroutines based on the configured operating mode.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alanyoungcy/stocklens/internal/config"
)

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// modeFunc is one operating mode's entry point.
type modeFunc func(ctx context.Context, deps *Dependencies) error

// Run wires all dependencies, dispatches to the configured operating mode,
// and blocks until the mode returns or the context is cancelled. Cleanup
// functions registered during wiring run when Close is called.
func (a *App) Run(ctx context.Context) error {
	started := time.Now()
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", a.cfg.Mode),
		slog.String("log_level", a.cfg.LogLevel),
	)

	modes := map[string]modeFunc{
		"server": a.ServerMode,
		"scan":   a.ScanMode,
		"full":   a.FullMode,
	}
	run, ok := modes[strings.ToLower(a.cfg.Mode)]
	if !ok {
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}

	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	err = run(ctx, deps)
	a.logger.Info("application stopping",
		slog.Duration("uptime", time.Since(started)),
	)
	return err
}

// Close tears down all resources in reverse registration order. Safe to call
// more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
