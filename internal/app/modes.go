package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/stocklens/internal/feed"
	"github.com/alanyoungcy/stocklens/internal/server"
	"github.com/alanyoungcy/stocklens/internal/server/handler"
	"github.com/alanyoungcy/stocklens/internal/server/ws"
	"github.com/alanyoungcy/stocklens/internal/service"
)

// services bundles the domain services shared across modes.
type services struct {
	market   *service.MarketService
	scan     *service.ScanService
	backtest *service.BacktestService
	news     *service.NewsService
	advisor  *service.Advisor
}

func (a *App) buildServices(deps *Dependencies) *services {
	market := service.NewMarketService(
		deps.Candles, deps.Quotes, deps.CandleCache, deps.QuoteCache, a.logger,
	)
	news := service.NewNewsService(deps.News)
	return &services{
		market: market,
		scan: service.NewScanService(
			market, deps.SignalBus, deps.Notifier,
			a.cfg.Scan.AlertThreshold, a.cfg.Scan.Concurrency, a.logger,
		),
		backtest: service.NewBacktestService(market, deps.RunStore, deps.Archiver, a.logger).
			WithLimits(service.BacktestLimits{
				MaxSlowPeriod: a.cfg.Backtest.MaxSlowPeriod,
				MaxFeeBps:     a.cfg.Backtest.MaxFeeBps,
			}),
		news:     news,
		advisor:  service.NewAdvisor(market, news),
	}
}

// ServerMode runs the HTTP API and WebSocket hub without any background
// scanning or polling. Scans still run on demand via GET /api/scan.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)

	svcs := a.buildServices(deps)
	a.startHTTPServer(ctx, g, deps, svcs)

	return g.Wait()
}

// ScanMode runs the scan board over the configured watchlist on a fixed
// interval, publishing results to the signal bus and raising alerts. With a
// zero interval a single scan runs and the process exits.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	svcs := a.buildServices(deps)
	return a.runScanLoop(ctx, svcs, a.cfg.Scan.Interval.Duration)
}

// FullMode runs every subsystem: the HTTP server, the WebSocket hub, the
// background quote poller, and the periodic scan loop.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	svcs := a.buildServices(deps)

	if a.cfg.Feed.Enabled {
		poller := feed.NewQuotePoller(
			a.cfg.Scan.Symbols,
			a.cfg.Feed.Interval.Duration,
			deps.Quotes,
			deps.QuoteCache,
			deps.SignalBus,
			deps.LockManager,
			a.logger,
		)
		g.Go(func() error {
			return poller.Run(ctx)
		})
	}

	if a.cfg.Scan.Interval.Duration > 0 {
		g.Go(func() error {
			return a.runScanLoop(ctx, svcs, a.cfg.Scan.Interval.Duration)
		})
	}

	a.startHTTPServer(ctx, g, deps, svcs)

	return g.Wait()
}

// runScanLoop runs one scan immediately and then on every interval tick until
// the context is cancelled. A zero interval means scan once and return.
func (a *App) runScanLoop(ctx context.Context, svcs *services, interval time.Duration) error {
	scanOnce := func() {
		start := time.Now()
		result, err := svcs.scan.Scan(ctx, a.cfg.Scan.Symbols)
		if err != nil {
			a.logger.ErrorContext(ctx, "scan failed",
				slog.String("error", err.Error()),
			)
			return
		}
		a.logger.InfoContext(ctx, "scan complete",
			slog.Int("symbols", len(a.cfg.Scan.Symbols)),
			slog.Int("rows", len(result.Rows)),
			slog.Duration("elapsed", time.Since(start)),
		)
	}

	scanOnce()
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			scanOnce()
		}
	}
}

// startHTTPServer adds the HTTP server and WebSocket hub goroutines to the
// given errgroup. The server is shut down gracefully when the context is
// cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services) {
	if !a.cfg.Server.Enabled {
		a.logger.InfoContext(ctx, "HTTP server disabled")
		return
	}

	hub := ws.NewHub(deps.SignalBus, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(a.logger),
		Market: handler.NewMarketHandler(svcs.market, svcs.news, svcs.advisor, a.logger),
		Scan: handler.NewScanHandler(
			svcs.scan, deps.WatchlistStore, a.cfg.Scan.Symbols, a.logger,
		),
		Backtest: handler.NewBacktestHandler(svcs.backtest, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		a.logger.InfoContext(ctx, "HTTP server listening",
			slog.Int("port", a.cfg.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)),
		)
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
