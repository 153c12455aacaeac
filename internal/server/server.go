// Package server wires the HTTP routes, middleware chain, and WebSocket hub.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/stocklens/internal/domain"
	"github.com/alanyoungcy/stocklens/internal/server/handler"
	"github.com/alanyoungcy/stocklens/internal/server/middleware"
	"github.com/alanyoungcy/stocklens/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// RateLimit caps requests per client IP per RateWindow; zero disables
	// the middleware.
	RateLimit  int
	RateWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health   *handler.HealthHandler
	Market   *handler.MarketHandler
	Scan     *handler.ScanHandler
	Backtest *handler.BacktestHandler
}

// Server is the headless HTTP + WebSocket API server for the dashboard.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (CORS, logging, auth, rate limiting) and attaches
// the WebSocket hub. The limiter may be nil to disable rate limiting.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Per-symbol market data.
	mux.HandleFunc("GET /api/candles/{symbol}", handlers.Market.GetCandles)
	mux.HandleFunc("GET /api/quote/{symbol}", handlers.Market.GetQuote)
	mux.HandleFunc("GET /api/metrics/{symbol}", handlers.Market.GetMetrics)
	mux.HandleFunc("GET /api/news/{symbol}", handlers.Market.GetNews)
	mux.HandleFunc("GET /api/brief/{symbol}", handlers.Market.GetBrief)

	// Scan board and watchlists.
	mux.HandleFunc("GET /api/scan", handlers.Scan.Scan)
	mux.HandleFunc("GET /api/watchlists", handlers.Scan.ListWatchlists)
	mux.HandleFunc("GET /api/watchlists/{name}", handlers.Scan.GetWatchlist)
	mux.HandleFunc("PUT /api/watchlists/{name}", handlers.Scan.PutWatchlist)
	mux.HandleFunc("DELETE /api/watchlists/{name}", handlers.Scan.DeleteWatchlist)

	// Backtests.
	mux.HandleFunc("POST /api/backtest", handlers.Backtest.RunBacktest)
	mux.HandleFunc("GET /api/backtest/runs", handlers.Backtest.ListRuns)
	mux.HandleFunc("GET /api/backtest/runs/{id}", handlers.Backtest.GetRun)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first.
	var h http.Handler = mux

	if limiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		h = middleware.RateLimit(limiter, cfg.RateLimit, window)(h)
	}

	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
