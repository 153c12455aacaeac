package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// BacktestService defines the methods the backtest handler requires.
type BacktestService interface {
	Run(ctx context.Context, symbol string, params domain.BacktestParams) (domain.BacktestRun, error)
	GetRun(ctx context.Context, id string) (domain.BacktestRun, error)
	ListRuns(ctx context.Context, symbol string, opts domain.ListOpts) ([]domain.BacktestRun, error)
}

// BacktestHandler serves the simulation endpoints.
type BacktestHandler struct {
	backtests BacktestService
	logger    *slog.Logger
}

// NewBacktestHandler creates a BacktestHandler.
func NewBacktestHandler(backtests BacktestService, logger *slog.Logger) *BacktestHandler {
	return &BacktestHandler{
		backtests: backtests,
		logger:    logger,
	}
}

// runBacktestRequest is the body for POST /api/backtest.
type runBacktestRequest struct {
	Symbol         string  `json:"symbol"`
	FastPeriod     int     `json:"fastPeriod"`
	SlowPeriod     int     `json:"slowPeriod"`
	InitialCapital float64 `json:"initialCapital"`
	FeeBps         float64 `json:"feeBps"`
}

// RunBacktest executes one simulation and returns the stored run.
// POST /api/backtest
func (h *BacktestHandler) RunBacktest(w http.ResponseWriter, r *http.Request) {
	var req runBacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	params := domain.BacktestParams{
		FastPeriod:     req.FastPeriod,
		SlowPeriod:     req.SlowPeriod,
		InitialCapital: req.InitialCapital,
		FeeBps:         req.FeeBps,
	}

	run, err := h.backtests.Run(r.Context(), symbol, params)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: backtest failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// ListRuns returns stored runs, optionally filtered by symbol.
// GET /api/backtest/runs?symbol=AAPL&limit=50&offset=0
func (h *BacktestHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	opts := parseListOpts(r)

	runs, err := h.backtests.ListRuns(r.Context(), symbol, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list backtest runs failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []domain.BacktestRun{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":   runs,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

// GetRun returns one stored run by ID.
// GET /api/backtest/runs/{id}
func (h *BacktestHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing run id")
		return
	}

	run, err := h.backtests.GetRun(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get backtest run failed",
			slog.String("run_id", id),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, run)
}
