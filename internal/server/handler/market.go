package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/stocklens/internal/domain"
	"github.com/alanyoungcy/stocklens/internal/service"
)

// MarketService defines the methods the market handler requires from the
// service layer.
type MarketService interface {
	Candles(ctx context.Context, symbol string, rng domain.CandleRange) ([]domain.Candle, error)
	Quote(ctx context.Context, symbol string) (domain.Quote, error)
	Metrics(ctx context.Context, symbol string) (domain.MetricsSnapshot, error)
}

// NewsService defines the headline lookup the market handler needs.
type NewsService interface {
	News(ctx context.Context, symbol string, limit int) ([]domain.NewsItem, error)
}

// AdvisorService builds the written brief for one symbol.
type AdvisorService interface {
	Brief(ctx context.Context, symbol string) (service.Brief, error)
}

// MarketHandler serves candle, quote, metrics, news, and brief endpoints.
type MarketHandler struct {
	market  MarketService
	news    NewsService
	advisor AdvisorService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given services and logger.
func NewMarketHandler(market MarketService, news NewsService, advisor AdvisorService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		market:  market,
		news:    news,
		advisor: advisor,
		logger:  logger,
	}
}

// candlesResponse wraps the candle endpoint output.
type candlesResponse struct {
	Symbol  string          `json:"symbol"`
	Range   string          `json:"range"`
	Candles []domain.Candle `json:"candles"`
}

// GetCandles returns cleaned daily candles for a symbol.
// GET /api/candles/{symbol}?range=6m
func (h *MarketHandler) GetCandles(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}
	rng := parseRange(r)

	candles, err := h.market.Candles(r.Context(), symbol, rng)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get candles failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, candlesResponse{
		Symbol:  symbol,
		Range:   string(rng),
		Candles: candles,
	})
}

// GetQuote returns the latest quote for a symbol.
// GET /api/quote/{symbol}
func (h *MarketHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	quote, err := h.market.Quote(r.Context(), symbol)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get quote failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// GetMetrics returns the full metric snapshot for a symbol.
// GET /api/metrics/{symbol}
func (h *MarketHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	snapshot, err := h.market.Metrics(r.Context(), symbol)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get metrics failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// GetNews returns recent company headlines for a symbol.
// GET /api/news/{symbol}?limit=10
func (h *MarketHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}
	opts := parseListOpts(r)

	items, err := h.news.News(r.Context(), symbol, opts.Limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get news failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"items":  items,
	})
}

// GetBrief returns a plain-language brief for a symbol.
// GET /api/brief/{symbol}
func (h *MarketHandler) GetBrief(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	brief, err := h.advisor.Brief(r.Context(), symbol)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get brief failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, brief)
}
