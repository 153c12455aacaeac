// Package service contains the application services that sit between the HTTP
// layer and the providers, caches, and stores. Services own the cache-first
// read paths and feed cleaned candle history into the engine.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/stocklens/internal/domain"
	"github.com/alanyoungcy/stocklens/internal/engine"
)

// MarketService serves candle history, quotes, and per-symbol metric
// snapshots. Reads go to the cache first and fall back to the provider chain
// on a miss; provider responses are cleaned before they are cached so every
// downstream consumer sees a sorted, positive-close series.
type MarketService struct {
	candles domain.CandleProvider
	quotes  domain.QuoteProvider
	cCache  domain.CandleCache
	qCache  domain.QuoteCache
	logger  *slog.Logger
}

// NewMarketService creates a MarketService with all required dependencies.
func NewMarketService(
	candles domain.CandleProvider,
	quotes domain.QuoteProvider,
	cCache domain.CandleCache,
	qCache domain.QuoteCache,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		candles: candles,
		quotes:  quotes,
		cCache:  cCache,
		qCache:  qCache,
		logger:  logger,
	}
}

// Candles returns cleaned daily candles for a symbol, checking the cache
// first and falling back to the provider chain on a miss.
func (s *MarketService) Candles(ctx context.Context, symbol string, rng domain.CandleRange) ([]domain.Candle, error) {
	if cached, err := s.cCache.Get(ctx, symbol, string(rng)); err == nil {
		return cached, nil
	}

	raw, err := s.candles.Candles(ctx, symbol, rng)
	if err != nil {
		return nil, fmt.Errorf("market_service: candles %s: %w", symbol, err)
	}

	cleaned := domain.CleanCandles(raw)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("market_service: candles %s: %w", symbol, domain.ErrNotFound)
	}

	// Back-fill cache; log but do not fail on cache write errors.
	if cacheErr := s.cCache.Set(ctx, symbol, string(rng), cleaned); cacheErr != nil {
		s.logger.WarnContext(ctx, "market_service: cache set failed",
			slog.String("symbol", symbol),
			slog.String("error", cacheErr.Error()),
		)
	}

	return cleaned, nil
}

// Quote returns the latest quote for a symbol, cache-first.
func (s *MarketService) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	if cached, err := s.qCache.GetQuote(ctx, symbol); err == nil {
		return cached, nil
	}

	quote, err := s.quotes.Quote(ctx, symbol)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("market_service: quote %s: %w", symbol, err)
	}

	if cacheErr := s.qCache.SetQuote(ctx, quote); cacheErr != nil {
		s.logger.WarnContext(ctx, "market_service: quote cache set failed",
			slog.String("symbol", symbol),
			slog.String("error", cacheErr.Error()),
		)
	}

	return quote, nil
}

// Metrics computes the full metric snapshot for a symbol from one year of
// daily history.
func (s *MarketService) Metrics(ctx context.Context, symbol string) (domain.MetricsSnapshot, error) {
	candles, err := s.Candles(ctx, symbol, domain.Range1Y)
	if err != nil {
		return domain.MetricsSnapshot{}, err
	}
	return engine.DeriveMetrics(candles), nil
}
