// Package marketdata implements provider selection for candle fetching: an
// ordered fallback chain over the configured upstream clients. The engine
// only ever sees "a candle array"; which provider produced it is decided
// here, outside the numeric core.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// Chain tries each provider in order and returns the first usable candle
// series. Provider errors are logged and skipped; only when every provider
// fails does the chain report an upstream error.
type Chain struct {
	providers []domain.CandleProvider
	logger    *slog.Logger
}

// NewChain creates a fallback chain over the given providers, tried in the
// order supplied.
func NewChain(logger *slog.Logger, providers ...domain.CandleProvider) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger.With(slog.String("component", "marketdata")),
	}
}

// Name identifies the chain itself when it is used as a provider.
func (c *Chain) Name() string { return "chain" }

// Candles fetches daily candles for a symbol from the first provider that
// succeeds with a non-empty series.
func (c *Chain) Candles(ctx context.Context, symbol string, rng domain.CandleRange) ([]domain.Candle, error) {
	if len(c.providers) == 0 {
		return nil, fmt.Errorf("marketdata: %w: no providers configured", domain.ErrUpstream)
	}

	var errs []error
	for _, p := range c.providers {
		candles, err := p.Candles(ctx, symbol, rng)
		if err == nil && len(candles) > 0 {
			return candles, nil
		}
		if err == nil {
			err = domain.ErrNotFound
		}
		// Context cancellation is the caller's signal, not a provider
		// failure; stop immediately instead of burning the fallbacks.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("marketdata: %w", ctx.Err())
		}
		c.logger.WarnContext(ctx, "provider failed, trying next",
			slog.String("provider", p.Name()),
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}

	return nil, fmt.Errorf("marketdata: %w: all providers failed for %s: %w",
		domain.ErrUpstream, symbol, errors.Join(errs...))
}

// Compile-time interface check.
var _ domain.CandleProvider = (*Chain)(nil)
