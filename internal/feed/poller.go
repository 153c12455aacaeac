// Package feed runs the background quote poller. It refreshes quotes for the
// configured symbols on a fixed interval, writes them through the quote
// cache, and fans them out on the signal bus for WebSocket subscribers.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// QuoteBusChannel is the Pub/Sub channel quote updates are published on.
const QuoteBusChannel = "quotes"

// leaderLockKey guards the poller so a single instance polls the upstream
// providers when multiple replicas share one Redis.
const leaderLockKey = "feed.quote_poller"

// QuotePoller periodically fetches quotes for a fixed symbol list.
type QuotePoller struct {
	symbols  []string
	interval time.Duration
	quotes   domain.QuoteProvider
	cache    domain.QuoteCache
	bus      domain.SignalBus
	locks    domain.LockManager
	logger   *slog.Logger
}

// NewQuotePoller creates a poller. An interval of zero or less defaults to
// 15 seconds. The lock manager may be nil, in which case leader election is
// skipped and every instance polls.
func NewQuotePoller(
	symbols []string,
	interval time.Duration,
	quotes domain.QuoteProvider,
	cache domain.QuoteCache,
	bus domain.SignalBus,
	locks domain.LockManager,
	logger *slog.Logger,
) *QuotePoller {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &QuotePoller{
		symbols:  symbols,
		interval: interval,
		quotes:   quotes,
		cache:    cache,
		bus:      bus,
		locks:    locks,
		logger:   logger.With(slog.String("component", "quote_poller")),
	}
}

// Run polls until the context is cancelled. Each tick tries to take the
// leader lock; when another instance holds it the tick is skipped quietly.
func (p *QuotePoller) Run(ctx context.Context) error {
	if len(p.symbols) == 0 {
		p.logger.Info("no symbols configured, poller exiting")
		return nil
	}

	p.logger.Info("quote poller started",
		slog.Int("symbols", len(p.symbols)),
		slog.Duration("interval", p.interval),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First poll immediately rather than waiting a full interval.
	p.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *QuotePoller) tick(ctx context.Context) {
	if p.locks != nil {
		unlock, err := p.locks.Acquire(ctx, leaderLockKey, p.interval)
		if err != nil {
			if !errors.Is(err, domain.ErrLockHeld) {
				p.logger.WarnContext(ctx, "leader lock", slog.String("error", err.Error()))
			}
			return
		}
		defer unlock()
	}

	for _, symbol := range p.symbols {
		if ctx.Err() != nil {
			return
		}
		p.poll(ctx, symbol)
	}
}

// poll fetches one quote, caches it, and publishes it. Failures affect only
// the one symbol.
func (p *QuotePoller) poll(ctx context.Context, symbol string) {
	quote, err := p.quotes.Quote(ctx, symbol)
	if err != nil {
		p.logger.WarnContext(ctx, "quote fetch failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		return
	}

	if p.cache != nil {
		if err := p.cache.SetQuote(ctx, quote); err != nil {
			p.logger.WarnContext(ctx, "quote cache write failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		}
	}

	if p.bus != nil {
		payload, err := json.Marshal(quote)
		if err != nil {
			p.logger.ErrorContext(ctx, "quote marshal failed", slog.String("symbol", symbol))
			return
		}
		if err := p.bus.Publish(ctx, QuoteBusChannel, payload); err != nil {
			p.logger.WarnContext(ctx, "quote publish failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		}
	}
}
