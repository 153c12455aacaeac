package domain

import (
	"context"
	"time"
)

// CandleCache stores fetched candle series keyed by symbol and range so
// repeated chart/scan requests do not hammer the upstream providers. Entries
// expire on their own; the engine itself is cache-free and stateless.
type CandleCache interface {
	Set(ctx context.Context, symbol, rng string, candles []Candle) error
	Get(ctx context.Context, symbol, rng string) ([]Candle, error)
}

// QuoteCache stores the latest quote per symbol.
type QuoteCache interface {
	SetQuote(ctx context.Context, quote Quote) error
	GetQuote(ctx context.Context, symbol string) (Quote, error)
}

// RateLimiter provides distributed rate limiting for the HTTP layer.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus provides pub/sub fan-out of quote and scan updates to the
// WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channels ...string) (<-chan BusMessage, error)
}

// BusMessage is one published message together with its source channel.
type BusMessage struct {
	Channel string
	Payload []byte
}

// LockManager provides distributed locks so background workers such as the
// quote poller run on a single instance at a time.
type LockManager interface {
	// Acquire obtains the lock and returns an unlock function, or
	// ErrLockHeld when another holder owns it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}
