package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

const candleTTL = 10 * time.Minute

// CandleCache implements domain.CandleCache using JSON-serialized candle
// arrays keyed by symbol and range.
//
// Key schema:
//
//	candles:{symbol}:{range} - JSON array of candles
type CandleCache struct {
	rdb *redis.Client
}

// NewCandleCache creates a CandleCache backed by the given Client.
func NewCandleCache(c *Client) *CandleCache {
	return &CandleCache{rdb: c.rdb}
}

func candleKey(symbol, rng string) string {
	return "candles:" + symbol + ":" + rng
}

// Set stores a candle series with a 10-minute TTL. Daily candles only change
// once per session close, so a short TTL keeps charts fresh without hitting
// the upstream providers on every request.
func (cc *CandleCache) Set(ctx context.Context, symbol, rng string, candles []domain.Candle) error {
	data, err := json.Marshal(candles)
	if err != nil {
		return fmt.Errorf("redis: marshal candles %s: %w", symbol, err)
	}

	if err := cc.rdb.Set(ctx, candleKey(symbol, rng), data, candleTTL).Err(); err != nil {
		return fmt.Errorf("redis: set candles %s: %w", symbol, err)
	}
	return nil
}

// Get retrieves a cached candle series.
// It returns domain.ErrNotFound when the key does not exist.
func (cc *CandleCache) Get(ctx context.Context, symbol, rng string) ([]domain.Candle, error) {
	data, err := cc.rdb.Get(ctx, candleKey(symbol, rng)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get candles %s: %w", symbol, err)
	}

	var candles []domain.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, fmt.Errorf("redis: unmarshal candles %s: %w", symbol, err)
	}
	return candles, nil
}

// Compile-time interface check.
var _ domain.CandleCache = (*CandleCache)(nil)
