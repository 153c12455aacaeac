package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

func newTestMarketService(candles *stubCandleProvider, quotes *stubQuoteProvider) *MarketService {
	return NewMarketService(candles, quotes, newMemCandleCache(), newMemQuoteCache(), testLogger())
}

func TestCandlesCachesAfterFirstFetch(t *testing.T) {
	provider := &stubCandleProvider{series: map[string][]domain.Candle{
		"AAPL": risingCandles(30, 100, 1),
	}}
	svc := newTestMarketService(provider, &stubQuoteProvider{})

	first, err := svc.Candles(context.Background(), "AAPL", domain.Range6M)
	require.NoError(t, err)
	require.Len(t, first, 30)

	second, err := svc.Candles(context.Background(), "AAPL", domain.Range6M)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls, "second read should come from cache")
}

func TestCandlesCleansProviderSeries(t *testing.T) {
	dirty := risingCandles(10, 100, 1)
	dirty[3].Close = 0
	dirty[7].Close = -5
	// Shuffle two entries out of order.
	dirty[0], dirty[5] = dirty[5], dirty[0]

	provider := &stubCandleProvider{series: map[string][]domain.Candle{"MSFT": dirty}}
	svc := newTestMarketService(provider, &stubQuoteProvider{})

	got, err := svc.Candles(context.Background(), "MSFT", domain.Range1Y)
	require.NoError(t, err)
	assert.Len(t, got, 8, "zero and negative closes are dropped")
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i].Date.After(got[i-1].Date), "series must be ascending")
	}
}

func TestCandlesEmptyAfterCleaningIsNotFound(t *testing.T) {
	bad := risingCandles(3, 100, 1)
	for i := range bad {
		bad[i].Close = 0
	}
	provider := &stubCandleProvider{series: map[string][]domain.Candle{"XXXX": bad}}
	svc := newTestMarketService(provider, &stubQuoteProvider{})

	_, err := svc.Candles(context.Background(), "XXXX", domain.Range1Y)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCandlesProviderErrorPropagates(t *testing.T) {
	provider := &stubCandleProvider{err: errors.New("upstream down")}
	svc := newTestMarketService(provider, &stubQuoteProvider{})

	_, err := svc.Candles(context.Background(), "AAPL", domain.Range1Y)
	require.Error(t, err)
}

func TestQuoteCacheFirst(t *testing.T) {
	provider := &stubQuoteProvider{quote: domain.Quote{Price: 187.5, ChangePct: 1.2, Timestamp: time.Now()}}
	svc := newTestMarketService(&stubCandleProvider{}, provider)

	q, err := svc.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 187.5, q.Price)

	// Break the provider; the cached quote should still be served.
	provider.err = errors.New("down")
	cached, err := svc.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, q.Price, cached.Price)
}

func TestMetricsFromHistory(t *testing.T) {
	provider := &stubCandleProvider{series: map[string][]domain.Candle{
		"NVDA": risingCandles(120, 100, 0.5),
	}}
	svc := newTestMarketService(provider, &stubQuoteProvider{})

	m, err := svc.Metrics(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, domain.TrendBullish, m.Trend)
	assert.Greater(t, m.SignalScore, 50)
}
