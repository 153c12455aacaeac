package marketdata

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

type stubProvider struct {
	name    string
	candles []domain.Candle
	err     error
	calls   int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Candles(_ context.Context, _ string, _ domain.CandleRange) ([]domain.Candle, error) {
	s.calls++
	return s.candles, s.err
}

func testCandles(n int) []domain.Candle {
	out := make([]domain.Candle, n)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = domain.Candle{Date: day.AddDate(0, 0, i), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1e6}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChainFirstProviderWins(t *testing.T) {
	first := &stubProvider{name: "a", candles: testCandles(5)}
	second := &stubProvider{name: "b", candles: testCandles(5)}
	chain := NewChain(discardLogger(), first, second)

	got, err := chain.Candles(context.Background(), "AAPL", domain.Range6M)
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "second provider should not be consulted")
}

func TestChainFallsBackOnError(t *testing.T) {
	first := &stubProvider{name: "a", err: domain.ErrRateLimited}
	second := &stubProvider{name: "b", candles: testCandles(3)}
	chain := NewChain(discardLogger(), first, second)

	got, err := chain.Candles(context.Background(), "MSFT", domain.Range1Y)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestChainFallsBackOnEmptySeries(t *testing.T) {
	first := &stubProvider{name: "a", candles: nil}
	second := &stubProvider{name: "b", candles: testCandles(2)}
	chain := NewChain(discardLogger(), first, second)

	got, err := chain.Candles(context.Background(), "TSLA", domain.Range3M)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestChainAllFail(t *testing.T) {
	first := &stubProvider{name: "a", err: errors.New("boom")}
	second := &stubProvider{name: "b", err: domain.ErrUpstream}
	chain := NewChain(discardLogger(), first, second)

	_, err := chain.Candles(context.Background(), "NVDA", domain.Range1Y)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestChainNoProviders(t *testing.T) {
	chain := NewChain(discardLogger())
	_, err := chain.Candles(context.Background(), "AAPL", domain.Range1Y)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	first := &stubProvider{name: "a", err: context.Canceled}
	second := &stubProvider{name: "b", candles: testCandles(2)}
	chain := NewChain(discardLogger(), first, second)

	_, err := chain.Candles(ctx, "AAPL", domain.Range1Y)
	require.Error(t, err)
	assert.Equal(t, 0, second.calls)
}
