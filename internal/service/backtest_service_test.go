package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

func backtestParams() domain.BacktestParams {
	return domain.BacktestParams{
		FastPeriod:     5,
		SlowPeriod:     20,
		InitialCapital: 10000,
		FeeBps:         10,
	}
}

func newTestBacktestService(provider *stubCandleProvider, runs domain.BacktestRunStore, archiver domain.Archiver) *BacktestService {
	market := newTestMarketService(provider, &stubQuoteProvider{})
	return NewBacktestService(market, runs, archiver, testLogger())
}

func TestRunPersistsAndArchives(t *testing.T) {
	provider := &stubCandleProvider{series: map[string][]domain.Candle{
		"AAPL": risingCandles(120, 100, 0.5),
	}}
	store := newMemRunStore()
	archiver := &captureArchiver{}
	svc := newTestBacktestService(provider, store, archiver)

	run, err := svc.Run(context.Background(), "AAPL", backtestParams())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "AAPL", run.Symbol)
	assert.False(t, run.CreatedAt.IsZero())

	stored, err := store.GetByID(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Result.Summary, stored.Result.Summary)

	require.Len(t, archiver.paths, 1)
	assert.Contains(t, archiver.paths[0], run.ID)
}

func TestRunArchiveFailureIsNonFatal(t *testing.T) {
	provider := &stubCandleProvider{series: map[string][]domain.Candle{
		"AAPL": risingCandles(120, 100, 0.5),
	}}
	archiver := &captureArchiver{err: errors.New("bucket offline")}
	svc := newTestBacktestService(provider, newMemRunStore(), archiver)

	_, err := svc.Run(context.Background(), "AAPL", backtestParams())
	assert.NoError(t, err)
}

func TestRunRejectsInvalidParams(t *testing.T) {
	provider := &stubCandleProvider{series: map[string][]domain.Candle{
		"AAPL": risingCandles(120, 100, 0.5),
	}}
	svc := newTestBacktestService(provider, newMemRunStore(), nil)

	params := backtestParams()
	params.FastPeriod = 50 // not below the slow period

	_, err := svc.Run(context.Background(), "AAPL", params)
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestRunInsufficientHistory(t *testing.T) {
	provider := &stubCandleProvider{series: map[string][]domain.Candle{
		"NEWIPO": risingCandles(15, 100, 0.5),
	}}
	svc := newTestBacktestService(provider, newMemRunStore(), nil)

	_, err := svc.Run(context.Background(), "NEWIPO", backtestParams())
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

func TestListRunsFiltersBySymbol(t *testing.T) {
	provider := &stubCandleProvider{series: map[string][]domain.Candle{
		"AAPL": risingCandles(120, 100, 0.5),
		"MSFT": risingCandles(120, 200, 0.5),
	}}
	svc := newTestBacktestService(provider, newMemRunStore(), nil)

	_, err := svc.Run(context.Background(), "AAPL", backtestParams())
	require.NoError(t, err)
	_, err = svc.Run(context.Background(), "MSFT", backtestParams())
	require.NoError(t, err)

	aapl, err := svc.ListRuns(context.Background(), "AAPL", domain.ListOpts{})
	require.NoError(t, err)
	require.Len(t, aapl, 1)
	assert.Equal(t, "AAPL", aapl[0].Symbol)

	all, err := svc.ListRuns(context.Background(), "", domain.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRunRejectsParamsOverLimits(t *testing.T) {
	provider := &stubCandleProvider{series: map[string][]domain.Candle{
		"AAPL": risingCandles(300, 100, 0.5),
	}}
	svc := newTestBacktestService(provider, newMemRunStore(), nil).
		WithLimits(BacktestLimits{MaxSlowPeriod: 100, MaxFeeBps: 50})

	params := backtestParams()
	params.SlowPeriod = 200
	_, err := svc.Run(context.Background(), "AAPL", params)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	params = backtestParams()
	params.FeeBps = 75
	_, err = svc.Run(context.Background(), "AAPL", params)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	// Within the caps the same service accepts the request.
	_, err = svc.Run(context.Background(), "AAPL", backtestParams())
	require.NoError(t, err)
}
