package engine

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

func defaultParams() domain.BacktestParams {
	return domain.BacktestParams{
		FastPeriod:     5,
		SlowPeriod:     20,
		InitialCapital: 10_000,
		FeeBps:         10,
	}
}

func TestRunBacktest_RejectsBadParams(t *testing.T) {
	candles := mkCandles(seq(100, 1, 100)...)

	_, err := RunBacktest(candles, domain.BacktestParams{
		FastPeriod: 1, SlowPeriod: 20, InitialCapital: 1000,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	_, err = RunBacktest(candles, domain.BacktestParams{
		FastPeriod: 20, SlowPeriod: 20, InitialCapital: 1000,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidParams, "fast must be strictly less than slow")

	_, err = RunBacktest(candles, domain.BacktestParams{
		FastPeriod: 5, SlowPeriod: 20, InitialCapital: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestRunBacktest_RejectsShortHistoryBeforeRunning(t *testing.T) {
	candles := mkCandles(seq(100, 1, 40)...)

	_, err := RunBacktest(candles, domain.BacktestParams{
		FastPeriod: 5, SlowPeriod: 50, InitialCapital: 1000,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

func TestRunBacktest_FlatSeriesNeverTrades(t *testing.T) {
	res, err := RunBacktest(mkCandles(seq(100, 0, 60)...), defaultParams())
	require.NoError(t, err)

	assert.Empty(t, res.Trades, "equal SMAs never cross")
	assert.Zero(t, res.Summary.Trades)
	assert.False(t, res.Summary.HoldingPosition)
	assert.Equal(t, 10_000.0, res.Summary.FinalCapital)
	assert.Zero(t, res.Summary.TotalReturnPct)
	assert.Zero(t, res.Summary.MaxDrawdownPct)
}

func TestRunBacktest_MonotoneRiseEntersOnceAndHolds(t *testing.T) {
	res, err := RunBacktest(mkCandles(seq(100, 1, 100)...), defaultParams())
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, domain.TradeBuy, res.Trades[0].Type)
	assert.Nil(t, res.Trades[0].PnL)
	assert.True(t, res.Summary.HoldingPosition, "exit never triggers on a rising series")
	assert.Zero(t, res.Summary.Trades, "no closed round trips")
	assert.Greater(t, res.Summary.TotalReturnPct, 0.0)
}

func TestRunBacktest_EquityCurveIsConsistent(t *testing.T) {
	// A rise into a fall forces a full round trip.
	closes := append(seq(100, 1, 60), seq(160, -1.5, 60)...)
	res, err := RunBacktest(mkCandles(closes...), defaultParams())
	require.NoError(t, err)

	require.NotEmpty(t, res.Trades)

	sells := 0
	for _, tr := range res.Trades {
		if tr.Type == domain.TradeSell {
			sells++
			require.NotNil(t, tr.PnL, "every SELL carries realized pnl")
		} else {
			require.Nil(t, tr.PnL)
		}
		assert.Greater(t, tr.Fee, 0.0)
	}
	assert.Equal(t, res.Summary.Trades, sells)
	assert.Equal(t, res.Summary.Trades, res.Summary.Wins+res.Summary.Losses)

	// Every equity point must equal cash + shares at that bar's close; the
	// last one must match the reported final capital.
	last := res.EquityCurve[len(res.EquityCurve)-1]
	assert.InDelta(t, res.Summary.FinalCapital, last.Value, 1e-9)
	for _, p := range res.EquityCurve {
		assert.False(t, math.IsNaN(p.Value))
		assert.Greater(t, p.Value, 0.0)
	}
}

func TestRunBacktest_FeesChargedOnBothLegs(t *testing.T) {
	closes := append(seq(100, 1, 60), seq(160, -1.5, 60)...)
	params := defaultParams()

	withFees, err := RunBacktest(mkCandles(closes...), params)
	require.NoError(t, err)

	params.FeeBps = 0
	noFees, err := RunBacktest(mkCandles(closes...), params)
	require.NoError(t, err)

	assert.Less(t, withFees.Summary.FinalCapital, noFees.Summary.FinalCapital)
	for _, tr := range noFees.Trades {
		assert.Zero(t, tr.Fee)
	}
}

func TestRunBacktest_Idempotent(t *testing.T) {
	closes := append(seq(100, 1, 80), seq(180, -2, 50)...)
	candles := mkCandles(closes...)
	params := defaultParams()

	a, err := RunBacktest(candles, params)
	require.NoError(t, err)
	b, err := RunBacktest(candles, params)
	require.NoError(t, err)
	require.True(t, reflect.DeepEqual(a.Summary, b.Summary))
	require.True(t, reflect.DeepEqual(a.Trades, b.Trades))
}

func TestRunBacktest_TruncatesTransportAfterStats(t *testing.T) {
	// Long zig-zag series: plenty of bars and crossings.
	closes := make([]float64, 0, 600)
	price := 100.0
	for i := 0; i < 600; i++ {
		if (i/30)%2 == 0 {
			price += 1.5
		} else {
			price -= 1.2
		}
		closes = append(closes, price)
	}
	res, err := RunBacktest(mkCandles(closes...), defaultParams())
	require.NoError(t, err)

	assert.LessOrEqual(t, len(res.EquityCurve), 260)
	assert.LessOrEqual(t, len(res.Trades), 100)

	// Stats reflect the full run: buy-and-hold over 600 bars, not the
	// truncated tail.
	first, last := closes[0], closes[len(closes)-1]
	assert.InDelta(t, (last/first-1)*100, res.Summary.BuyHoldReturnPct, 1e-9)
}

func TestRunBacktest_BuyHoldAndAlpha(t *testing.T) {
	closes := seq(100, 1, 100)
	res, err := RunBacktest(mkCandles(closes...), defaultParams())
	require.NoError(t, err)

	assert.InDelta(t, 99.0/100.0*100, res.Summary.BuyHoldReturnPct, 1e-9)
	assert.InDelta(t,
		res.Summary.TotalReturnPct-res.Summary.BuyHoldReturnPct,
		res.Summary.AlphaPct, 1e-9)
}
