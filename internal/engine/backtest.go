package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

const (
	// minHistoryPad is the slack required on top of the slow period before a
	// simulation is allowed to run.
	minHistoryPad = 10

	// Transport truncation limits; applied only after the statistics have
	// been computed from the full run.
	maxCurvePoints = 260
	maxTradeLog    = 100
)

// ValidateBacktest rejects parameter and history precondition violations
// before any simulation work begins.
func ValidateBacktest(candles []domain.Candle, params domain.BacktestParams) error {
	if params.FastPeriod < 2 {
		return fmt.Errorf("%w: fast period must be at least 2, got %d",
			domain.ErrInvalidParams, params.FastPeriod)
	}
	if params.FastPeriod >= params.SlowPeriod {
		return fmt.Errorf("%w: fast period %d must be less than slow period %d",
			domain.ErrInvalidParams, params.FastPeriod, params.SlowPeriod)
	}
	if params.InitialCapital <= 0 {
		return fmt.Errorf("%w: initial capital must be positive, got %g",
			domain.ErrInvalidParams, params.InitialCapital)
	}
	if params.FeeBps < 0 {
		return fmt.Errorf("%w: fee bps must not be negative, got %g",
			domain.ErrInvalidParams, params.FeeBps)
	}
	if len(candles) < params.SlowPeriod+minHistoryPad {
		return fmt.Errorf("%w: need at least %d candles for slow period %d, have %d",
			domain.ErrInsufficientHistory,
			params.SlowPeriod+minHistoryPad, params.SlowPeriod, len(candles))
	}
	return nil
}

// RunBacktest runs a deterministic long-only SMA-crossover simulation over a
// single candle series. The strategy is full-allocation with no leverage and
// no shorting: a golden cross converts all cash into shares, a death cross
// converts all shares back into cash, and fees are charged on both legs.
// There is no forced liquidation at the end; the run finishes in whatever
// state the last bar leaves it.
//
// Once validation passes the simulator never errors: a series with no
// crossover simply produces zero trades.
func RunBacktest(candles []domain.Candle, params domain.BacktestParams) (domain.BacktestResult, error) {
	if err := ValidateBacktest(candles, params); err != nil {
		return domain.BacktestResult{}, err
	}

	closes := domain.Closes(candles)
	fast := SMASeries(closes, params.FastPeriod)
	slow := SMASeries(closes, params.SlowPeriod)
	feeRate := params.FeeBps / 10000

	cash := params.InitialCapital
	shares := 0.0
	entryValue := 0.0

	curve := make([]domain.EquityPoint, 0, len(candles))
	trades := make([]domain.TradeRecord, 0, 16)
	wins, losses := 0, 0

	for i, c := range candles {
		// Signals need valid fast and slow SMAs on the current bar; earlier
		// bars only feed the rolling windows. On the first bar where both
		// SMAs exist there is no prior reading to cross from, so the prior
		// state is treated as satisfying the cross precondition, so a series
		// that is already trending when the slow SMA stabilizes enters
		// immediately rather than never.
		signalReady := i > 0 && !math.IsNaN(fast[i]) && !math.IsNaN(slow[i])

		if signalReady {
			entryPre, exitPre := true, true
			if !math.IsNaN(fast[i-1]) && !math.IsNaN(slow[i-1]) {
				entryPre = fast[i-1] <= slow[i-1]
				exitPre = fast[i-1] >= slow[i-1]
			}
			goldenCross := entryPre && fast[i] > slow[i]
			deathCross := exitPre && fast[i] < slow[i]

			if shares == 0 && goldenCross {
				fee := cash * feeRate
				spendable := cash - fee
				shares = spendable / c.Close
				entryValue = spendable + fee
				cash = 0
				trades = append(trades, domain.TradeRecord{
					Type:   domain.TradeBuy,
					Date:   c.Date,
					Price:  c.Close,
					Shares: shares,
					Fee:    fee,
				})
			} else if shares > 0 && deathCross {
				gross := shares * c.Close
				fee := gross * feeRate
				net := gross - fee
				pnl := net - entryValue
				if pnl > 0 {
					wins++
				} else {
					losses++
				}
				trades = append(trades, domain.TradeRecord{
					Type:   domain.TradeSell,
					Date:   c.Date,
					Price:  c.Close,
					Shares: shares,
					Fee:    fee,
					PnL:    &pnl,
				})
				cash = net
				shares = 0
			}
		}

		curve = append(curve, domain.EquityPoint{
			Date:  c.Date,
			Value: cash + shares*c.Close,
			Close: c.Close,
		})
	}

	lastClose := closes[len(closes)-1]
	finalEquity := cash + shares*lastClose
	totalReturn := (finalEquity/params.InitialCapital - 1) * 100

	firstClose := closes[0]
	buyHold := 0.0
	if firstClose != 0 {
		buyHold = (lastClose/firstClose - 1) * 100
	}

	closed := wins + losses
	winRate := 0.0
	if closed > 0 {
		winRate = float64(wins) / float64(closed) * 100
	}

	summary := domain.BacktestSummary{
		InitialCapital:   params.InitialCapital,
		FinalCapital:     finalEquity,
		TotalReturnPct:   totalReturn,
		BuyHoldReturnPct: buyHold,
		AlphaPct:         totalReturn - buyHold,
		MaxDrawdownPct:   equityDrawdown(curve),
		Trades:           closed,
		Wins:             wins,
		Losses:           losses,
		WinRatePct:       winRate,
		CAGRPct: cagr(totalReturn, finalEquity, params.InitialCapital,
			candles[0].Date, candles[len(candles)-1].Date),
		HoldingPosition: shares > 0,
	}

	if len(curve) > maxCurvePoints {
		curve = curve[len(curve)-maxCurvePoints:]
	}
	if len(trades) > maxTradeLog {
		trades = trades[len(trades)-maxTradeLog:]
	}

	return domain.BacktestResult{
		Summary:     summary,
		EquityCurve: curve,
		Trades:      trades,
	}, nil
}

// equityDrawdown applies the running-peak drawdown method to the full equity
// curve and returns the worst decline as a non-negative percentage.
func equityDrawdown(curve []domain.EquityPoint) float64 {
	values := make([]float64, len(curve))
	for i, p := range curve {
		values[i] = p.Value
	}
	return MaxDrawdown(values)
}

// cagr annualizes the total return over the elapsed calendar days between the
// first and last candle. Non-positive elapsed time falls back to the plain
// total return (e.g. single-bar input).
func cagr(totalReturnPct, finalEquity, initialCapital float64, first, last time.Time) float64 {
	days := last.Sub(first).Hours() / 24
	if days <= 0 {
		return totalReturnPct
	}
	years := days / 365.25
	growth := finalEquity / initialCapital
	if growth <= 0 {
		return totalReturnPct
	}
	return (math.Pow(growth, 1/years) - 1) * 100
}
