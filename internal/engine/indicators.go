// Package engine is the deterministic numerical core of stocklens: indicator
// math, signal classification, the metrics facade, the correlation matrix
// builder, and the crossover backtest simulator. Every function in this
// package is a pure, synchronous function of its inputs with no I/O and no
// shared state, so callers may fan out across tickers freely.
package engine

import (
	"math"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// tradingDaysPerYear is the annualization base for daily-return volatility.
const tradingDaysPerYear = 252

// SMA returns the simple moving average of the trailing period values, or 0
// when the series is shorter than the period. The zero return doubles as the
// "not yet available" sentinel that the trend classifier checks for.
func SMA(series []float64, period int) float64 {
	if period <= 0 || len(series) < period {
		return 0
	}
	var sum float64
	for _, v := range series[len(series)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// SMASeries returns the period-SMA aligned to the input; indices before the
// first full window are NaN. The backtest simulator walks this to detect
// crossovers bar by bar.
func SMASeries(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	if period <= 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	var sum float64
	for i, v := range series {
		sum += v
		if i >= period {
			sum -= series[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// RSI computes Wilder's Relative Strength Index over the close series.
// Too-short input returns the neutral prior 50; a smoothed average loss of
// exactly zero returns 100 instead of dividing by zero.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) <= period {
		return 50
	}

	// Seed the averages over the first period deltas.
	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	// Wilder smoothing for the remaining deltas.
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		var g, l float64
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// AnnualizedVolatility converts a daily-return series into an annualized
// percentage using the population standard deviation and a 252-day year.
func AnnualizedVolatility(dailyReturns []float64) float64 {
	n := len(dailyReturns)
	if n == 0 {
		return 0
	}
	var mean float64
	for _, r := range dailyReturns {
		mean += r
	}
	mean /= float64(n)

	var sumSq float64
	for _, r := range dailyReturns {
		d := r - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq/float64(n)) * math.Sqrt(tradingDaysPerYear) * 100
}

// ATR returns the mean of the trailing period true-range values. The first
// bar's true range is high-low; later bars use the usual max of range and
// gap against the prior close. Fewer bars than the period fall back to the
// mean of whatever is available.
func ATR(candles []domain.Candle, period int) float64 {
	if len(candles) == 0 || period <= 0 {
		return 0
	}

	trs := make([]float64, 0, len(candles))
	for i, c := range candles {
		tr := c.High - c.Low
		if i > 0 {
			prevClose := candles[i-1].Close
			tr = math.Max(tr, math.Max(
				math.Abs(c.High-prevClose),
				math.Abs(c.Low-prevClose),
			))
		}
		trs = append(trs, tr)
	}

	if len(trs) > period {
		trs = trs[len(trs)-period:]
	}
	var sum float64
	for _, tr := range trs {
		sum += tr
	}
	return sum / float64(len(trs))
}

// Performance returns the % change from the close lookback bars ago to the
// latest close, or 0 when the series is too short or the reference is 0.
func Performance(closes []float64, lookback int) float64 {
	if lookback <= 0 || len(closes) < lookback+1 {
		return 0
	}
	ref := closes[len(closes)-1-lookback]
	if ref == 0 {
		return 0
	}
	return (closes[len(closes)-1] - ref) / ref * 100
}

// MaxDrawdown reports the largest peak-to-trough decline in the close series
// as a non-negative percentage of the peak. A monotonically non-decreasing
// series yields 0.
func MaxDrawdown(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}
	peak := closes[0]
	worst := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			dd := (c - peak) / peak
			if dd < worst {
				worst = dd
			}
		}
	}
	return math.Abs(worst) * 100
}

// volumeWindow is the per-side window for the volume-trend comparison.
const volumeWindow = 10

// VolumeTrendClass compares the mean of the latest 10 volumes against the
// mean of the 10 before them. A >15% difference in either direction tips the
// classification; fewer than 20 points is always Stable.
func VolumeTrendClass(volumes []float64) domain.VolumeTrend {
	if len(volumes) < 2*volumeWindow {
		return domain.VolumeStable
	}

	recent := volumes[len(volumes)-volumeWindow:]
	prior := volumes[len(volumes)-2*volumeWindow : len(volumes)-volumeWindow]

	var recentMean, priorMean float64
	for i := 0; i < volumeWindow; i++ {
		recentMean += recent[i]
		priorMean += prior[i]
	}
	recentMean /= volumeWindow
	priorMean /= volumeWindow

	switch {
	case recentMean > priorMean*1.15:
		return domain.VolumeIncreasing
	case recentMean < priorMean*0.85:
		return domain.VolumeDeclining
	default:
		return domain.VolumeStable
	}
}

// levelWindow is the lookback for support/resistance extremes.
const levelWindow = 20

// Support is the minimum of the trailing 20 lows (or all available).
func Support(lows []float64) float64 {
	if len(lows) == 0 {
		return 0
	}
	window := lows
	if len(window) > levelWindow {
		window = window[len(window)-levelWindow:]
	}
	min := window[0]
	for _, v := range window[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Resistance is the maximum of the trailing 20 highs (or all available).
func Resistance(highs []float64) float64 {
	if len(highs) == 0 {
		return 0
	}
	window := highs
	if len(window) > levelWindow {
		window = window[len(window)-levelWindow:]
	}
	max := window[0]
	for _, v := range window[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
