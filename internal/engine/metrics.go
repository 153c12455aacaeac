package engine

import (
	"github.com/alanyoungcy/stocklens/internal/domain"
)

// DeriveMetrics computes one immutable MetricsSnapshot from a candle series.
// The input must already be cleaned (ascending time, positive finite closes;
// see domain.CleanCandles); an empty series returns the documented neutral
// snapshot rather than an error. Calling this twice on the same input yields
// identical output.
func DeriveMetrics(candles []domain.Candle) domain.MetricsSnapshot {
	if len(candles) == 0 {
		return neutralSnapshot()
	}

	closes := domain.Closes(candles)
	highs := domain.Highs(candles)
	lows := domain.Lows(candles)
	volumes := domain.Volumes(candles)

	lastClose := closes[len(closes)-1]

	// Close-to-close change vs the prior bar; a single bar compares to itself.
	prevClose := lastClose
	if len(closes) >= 2 {
		prevClose = closes[len(closes)-2]
	}
	changePct := 0.0
	if prevClose != 0 {
		changePct = (lastClose - prevClose) / prevClose * 100
	}

	high := highs[0]
	low := lows[0]
	for i := 1; i < len(candles); i++ {
		if highs[i] > high {
			high = highs[i]
		}
		if lows[i] < low {
			low = lows[i]
		}
	}

	var avgVolume float64
	for _, v := range volumes {
		avgVolume += v
	}
	avgVolume /= float64(len(volumes))

	volatility := AnnualizedVolatility(domain.DailyReturns(candles))
	rsi14 := RSI(closes, 14)
	sma20 := SMA(closes, 20)
	sma50 := SMA(closes, 50)
	support := Support(lows)
	resistance := Resistance(highs)
	atr14 := ATR(candles, 14)
	atrPct := 0.0
	if lastClose != 0 {
		atrPct = atr14 / lastClose * 100
	}
	perf5 := Performance(closes, 5)
	perf20 := Performance(closes, 20)
	maxDD := MaxDrawdown(closes)
	volTrend := VolumeTrendClass(volumes)

	distSupport := 0.0
	distResist := 0.0
	if lastClose != 0 {
		distSupport = (lastClose - support) / lastClose * 100
		distResist = (resistance - lastClose) / lastClose * 100
	}

	trend := ClassifyTrend(lastClose, sma20, sma50)
	momentum := ClassifyMomentum(rsi14)
	risk := ClassifyRisk(volatility, maxDD, atrPct)

	in := scoreInputs{
		trend:          trend,
		momentum:       momentum,
		rsi:            rsi14,
		performance5:   perf5,
		performance20:  perf20,
		volatility:     volatility,
		atrPct:         atrPct,
		distSupportPct: distSupport,
		distResistPct:  distResist,
		volumeTrend:    volTrend,
	}

	return domain.MetricsSnapshot{
		LastClose:               lastClose,
		ChangePct:               changePct,
		High:                    high,
		Low:                     low,
		AvgVolume:               avgVolume,
		Volatility:              volatility,
		RSI14:                   rsi14,
		SMA20:                   sma20,
		SMA50:                   sma50,
		Trend:                   trend,
		Momentum:                momentum,
		Support:                 support,
		Resistance:              resistance,
		ATR14:                   atr14,
		ATRPct:                  atrPct,
		Performance5:            perf5,
		Performance20:           perf20,
		MaxDrawdown:             maxDD,
		VolumeTrend:             volTrend,
		DistanceToSupportPct:    distSupport,
		DistanceToResistancePct: distResist,
		RiskLevel:               risk,
		SignalScore:             CompositeScore(in),
		SignalFlags:             BuildFlags(in),
	}
}

// neutralSnapshot is the documented degenerate result for an empty series:
// score 50, neutral labels, zeros everywhere, RSI at its neutral prior.
func neutralSnapshot() domain.MetricsSnapshot {
	return domain.MetricsSnapshot{
		RSI14:       50,
		Trend:       domain.TrendNeutral,
		Momentum:    domain.MomentumNeutral,
		VolumeTrend: domain.VolumeStable,
		RiskLevel:   domain.RiskLow,
		SignalScore: 50,
		SignalFlags: []string{},
	}
}
