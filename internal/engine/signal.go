package engine

import (
	"math"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// proximityPct is the "near a key level" threshold used by both the composite
// score and the flag builder.
const proximityPct = 2.0

// maxFlags caps the emitted signal flags; evaluation order below is the
// de-facto priority when more conditions fire.
const maxFlags = 6

// ClassifyTrend labels the stack of last close vs the 20- and 50-bar SMAs.
// Either SMA still unavailable (0) classifies as Neutral.
func ClassifyTrend(lastClose, sma20, sma50 float64) domain.Trend {
	if sma20 == 0 || sma50 == 0 {
		return domain.TrendNeutral
	}
	switch {
	case lastClose > sma20 && sma20 > sma50:
		return domain.TrendBullish
	case lastClose < sma20 && sma20 < sma50:
		return domain.TrendBearish
	default:
		return domain.TrendRangeBound
	}
}

// ClassifyMomentum buckets an RSI reading. Boundaries are inclusive and
// evaluated extremes-first so 70 is Overbought, not Positive.
func ClassifyMomentum(rsi float64) domain.Momentum {
	switch {
	case rsi >= 70:
		return domain.MomentumOverbought
	case rsi <= 30:
		return domain.MomentumOversold
	case rsi >= 55:
		return domain.MomentumPositive
	case rsi <= 45:
		return domain.MomentumNegative
	default:
		return domain.MomentumNeutral
	}
}

// ClassifyRisk buckets annualized volatility, max drawdown, and ATR% into a
// coarse risk label. Any single elevated measure is enough to raise the tier.
func ClassifyRisk(volatility, maxDrawdown, atrPct float64) domain.RiskLevel {
	switch {
	case volatility > 45 || maxDrawdown > 30 || atrPct > 5:
		return domain.RiskHigh
	case volatility > 28 || maxDrawdown > 18 || atrPct > 3:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// scoreInputs carries everything the composite scorer and flag builder read.
type scoreInputs struct {
	trend          domain.Trend
	momentum       domain.Momentum
	rsi            float64
	performance5   float64
	performance20  float64
	volatility     float64
	atrPct         float64
	distSupportPct float64
	distResistPct  float64
	volumeTrend    domain.VolumeTrend
}

// CompositeScore folds the classified signals into a single 0-100 integer.
// Every factor contributes an independently bounded, order-independent nudge
// around the 50 baseline, so no single signal can dominate or push the score
// out of range.
func CompositeScore(in scoreInputs) int {
	score := 50.0

	switch in.trend {
	case domain.TrendBullish:
		score += 12
	case domain.TrendBearish:
		score -= 12
	}

	switch in.momentum {
	case domain.MomentumPositive:
		score += 8
	case domain.MomentumNegative:
		score -= 8
	case domain.MomentumOversold:
		score += 5
	case domain.MomentumOverbought:
		score -= 5
	}

	score += clamp(in.performance20*0.7, -14, 14)
	score -= clamp((in.volatility-25)*0.4, 0, 14)

	if in.distResistPct <= proximityPct {
		score -= 6
	}
	if in.distSupportPct <= proximityPct {
		score += 4
	}

	switch in.volumeTrend {
	case domain.VolumeIncreasing:
		score += 4
	case domain.VolumeDeclining:
		score -= 4
	}

	return int(clamp(math.Round(score), 0, 100))
}

// BuildFlags emits short human-readable notes for notable conditions, capped
// at six entries. The evaluation order here decides which flags survive the
// cap and must not be reordered.
func BuildFlags(in scoreInputs) []string {
	flags := make([]string, 0, maxFlags)

	switch in.trend {
	case domain.TrendBullish:
		flags = append(flags, "Uptrend: price above rising averages")
	case domain.TrendBearish:
		flags = append(flags, "Downtrend: price below falling averages")
	}

	switch {
	case in.rsi >= 70:
		flags = append(flags, "RSI overbought")
	case in.rsi <= 30:
		flags = append(flags, "RSI oversold")
	}

	if in.performance20 > 10 {
		flags = append(flags, "Strong 20-bar advance")
	} else if in.performance20 < -10 {
		flags = append(flags, "Steep 20-bar decline")
	}

	if in.performance5 > 4 {
		flags = append(flags, "Accelerating over last 5 bars")
	} else if in.performance5 < -4 {
		flags = append(flags, "Fading over last 5 bars")
	}

	if in.distSupportPct <= proximityPct {
		flags = append(flags, "Testing support")
	}
	if in.distResistPct <= proximityPct {
		flags = append(flags, "Testing resistance")
	}

	if in.atrPct > 3 {
		flags = append(flags, "Wide daily ranges (ATR elevated)")
	}

	if in.volumeTrend == domain.VolumeIncreasing {
		flags = append(flags, "Volume building")
	}

	if len(flags) > maxFlags {
		flags = flags[:maxFlags]
	}
	return flags
}
