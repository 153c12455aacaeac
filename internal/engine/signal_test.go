package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

func TestClassifyTrend(t *testing.T) {
	assert.Equal(t, domain.TrendBullish, ClassifyTrend(110, 105, 100))
	assert.Equal(t, domain.TrendBearish, ClassifyTrend(90, 95, 100))
	assert.Equal(t, domain.TrendRangeBound, ClassifyTrend(102, 105, 100))
	assert.Equal(t, domain.TrendNeutral, ClassifyTrend(110, 0, 100),
		"unavailable SMA means no trend call")
	assert.Equal(t, domain.TrendNeutral, ClassifyTrend(110, 105, 0))
}

func TestClassifyMomentum_Boundaries(t *testing.T) {
	cases := []struct {
		rsi  float64
		want domain.Momentum
	}{
		{70, domain.MomentumOverbought},
		{85, domain.MomentumOverbought},
		{30, domain.MomentumOversold},
		{12, domain.MomentumOversold},
		{55, domain.MomentumPositive},
		{69.9, domain.MomentumPositive},
		{45, domain.MomentumNegative},
		{30.1, domain.MomentumNegative},
		{50, domain.MomentumNeutral},
		{54.9, domain.MomentumNeutral},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyMomentum(tc.rsi), "rsi=%v", tc.rsi)
	}
}

func TestClassifyRisk(t *testing.T) {
	assert.Equal(t, domain.RiskLow, ClassifyRisk(20, 10, 1))
	assert.Equal(t, domain.RiskMedium, ClassifyRisk(30, 10, 1))
	assert.Equal(t, domain.RiskMedium, ClassifyRisk(20, 19, 1))
	assert.Equal(t, domain.RiskMedium, ClassifyRisk(20, 10, 3.5))
	assert.Equal(t, domain.RiskHigh, ClassifyRisk(46, 10, 1))
	assert.Equal(t, domain.RiskHigh, ClassifyRisk(20, 31, 1))
	assert.Equal(t, domain.RiskHigh, ClassifyRisk(20, 10, 5.1))
}

func TestCompositeScore_NeutralBaseline(t *testing.T) {
	in := scoreInputs{
		trend:          domain.TrendRangeBound,
		momentum:       domain.MomentumNeutral,
		volatility:     25,
		distSupportPct: 10,
		distResistPct:  10,
		volumeTrend:    domain.VolumeStable,
	}
	assert.Equal(t, 50, CompositeScore(in))
}

func TestCompositeScore_KnownBullCase(t *testing.T) {
	in := scoreInputs{
		trend:          domain.TrendBullish,    // +12
		momentum:       domain.MomentumPositive, // +8
		performance20:  10,                      // +7
		volatility:     25,                      // -0
		distSupportPct: 10,
		distResistPct:  10,
		volumeTrend:    domain.VolumeIncreasing, // +4
	}
	assert.Equal(t, 81, CompositeScore(in))
}

func TestCompositeScore_ClampedToBounds(t *testing.T) {
	bull := scoreInputs{
		trend:          domain.TrendBullish,
		momentum:       domain.MomentumPositive,
		performance20:  1000,
		distSupportPct: 1,
		distResistPct:  50,
		volumeTrend:    domain.VolumeIncreasing,
	}
	assert.Equal(t, 92, CompositeScore(bull), "perf nudge is capped at 14")

	bear := scoreInputs{
		trend:          domain.TrendBearish,
		momentum:       domain.MomentumNegative,
		performance20:  -1000,
		volatility:     1000,
		distSupportPct: 50,
		distResistPct:  1,
		volumeTrend:    domain.VolumeDeclining,
	}
	score := bear
	assert.Equal(t, 0, CompositeScore(score), "floor is 0")
}

func TestBuildFlags_OrderAndCap(t *testing.T) {
	// Fire every condition at once; only the first six survive, in
	// evaluation order.
	in := scoreInputs{
		trend:          domain.TrendBullish,
		rsi:            75,
		performance20:  15,
		performance5:   6,
		distSupportPct: 1,
		distResistPct:  1,
		atrPct:         4,
		volumeTrend:    domain.VolumeIncreasing,
	}
	flags := BuildFlags(in)
	assert.Equal(t, []string{
		"Uptrend: price above rising averages",
		"RSI overbought",
		"Strong 20-bar advance",
		"Accelerating over last 5 bars",
		"Testing support",
		"Testing resistance",
	}, flags)
}

func TestBuildFlags_QuietMarket(t *testing.T) {
	in := scoreInputs{
		trend:          domain.TrendRangeBound,
		rsi:            50,
		distSupportPct: 10,
		distResistPct:  10,
		volumeTrend:    domain.VolumeStable,
	}
	assert.Empty(t, BuildFlags(in))
}
