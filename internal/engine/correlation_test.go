package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

func TestBuildCorrelationMatrix_SymmetricWithUnitDiagonal(t *testing.T) {
	up := mkCandles(seq(100, 1, 60)...)
	wob := make([]float64, 60)
	for i := range wob {
		if i%2 == 0 {
			wob[i] = 100 + float64(i)
		} else {
			wob[i] = 98 + float64(i)*0.5
		}
	}

	m := BuildCorrelationMatrix(map[string][]domain.Candle{
		"AAA": up,
		"BBB": mkCandles(wob...),
		"CCC": mkCandles(seq(50, -0.2, 60)...),
	})

	require.Len(t, m, 3)
	for _, a := range m.Symbols() {
		assert.Equal(t, 1.0, m[a][a])
		for _, b := range m.Symbols() {
			assert.Equal(t, m[a][b], m[b][a], "%s/%s must mirror", a, b)
			assert.GreaterOrEqual(t, m[a][b], -1.0)
			assert.LessOrEqual(t, m[a][b], 1.0)
		}
	}
}

func TestBuildCorrelationMatrix_PerfectCorrelation(t *testing.T) {
	base := seq(100, 0, 60)
	for i := range base {
		// Shared return pattern at different price levels.
		if i%2 == 0 {
			base[i] = 100 * (1 + 0.01*float64(i%5))
		} else {
			base[i] = 100 * (1 - 0.007*float64(i%3))
		}
	}
	double := make([]float64, len(base))
	for i, v := range base {
		double[i] = v * 2 // identical returns
	}

	m := BuildCorrelationMatrix(map[string][]domain.Candle{
		"X": mkCandles(base...),
		"Y": mkCandles(double...),
	})
	assert.Equal(t, 1.0, m["X"]["Y"])
}

func TestBuildCorrelationMatrix_TooFewPointsReportsZero(t *testing.T) {
	m := BuildCorrelationMatrix(map[string][]domain.Candle{
		"A": mkCandles(seq(100, 1, 5)...), // 4 return points < 8
		"B": mkCandles(seq(100, 2, 5)...),
	})
	assert.Equal(t, 0.0, m["A"]["B"])
	assert.Equal(t, 1.0, m["A"]["A"], "diagonal skips the minimum-points rule")
}

func TestBuildCorrelationMatrix_ConstantSeriesReportsZero(t *testing.T) {
	m := BuildCorrelationMatrix(map[string][]domain.Candle{
		"FLAT": mkCandles(seq(100, 0, 40)...),
		"UP":   mkCandles(seq(100, 1, 40)...),
	})
	assert.Equal(t, 0.0, m["FLAT"]["UP"], "zero variance denominator falls back to 0")
}
