package engine

import (
	"math"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

const (
	// correlationWindow is the number of most recent overlapping return
	// observations used per ticker pair.
	correlationWindow = 90

	// minCorrelationPoints is the floor below which a pair reports 0 rather
	// than a noisy coefficient.
	minCorrelationPoints = 8
)

// BuildCorrelationMatrix computes the symmetric Pearson correlation matrix of
// daily returns across the given tickers. Each unordered pair is computed
// once and mirrored; diagonal entries are exactly 1. Pairs with fewer than 8
// overlapping observations, or with a constant series, report 0. Coefficients
// are rounded to 2 decimal places.
func BuildCorrelationMatrix(candlesByTicker map[string][]domain.Candle) domain.CorrelationMatrix {
	returns := make(map[string][]float64, len(candlesByTicker))
	symbols := make([]string, 0, len(candlesByTicker))
	for sym, candles := range candlesByTicker {
		returns[sym] = domain.DailyReturns(candles)
		symbols = append(symbols, sym)
	}

	matrix := make(domain.CorrelationMatrix, len(symbols))
	for _, sym := range symbols {
		matrix[sym] = make(map[string]float64, len(symbols))
		matrix[sym][sym] = 1
	}

	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			a, b := symbols[i], symbols[j]
			coeff := pearson(returns[a], returns[b])
			matrix[a][b] = coeff
			matrix[b][a] = coeff
		}
	}
	return matrix
}

// pearson computes the correlation of the last correlationWindow overlapping
// observations of the two return series using the population
// covariance / sqrt(variance product) formula.
func pearson(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n > correlationWindow {
		n = correlationWindow
	}
	if n < minCorrelationPoints {
		return 0
	}

	x := a[len(a)-n:]
	y := b[len(b)-n:]

	var meanX, meanY float64
	for i := 0; i < n; i++ {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	denom := math.Sqrt(varX * varY)
	if denom == 0 {
		return 0
	}
	return math.Round(cov/denom*100) / 100
}
