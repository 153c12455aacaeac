package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// Brief is a plain-language read of one symbol assembled from its metric
// snapshot and recent headlines.
type Brief struct {
	Symbol    string                 `json:"symbol"`
	Summary   string                 `json:"summary"`
	Metrics   domain.MetricsSnapshot `json:"metrics"`
	Headlines []domain.NewsItem      `json:"headlines"`
}

// Advisor turns a metric snapshot into a short written brief. The text is
// deterministic: the same snapshot always yields the same summary.
type Advisor struct {
	market *MarketService
	news   *NewsService
}

// NewAdvisor creates an Advisor.
func NewAdvisor(market *MarketService, news *NewsService) *Advisor {
	return &Advisor{market: market, news: news}
}

// Brief builds the brief for one symbol. Headline fetch failures degrade to
// an empty headline list rather than failing the brief.
func (a *Advisor) Brief(ctx context.Context, symbol string) (Brief, error) {
	snapshot, err := a.market.Metrics(ctx, symbol)
	if err != nil {
		return Brief{}, fmt.Errorf("advisor: %s: %w", symbol, err)
	}

	headlines, err := a.news.News(ctx, symbol, 5)
	if err != nil {
		headlines = []domain.NewsItem{}
	}

	return Brief{
		Symbol:    symbol,
		Summary:   Summarize(symbol, snapshot),
		Metrics:   snapshot,
		Headlines: headlines,
	}, nil
}

// Summarize renders the snapshot as two or three sentences covering stance,
// momentum and levels, and risk.
func Summarize(symbol string, m domain.MetricsSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s is %s with %s momentum and a signal score of %d/100.",
		symbol, stanceText(m.Trend), strings.ToLower(string(m.Momentum)), m.SignalScore)

	fmt.Fprintf(&b, " Price sits %.1f%% above support (%.2f) and %.1f%% below resistance (%.2f), RSI at %.1f.",
		m.DistanceToSupportPct, m.Support, m.DistanceToResistancePct, m.Resistance, m.RSI14)

	fmt.Fprintf(&b, " Risk is %s at %.1f%% annualized volatility", strings.ToLower(string(m.RiskLevel)), m.Volatility)
	if len(m.SignalFlags) > 0 {
		fmt.Fprintf(&b, "; notable: %s.", strings.Join(m.SignalFlags, ", "))
	} else {
		b.WriteString(".")
	}

	return b.String()
}

func stanceText(t domain.Trend) string {
	switch t {
	case domain.TrendBullish:
		return "in an uptrend"
	case domain.TrendBearish:
		return "in a downtrend"
	case domain.TrendRangeBound:
		return "range-bound"
	default:
		return "trading without a clear trend"
	}
}
