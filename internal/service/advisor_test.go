package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

type stubNewsProvider struct {
	items []domain.NewsItem
	err   error
}

func (p *stubNewsProvider) News(_ context.Context, _ string, limit int) ([]domain.NewsItem, error) {
	if p.err != nil {
		return nil, p.err
	}
	if len(p.items) > limit {
		return p.items[:limit], nil
	}
	return p.items, nil
}

func TestBriefIncludesMetricsAndHeadlines(t *testing.T) {
	provider := &stubCandleProvider{series: map[string][]domain.Candle{
		"AAPL": risingCandles(120, 100, 0.5),
	}}
	news := NewNewsService(&stubNewsProvider{items: []domain.NewsItem{
		{Symbol: "AAPL", Headline: "Apple ships new thing"},
	}})
	advisor := NewAdvisor(newTestMarketService(provider, &stubQuoteProvider{}), news)

	brief, err := advisor.Brief(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", brief.Symbol)
	assert.Contains(t, brief.Summary, "AAPL")
	assert.Contains(t, brief.Summary, "uptrend")
	require.Len(t, brief.Headlines, 1)
}

func TestBriefSurvivesNewsFailure(t *testing.T) {
	provider := &stubCandleProvider{series: map[string][]domain.Candle{
		"AAPL": risingCandles(120, 100, 0.5),
	}}
	news := NewNewsService(&stubNewsProvider{err: errors.New("news api down")})
	advisor := NewAdvisor(newTestMarketService(provider, &stubQuoteProvider{}), news)

	brief, err := advisor.Brief(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Empty(t, brief.Headlines)
	assert.NotEmpty(t, brief.Summary)
}

func TestSummarizeIsDeterministic(t *testing.T) {
	m := domain.MetricsSnapshot{
		Trend:       domain.TrendBearish,
		Momentum:    domain.MomentumNegative,
		RiskLevel:   domain.RiskHigh,
		SignalScore: 22,
		Volatility:  48.3,
		RSI14:       38.2,
		Support:     91.40,
		Resistance:  110.25,
		SignalFlags: []string{"Downtrend: price below falling averages"},
	}

	first := Summarize("TSLA", m)
	second := Summarize("TSLA", m)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "downtrend")
	assert.Contains(t, first, "22/100")
	assert.Contains(t, first, "high")
}
