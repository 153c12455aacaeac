package marketdata

import (
	"context"
	"fmt"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// CloseQuotes derives quotes from daily candles for providers that have no
// realtime quote endpoint. The quote price is the latest close and the change
// percentage is computed against the prior session's close.
type CloseQuotes struct {
	candles domain.CandleProvider
}

var _ domain.QuoteProvider = (*CloseQuotes)(nil)

// NewCloseQuotes wraps a candle provider as a quote source.
func NewCloseQuotes(candles domain.CandleProvider) *CloseQuotes {
	return &CloseQuotes{candles: candles}
}

// Quote fetches recent candles and synthesizes a quote from the last close.
func (q *CloseQuotes) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	raw, err := q.candles.Candles(ctx, symbol, domain.Range3M)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("marketdata: close quote %s: %w", symbol, err)
	}

	candles := domain.CleanCandles(raw)
	if len(candles) == 0 {
		return domain.Quote{}, fmt.Errorf("marketdata: close quote %s: %w", symbol, domain.ErrNotFound)
	}

	last := candles[len(candles)-1]
	quote := domain.Quote{
		Symbol:    symbol,
		Price:     last.Close,
		Timestamp: last.Date,
	}
	if len(candles) >= 2 {
		prev := candles[len(candles)-2].Close
		if prev > 0 {
			quote.ChangePct = (last.Close - prev) / prev * 100
		}
	}
	return quote, nil
}
