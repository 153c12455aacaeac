package domain

import "context"

// CandleRange selects how much daily history a provider should return.
// Providers map these onto their own query parameters.
type CandleRange string

const (
	Range3M CandleRange = "3m"
	Range6M CandleRange = "6m"
	Range1Y CandleRange = "1y"
	Range2Y CandleRange = "2y"
)

// CandleProvider fetches raw daily candles for a symbol. Implementations do
// not clean or sort the series; that is the service layer's job.
type CandleProvider interface {
	Name() string
	Candles(ctx context.Context, symbol string, rng CandleRange) ([]Candle, error)
}

// QuoteProvider fetches the latest quote for a symbol.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// NewsProvider fetches recent company headlines for a symbol.
type NewsProvider interface {
	News(ctx context.Context, symbol string, limit int) ([]NewsItem, error)
}
