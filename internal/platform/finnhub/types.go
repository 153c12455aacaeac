package finnhub

import (
	"time"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// apiQuote is the wire format of GET /quote.
type apiQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// toDomainQuote converts the wire quote for a symbol.
func (q apiQuote) toDomainQuote(symbol string) domain.Quote {
	return domain.Quote{
		Symbol:    symbol,
		Price:     q.Current,
		ChangePct: q.ChangePercent,
		Timestamp: time.Unix(q.Timestamp, 0).UTC(),
	}
}

// apiCandles is the column-oriented wire format of GET /stock/candle.
// Status is "ok" or "no_data".
type apiCandles struct {
	Close     []float64 `json:"c"`
	High      []float64 `json:"h"`
	Low       []float64 `json:"l"`
	Open      []float64 `json:"o"`
	Timestamp []int64   `json:"t"`
	Volume    []float64 `json:"v"`
	Status    string    `json:"s"`
}

// toDomainCandles pivots the column arrays into row candles. Rows with a
// missing column are skipped rather than zero-filled.
func (c apiCandles) toDomainCandles() []domain.Candle {
	n := len(c.Timestamp)
	out := make([]domain.Candle, 0, n)
	for i := 0; i < n; i++ {
		if i >= len(c.Open) || i >= len(c.High) || i >= len(c.Low) ||
			i >= len(c.Close) || i >= len(c.Volume) {
			break
		}
		ts := time.Unix(c.Timestamp[i], 0).UTC()
		out = append(out, domain.Candle{
			Date:   ts.Truncate(24 * time.Hour),
			Time:   ts,
			Open:   c.Open[i],
			High:   c.High[i],
			Low:    c.Low[i],
			Close:  c.Close[i],
			Volume: c.Volume[i],
		})
	}
	return out
}

// apiNewsItem is the wire format of GET /company-news entries.
type apiNewsItem struct {
	ID       int64  `json:"id"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Related  string `json:"related"`
}
