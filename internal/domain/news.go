package domain

import "time"

// NewsItem is one headline from the news provider, already mapped out of the
// provider's wire format.
type NewsItem struct {
	ID       string    `json:"id"`
	Symbol   string    `json:"symbol"`
	Headline string    `json:"headline"`
	Summary  string    `json:"summary"`
	Source   string    `json:"source"`
	URL      string    `json:"url"`
	Datetime time.Time `json:"datetime"`
}

// Watchlist is a named set of tickers driving the scan board.
type Watchlist struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Symbols   []string  `json:"symbols"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
