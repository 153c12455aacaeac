// Package stooq is a client for the keyless Stooq daily-quote CSV download
// API. It serves as the fallback candle source when the primary provider is
// unavailable or unconfigured.
package stooq

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// Client downloads daily OHLCV history from Stooq.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new Stooq client. baseURL is the download root, e.g.
// "https://stooq.com".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Name identifies this provider in logs and fallback-chain decisions.
func (c *Client) Name() string { return "stooq" }

// normalizeSymbol maps a plain US ticker onto Stooq's ".us" suffix
// convention; symbols that already carry a market suffix pass through.
func normalizeSymbol(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".us"
}

// Candles downloads the full daily history for a symbol and returns the
// trailing slice covering the requested range. Stooq's CSV endpoint has no
// date filtering, so clipping happens client-side.
func (c *Client) Candles(ctx context.Context, symbol string, rng domain.CandleRange) ([]domain.Candle, error) {
	params := url.Values{}
	params.Set("s", normalizeSymbol(symbol))
	params.Set("i", "d")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/q/d/l/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("stooq: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stooq: get candles %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stooq: %w: status %d for %s",
			domain.ErrUpstream, resp.StatusCode, symbol)
	}

	candles, err := parseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("stooq: parse candles %s: %w", symbol, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("stooq: %w: no data for %s", domain.ErrNotFound, symbol)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -rangeCalendarDays(rng))
	for i, cd := range candles {
		if !cd.Date.Before(cutoff) {
			return candles[i:], nil
		}
	}
	return candles, nil
}

// rangeCalendarDays mirrors the range mapping of the primary provider.
func rangeCalendarDays(rng domain.CandleRange) int {
	switch rng {
	case domain.Range3M:
		return 92
	case domain.Range6M:
		return 183
	case domain.Range2Y:
		return 731
	default:
		return 366
	}
}

// parseCSV decodes Stooq's Date,Open,High,Low,Close,Volume format. Rows with
// unparseable numbers are skipped; Stooq emits "N/D" cells for halted days.
func parseCSV(r io.Reader) ([]domain.Candle, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	out := make([]domain.Candle, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		if len(rec) < 6 {
			continue
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			continue
		}
		open, err1 := strconv.ParseFloat(rec[1], 64)
		high, err2 := strconv.ParseFloat(rec[2], 64)
		low, err3 := strconv.ParseFloat(rec[3], 64)
		cls, err4 := strconv.ParseFloat(rec[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		volume, _ := strconv.ParseFloat(rec[5], 64)

		out = append(out, domain.Candle{
			Date:   date.UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  cls,
			Volume: volume,
		})
	}
	return out, nil
}

// Compile-time interface check.
var _ domain.CandleProvider = (*Client)(nil)
