// Package finnhub is the REST client for the Finnhub market data API, which
// provides quotes, daily candles, and company news.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// Client is a Finnhub REST API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new Finnhub client.
//
// baseURL is the API root, e.g. "https://finnhub.io/api/v1".
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name identifies this provider in logs and fallback-chain decisions.
func (c *Client) Name() string { return "finnhub" }

// rangeDays maps a candle range onto a trailing day count.
func rangeDays(rng domain.CandleRange) int {
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

// Candles fetches daily candles covering the requested range ending now.
func (c *Client) Candles(ctx context.Context, symbol string, rng domain.CandleRange) ([]domain.Candle, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -rangeDays(rng))

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", "D")
	params.Set("from", strconv.FormatInt(from.Unix(), 10))
	params.Set("to", strconv.FormatInt(to.Unix(), 10))

	body, err := c.doGet(ctx, "/stock/candle?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("finnhub: get candles %s: %w", symbol, err)
	}

	var api apiCandles
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("finnhub: decode candles %s: %w", symbol, err)
	}
	if api.Status == "no_data" {
		return nil, fmt.Errorf("finnhub: %w: no candle data for %s", domain.ErrNotFound, symbol)
	}

	return api.toDomainCandles(), nil
}

// Quote fetches the latest quote for a symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.doGet(ctx, "/quote?"+params.Encode())
	if err != nil {
		return domain.Quote{}, fmt.Errorf("finnhub: get quote %s: %w", symbol, err)
	}

	var api apiQuote
	if err := json.Unmarshal(body, &api); err != nil {
		return domain.Quote{}, fmt.Errorf("finnhub: decode quote %s: %w", symbol, err)
	}
	if api.Current == 0 && api.Timestamp == 0 {
		return domain.Quote{}, fmt.Errorf("finnhub: %w: unknown symbol %s", domain.ErrNotFound, symbol)
	}

	return api.toDomainQuote(symbol), nil
}

// News fetches recent company headlines for a symbol, newest first, capped
// at limit entries.
func (c *Client) News(ctx context.Context, symbol string, limit int) ([]domain.NewsItem, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -14)

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))

	body, err := c.doGet(ctx, "/company-news?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("finnhub: get news %s: %w", symbol, err)
	}

	var apiItems []apiNewsItem
	if err := json.Unmarshal(body, &apiItems); err != nil {
		return nil, fmt.Errorf("finnhub: decode news %s: %w", symbol, err)
	}

	if limit > 0 && len(apiItems) > limit {
		apiItems = apiItems[:limit]
	}
	items := make([]domain.NewsItem, 0, len(apiItems))
	for _, it := range apiItems {
		items = append(items, domain.NewsItem{
			ID:       strconv.FormatInt(it.ID, 10),
			Symbol:   symbol,
			Headline: it.Headline,
			Summary:  it.Summary,
			Source:   it.Source,
			URL:      it.URL,
			Datetime: time.Unix(it.Datetime, 0).UTC(),
		})
	}
	return items, nil
}

// doGet performs a GET request against the API and returns the raw body.
// Finnhub authenticates via the X-Finnhub-Token header.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Finnhub-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// truncate clips a response body for error messages.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Compile-time interface checks.
var (
	_ domain.CandleProvider = (*Client)(nil)
	_ domain.QuoteProvider  = (*Client)(nil)
	_ domain.NewsProvider   = (*Client)(nil)
)
