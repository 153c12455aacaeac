package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// risingCandles builds a daily series climbing by step each bar.
func risingCandles(n int, start, step float64) []domain.Candle {
	out := make([]domain.Candle, n)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range out {
		c := start + float64(i)*step
		out[i] = domain.Candle{
			Date:   day.AddDate(0, 0, i),
			Open:   c * 0.998,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1e6,
		}
	}
	return out
}

type stubCandleProvider struct {
	mu     sync.Mutex
	series map[string][]domain.Candle
	err    error
	calls  int
}

func (p *stubCandleProvider) Name() string { return "stub" }

func (p *stubCandleProvider) Candles(_ context.Context, symbol string, _ domain.CandleRange) ([]domain.Candle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.series[symbol], nil
}

type stubQuoteProvider struct {
	quote domain.Quote
	err   error
}

func (p *stubQuoteProvider) Quote(_ context.Context, symbol string) (domain.Quote, error) {
	if p.err != nil {
		return domain.Quote{}, p.err
	}
	q := p.quote
	q.Symbol = symbol
	return q, nil
}

type memCandleCache struct {
	mu   sync.Mutex
	data map[string][]domain.Candle
}

func newMemCandleCache() *memCandleCache {
	return &memCandleCache{data: make(map[string][]domain.Candle)}
}

func (c *memCandleCache) Set(_ context.Context, symbol, rng string, candles []domain.Candle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[symbol+":"+rng] = candles
	return nil
}

func (c *memCandleCache) Get(_ context.Context, symbol, rng string) ([]domain.Candle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	candles, ok := c.data[symbol+":"+rng]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return candles, nil
}

type memQuoteCache struct {
	mu   sync.Mutex
	data map[string]domain.Quote
}

func newMemQuoteCache() *memQuoteCache {
	return &memQuoteCache{data: make(map[string]domain.Quote)}
}

func (c *memQuoteCache) SetQuote(_ context.Context, quote domain.Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[quote.Symbol] = quote
	return nil
}

func (c *memQuoteCache) GetQuote(_ context.Context, symbol string) (domain.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.data[symbol]
	if !ok {
		return domain.Quote{}, domain.ErrNotFound
	}
	return q, nil
}

type captureBus struct {
	mu       sync.Mutex
	messages []domain.BusMessage
}

func (b *captureBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, domain.BusMessage{Channel: channel, Payload: payload})
	return nil
}

func (b *captureBus) Subscribe(context.Context, ...string) (<-chan domain.BusMessage, error) {
	ch := make(chan domain.BusMessage)
	close(ch)
	return ch, nil
}

type captureAlerter struct {
	mu     sync.Mutex
	events []string
}

func (a *captureAlerter) Notify(_ context.Context, event, _, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

type memRunStore struct {
	mu   sync.Mutex
	runs map[string]domain.BacktestRun
}

func newMemRunStore() *memRunStore {
	return &memRunStore{runs: make(map[string]domain.BacktestRun)}
}

func (s *memRunStore) Insert(_ context.Context, run domain.BacktestRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *memRunStore) GetByID(_ context.Context, id string) (domain.BacktestRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return domain.BacktestRun{}, domain.ErrNotFound
	}
	return run, nil
}

func (s *memRunStore) ListBySymbol(_ context.Context, symbol string, _ domain.ListOpts) ([]domain.BacktestRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.BacktestRun
	for _, run := range s.runs {
		if run.Symbol == symbol {
			out = append(out, run)
		}
	}
	return out, nil
}

func (s *memRunStore) ListRecent(_ context.Context, _ domain.ListOpts) ([]domain.BacktestRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.BacktestRun, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	return out, nil
}

type captureArchiver struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (a *captureArchiver) ArchiveRun(_ context.Context, run domain.BacktestRun) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	path := "backtests/" + run.Symbol + "/" + run.ID + ".json"
	a.paths = append(a.paths, path)
	return path, nil
}
