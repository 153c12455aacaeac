package feed

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

type fakeQuoteProvider struct {
	mu    sync.Mutex
	calls map[string]int
}

func (p *fakeQuoteProvider) Quote(_ context.Context, symbol string) (domain.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[symbol]++
	return domain.Quote{Symbol: symbol, Price: 100, Timestamp: time.Now()}, nil
}

type fakeQuoteCache struct {
	mu     sync.Mutex
	quotes map[string]domain.Quote
}

func (c *fakeQuoteCache) SetQuote(_ context.Context, q domain.Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quotes == nil {
		c.quotes = make(map[string]domain.Quote)
	}
	c.quotes[q.Symbol] = q
	return nil
}

func (c *fakeQuoteCache) GetQuote(_ context.Context, symbol string) (domain.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.quotes[symbol]
	if !ok {
		return domain.Quote{}, domain.ErrNotFound
	}
	return q, nil
}

type fakeBus struct {
	mu       sync.Mutex
	messages []domain.BusMessage
}

func (b *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, domain.BusMessage{Channel: channel, Payload: payload})
	return nil
}

func (b *fakeBus) Subscribe(context.Context, ...string) (<-chan domain.BusMessage, error) {
	ch := make(chan domain.BusMessage)
	close(ch)
	return ch, nil
}

type deniedLock struct{}

func (deniedLock) Acquire(context.Context, string, time.Duration) (func(), error) {
	return nil, domain.ErrLockHeld
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPollerCachesAndPublishes(t *testing.T) {
	provider := &fakeQuoteProvider{}
	cache := &fakeQuoteCache{}
	bus := &fakeBus{}
	poller := NewQuotePoller([]string{"AAPL", "MSFT"}, time.Second, provider, cache, bus, nil, quietLogger())

	poller.tick(context.Background())

	provider.mu.Lock()
	assert.Equal(t, 1, provider.calls["AAPL"])
	assert.Equal(t, 1, provider.calls["MSFT"])
	provider.mu.Unlock()

	_, err := cache.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	bus.mu.Lock()
	defer bus.mu.Unlock()
	require.Len(t, bus.messages, 2)
	assert.Equal(t, QuoteBusChannel, bus.messages[0].Channel)

	var q domain.Quote
	require.NoError(t, json.Unmarshal(bus.messages[0].Payload, &q))
	assert.NotEmpty(t, q.Symbol)
}

func TestPollerSkipsTickWhenLockHeld(t *testing.T) {
	provider := &fakeQuoteProvider{}
	poller := NewQuotePoller([]string{"AAPL"}, time.Second, provider, nil, nil, deniedLock{}, quietLogger())

	poller.tick(context.Background())

	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.Empty(t, provider.calls, "no polling while another instance leads")
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	provider := &fakeQuoteProvider{}
	poller := NewQuotePoller([]string{"AAPL"}, 10*time.Millisecond, provider, nil, nil, nil, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()

	err := poller.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.GreaterOrEqual(t, provider.calls["AAPL"], 1)
}

func TestPollerNoSymbolsExitsCleanly(t *testing.T) {
	poller := NewQuotePoller(nil, time.Second, &fakeQuoteProvider{}, nil, nil, nil, quietLogger())
	assert.NoError(t, poller.Run(context.Background()))
}
