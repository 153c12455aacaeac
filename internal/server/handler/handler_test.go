package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/stocklens/internal/domain"
	"github.com/alanyoungcy/stocklens/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMarketService struct {
	candles []domain.Candle
	quote   domain.Quote
	metrics domain.MetricsSnapshot
	err     error
}

func (f *fakeMarketService) Candles(context.Context, string, domain.CandleRange) ([]domain.Candle, error) {
	return f.candles, f.err
}

func (f *fakeMarketService) Quote(context.Context, string) (domain.Quote, error) {
	return f.quote, f.err
}

func (f *fakeMarketService) Metrics(context.Context, string) (domain.MetricsSnapshot, error) {
	return f.metrics, f.err
}

type fakeNewsService struct {
	items []domain.NewsItem
	err   error
}

func (f *fakeNewsService) News(context.Context, string, int) ([]domain.NewsItem, error) {
	return f.items, f.err
}

type fakeAdvisor struct {
	brief service.Brief
	err   error
}

func (f *fakeAdvisor) Brief(context.Context, string) (service.Brief, error) {
	return f.brief, f.err
}

type fakeBacktestService struct {
	run domain.BacktestRun
	err error
}

func (f *fakeBacktestService) Run(_ context.Context, symbol string, params domain.BacktestParams) (domain.BacktestRun, error) {
	if f.err != nil {
		return domain.BacktestRun{}, f.err
	}
	run := f.run
	run.Symbol = symbol
	run.Params = params
	return run, nil
}

func (f *fakeBacktestService) GetRun(context.Context, string) (domain.BacktestRun, error) {
	return f.run, f.err
}

func (f *fakeBacktestService) ListRuns(context.Context, string, domain.ListOpts) ([]domain.BacktestRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.BacktestRun{f.run}, nil
}

type fakeScanService struct {
	result  service.ScanResult
	symbols []string
	err     error
}

func (f *fakeScanService) Scan(_ context.Context, symbols []string) (service.ScanResult, error) {
	f.symbols = symbols
	return f.result, f.err
}

// newMux registers routes the way the server does so PathValue works in tests.
func newMux(t *testing.T, market *fakeMarketService, scanner *fakeScanService, backtests *fakeBacktestService) *http.ServeMux {
	t.Helper()

	mh := NewMarketHandler(market, &fakeNewsService{}, &fakeAdvisor{}, testLogger())
	sh := NewScanHandler(scanner, nil, []string{"AAPL", "MSFT"}, testLogger())
	bh := NewBacktestHandler(backtests, testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/candles/{symbol}", mh.GetCandles)
	mux.HandleFunc("GET /api/quote/{symbol}", mh.GetQuote)
	mux.HandleFunc("GET /api/metrics/{symbol}", mh.GetMetrics)
	mux.HandleFunc("GET /api/scan", sh.Scan)
	mux.HandleFunc("POST /api/backtest", bh.RunBacktest)
	mux.HandleFunc("GET /api/backtest/runs/{id}", bh.GetRun)
	return mux
}

func TestGetCandles(t *testing.T) {
	market := &fakeMarketService{candles: []domain.Candle{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 100, Volume: 1e6},
	}}
	mux := newMux(t, market, &fakeScanService{}, &fakeBacktestService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/candles/aapl?range=1y", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Symbol  string          `json:"symbol"`
		Range   string          `json:"range"`
		Candles []domain.Candle `json:"candles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Symbol, "symbol must be upper-cased")
	assert.Equal(t, "1y", resp.Range)
	assert.Len(t, resp.Candles, 1)
}

func TestGetCandlesNotFound(t *testing.T) {
	market := &fakeMarketService{err: domain.ErrNotFound}
	mux := newMux(t, market, &fakeScanService{}, &fakeBacktestService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/candles/ZZZZ", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCandlesUpstreamFailure(t *testing.T) {
	market := &fakeMarketService{err: domain.ErrUpstream}
	mux := newMux(t, market, &fakeScanService{}, &fakeBacktestService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/candles/AAPL", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetMetrics(t *testing.T) {
	market := &fakeMarketService{metrics: domain.MetricsSnapshot{SignalScore: 73, Trend: domain.TrendBullish}}
	mux := newMux(t, market, &fakeScanService{}, &fakeBacktestService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/metrics/AAPL", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var snap domain.MetricsSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 73, snap.SignalScore)
	assert.Equal(t, domain.TrendBullish, snap.Trend)
}

func TestScanParsesSymbolList(t *testing.T) {
	scanner := &fakeScanService{result: service.ScanResult{Rows: []domain.ScanRow{}}}
	mux := newMux(t, &fakeMarketService{}, scanner, &fakeBacktestService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scan?symbols=aapl,%20msft,,nvda", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, scanner.symbols)
}

func TestScanFallsBackToDefaults(t *testing.T) {
	scanner := &fakeScanService{result: service.ScanResult{Rows: []domain.ScanRow{}}}
	mux := newMux(t, &fakeMarketService{}, scanner, &fakeBacktestService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scan", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"AAPL", "MSFT"}, scanner.symbols)
}

func TestRunBacktest(t *testing.T) {
	backtests := &fakeBacktestService{run: domain.BacktestRun{ID: "run-1"}}
	mux := newMux(t, &fakeMarketService{}, &fakeScanService{}, backtests)

	body := `{"symbol":"aapl","fastPeriod":10,"slowPeriod":30,"initialCapital":10000,"feeBps":10}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/backtest", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var run domain.BacktestRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, "AAPL", run.Symbol)
	assert.Equal(t, 10, run.Params.FastPeriod)
	assert.Equal(t, 30, run.Params.SlowPeriod)
}

func TestRunBacktestInvalidParams(t *testing.T) {
	backtests := &fakeBacktestService{err: domain.ErrInvalidParams}
	mux := newMux(t, &fakeMarketService{}, &fakeScanService{}, backtests)

	body := `{"symbol":"AAPL","fastPeriod":50,"slowPeriod":20,"initialCapital":10000}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/backtest", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunBacktestMissingSymbol(t *testing.T) {
	mux := newMux(t, &fakeMarketService{}, &fakeScanService{}, &fakeBacktestService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/backtest", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRunNotFound(t *testing.T) {
	backtests := &fakeBacktestService{err: domain.ErrNotFound}
	mux := newMux(t, &fakeMarketService{}, &fakeScanService{}, backtests)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/backtest/runs/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
