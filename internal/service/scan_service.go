package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/stocklens/internal/domain"
	"github.com/alanyoungcy/stocklens/internal/engine"
)

// scanBusChannel is the Pub/Sub channel scan results are published on for the
// WebSocket hub.
const scanBusChannel = "scan.results"

// Alerter is the narrow notification surface the scanner needs. Satisfied by
// *notify.Notifier.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// ScanResult is one full pass over a watchlist: ranked metric rows plus the
// pairwise correlation matrix of the same symbols.
type ScanResult struct {
	Rows        []domain.ScanRow         `json:"rows"`
	Correlation domain.CorrelationMatrix `json:"correlation"`
}

// ScanService fans out metric computation across a symbol list, ranks the
// rows by signal score, and raises alerts for symbols whose score crosses the
// configured threshold.
type ScanService struct {
	market         *MarketService
	bus            domain.SignalBus
	alerter        Alerter
	alertThreshold int
	concurrency    int
	logger         *slog.Logger

	mu      sync.Mutex
	alerted map[string]bool // symbols already alerted this session
}

// NewScanService creates a ScanService. A concurrency of zero or less
// defaults to 4 parallel symbol fetches. An alertThreshold of zero or less
// disables alerting.
func NewScanService(
	market *MarketService,
	bus domain.SignalBus,
	alerter Alerter,
	alertThreshold int,
	concurrency int,
	logger *slog.Logger,
) *ScanService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &ScanService{
		market:         market,
		bus:            bus,
		alerter:        alerter,
		alertThreshold: alertThreshold,
		concurrency:    concurrency,
		logger:         logger,
		alerted:        make(map[string]bool),
	}
}

// Scan computes metric snapshots for every symbol concurrently, ranks them by
// signal score (descending, ties by symbol), and builds the correlation
// matrix from the same candle history. Symbols whose history cannot be
// fetched are logged and dropped rather than failing the whole board.
func (s *ScanService) Scan(ctx context.Context, symbols []string) (ScanResult, error) {
	if len(symbols) == 0 {
		return ScanResult{Rows: []domain.ScanRow{}, Correlation: domain.CorrelationMatrix{}}, nil
	}

	var (
		mu      sync.Mutex
		rows    []domain.ScanRow
		history = make(map[string][]domain.Candle, len(symbols))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, symbol := range symbols {
		g.Go(func() error {
			candles, err := s.market.Candles(gctx, symbol, domain.Range1Y)
			if err != nil {
				s.logger.WarnContext(gctx, "scan: symbol skipped",
					slog.String("symbol", symbol),
					slog.String("error", err.Error()),
				)
				return nil
			}

			snapshot := engine.DeriveMetrics(candles)

			mu.Lock()
			rows = append(rows, domain.ScanRow{Symbol: symbol, Metrics: snapshot})
			history[symbol] = candles
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ScanResult{}, fmt.Errorf("scan: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Metrics.SignalScore != rows[j].Metrics.SignalScore {
			return rows[i].Metrics.SignalScore > rows[j].Metrics.SignalScore
		}
		return rows[i].Symbol < rows[j].Symbol
	})

	result := ScanResult{
		Rows:        rows,
		Correlation: engine.BuildCorrelationMatrix(history),
	}
	if result.Rows == nil {
		result.Rows = []domain.ScanRow{}
	}

	s.publish(ctx, result)
	s.alert(ctx, rows)

	return result, nil
}

// publish pushes the scan result onto the signal bus. Failures are logged,
// not returned: the HTTP response does not depend on the fan-out.
func (s *ScanService) publish(ctx context.Context, result ScanResult) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.ErrorContext(ctx, "scan: marshal result", slog.String("error", err.Error()))
		return
	}
	if err := s.bus.Publish(ctx, scanBusChannel, payload); err != nil {
		s.logger.WarnContext(ctx, "scan: publish failed", slog.String("error", err.Error()))
	}
}

// alert notifies once per symbol per session when the signal score crosses
// the threshold. The per-session dedupe keeps repeated scans from spamming
// the operator channels.
func (s *ScanService) alert(ctx context.Context, rows []domain.ScanRow) {
	if s.alerter == nil || s.alertThreshold <= 0 {
		return
	}

	for _, row := range rows {
		if row.Metrics.SignalScore < s.alertThreshold {
			continue
		}

		s.mu.Lock()
		seen := s.alerted[row.Symbol]
		if !seen {
			s.alerted[row.Symbol] = true
		}
		s.mu.Unlock()
		if seen {
			continue
		}

		title := fmt.Sprintf("Strong signal: %s (%d)", row.Symbol, row.Metrics.SignalScore)
		message := fmt.Sprintf("%s scored %d (%s / %s). Flags: %s",
			row.Symbol,
			row.Metrics.SignalScore,
			row.Metrics.Trend,
			row.Metrics.Momentum,
			strings.Join(row.Metrics.SignalFlags, "; "),
		)
		if err := s.alerter.Notify(ctx, "signal.strong", title, message); err != nil {
			s.logger.WarnContext(ctx, "scan: alert failed",
				slog.String("symbol", row.Symbol),
				slog.String("error", err.Error()),
			)
		}
	}
}
