package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/stocklens/internal/domain"
	"github.com/alanyoungcy/stocklens/internal/engine"
)

// BacktestService validates parameters, runs the crossover simulation over
// two years of daily history, and persists the finished run. Archival to blob
// storage is best-effort; a failed upload never fails the run.
type BacktestService struct {
	market   *MarketService
	runs     domain.BacktestRunStore
	archiver domain.Archiver
	limits   BacktestLimits
	logger   *slog.Logger
}

// BacktestLimits caps the parameter space a request may ask for. Zero values
// leave the corresponding dimension uncapped.
type BacktestLimits struct {
	MaxSlowPeriod int
	MaxFeeBps     float64
}

// NewBacktestService creates a BacktestService. The archiver may be nil when
// blob storage is not configured.
func NewBacktestService(
	market *MarketService,
	runs domain.BacktestRunStore,
	archiver domain.Archiver,
	logger *slog.Logger,
) *BacktestService {
	return &BacktestService{
		market:   market,
		runs:     runs,
		archiver: archiver,
		logger:   logger,
	}
}

// WithLimits sets request parameter caps and returns the service for
// chaining.
func (s *BacktestService) WithLimits(limits BacktestLimits) *BacktestService {
	s.limits = limits
	return s
}

func (s *BacktestService) checkLimits(params domain.BacktestParams) error {
	if s.limits.MaxSlowPeriod > 0 && params.SlowPeriod > s.limits.MaxSlowPeriod {
		return fmt.Errorf("%w: slow period %d exceeds maximum %d",
			domain.ErrInvalidParams, params.SlowPeriod, s.limits.MaxSlowPeriod)
	}
	if s.limits.MaxFeeBps > 0 && params.FeeBps > s.limits.MaxFeeBps {
		return fmt.Errorf("%w: fee %.1f bps exceeds maximum %.1f",
			domain.ErrInvalidParams, params.FeeBps, s.limits.MaxFeeBps)
	}
	return nil
}

// Run executes one simulation and stores the result. Parameter and history
// validation errors come back wrapped in domain.ErrInvalidParams or
// domain.ErrInsufficientHistory so the HTTP layer can map them to 400s.
func (s *BacktestService) Run(ctx context.Context, symbol string, params domain.BacktestParams) (domain.BacktestRun, error) {
	if err := s.checkLimits(params); err != nil {
		return domain.BacktestRun{}, fmt.Errorf("backtest_service: run %s: %w", symbol, err)
	}

	candles, err := s.market.Candles(ctx, symbol, domain.Range2Y)
	if err != nil {
		return domain.BacktestRun{}, fmt.Errorf("backtest_service: run %s: %w", symbol, err)
	}

	result, err := engine.RunBacktest(candles, params)
	if err != nil {
		return domain.BacktestRun{}, fmt.Errorf("backtest_service: run %s: %w", symbol, err)
	}

	run := domain.BacktestRun{
		ID:        uuid.New().String(),
		Symbol:    symbol,
		Params:    params,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}

	if s.runs != nil {
		if err := s.runs.Insert(ctx, run); err != nil {
			return domain.BacktestRun{}, fmt.Errorf("backtest_service: persist run %s: %w", run.ID, err)
		}
	}

	if s.archiver != nil {
		if path, archErr := s.archiver.ArchiveRun(ctx, run); archErr != nil {
			s.logger.WarnContext(ctx, "backtest_service: archive failed",
				slog.String("run_id", run.ID),
				slog.String("error", archErr.Error()),
			)
		} else {
			s.logger.InfoContext(ctx, "backtest_service: run archived",
				slog.String("run_id", run.ID),
				slog.String("path", path),
			)
		}
	}

	return run, nil
}

// GetRun retrieves one stored run by ID.
func (s *BacktestService) GetRun(ctx context.Context, id string) (domain.BacktestRun, error) {
	if s.runs == nil {
		return domain.BacktestRun{}, domain.ErrNotFound
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return domain.BacktestRun{}, fmt.Errorf("backtest_service: get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns stored runs, optionally filtered to one symbol, newest
// first.
func (s *BacktestService) ListRuns(ctx context.Context, symbol string, opts domain.ListOpts) ([]domain.BacktestRun, error) {
	if s.runs == nil {
		return nil, nil
	}

	var (
		runs []domain.BacktestRun
		err  error
	)
	if symbol != "" {
		runs, err = s.runs.ListBySymbol(ctx, symbol, opts)
	} else {
		runs, err = s.runs.ListRecent(ctx, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("backtest_service: list runs: %w", err)
	}
	return runs, nil
}
