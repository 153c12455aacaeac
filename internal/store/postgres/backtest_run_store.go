package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// BacktestRunStore implements domain.BacktestRunStore using PostgreSQL.
// The simulation result (summary, equity curve, trade log) is stored as a
// single JSONB document; the parameters get their own columns so runs can be
// filtered without unpacking the blob.
type BacktestRunStore struct {
	pool *pgxpool.Pool
}

// NewBacktestRunStore creates a new BacktestRunStore backed by the given
// connection pool.
func NewBacktestRunStore(pool *pgxpool.Pool) *BacktestRunStore {
	return &BacktestRunStore{pool: pool}
}

const backtestRunSelectCols = `id, symbol, fast_period, slow_period,
	initial_capital, fee_bps, result, created_at`

func scanBacktestRun(row pgx.Row) (domain.BacktestRun, error) {
	var (
		run        domain.BacktestRun
		resultJSON []byte
	)
	if err := row.Scan(
		&run.ID, &run.Symbol,
		&run.Params.FastPeriod, &run.Params.SlowPeriod,
		&run.Params.InitialCapital, &run.Params.FeeBps,
		&resultJSON, &run.CreatedAt,
	); err != nil {
		return domain.BacktestRun{}, err
	}
	if err := json.Unmarshal(resultJSON, &run.Result); err != nil {
		return domain.BacktestRun{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return run, nil
}

func scanBacktestRunRows(rows pgx.Rows) ([]domain.BacktestRun, error) {
	var runs []domain.BacktestRun
	for rows.Next() {
		run, err := scanBacktestRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Insert stores a completed backtest run.
func (s *BacktestRunStore) Insert(ctx context.Context, run domain.BacktestRun) error {
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("postgres: marshal backtest result %s: %w", run.ID, err)
	}

	const query = `
		INSERT INTO backtest_runs (
			id, symbol, fast_period, slow_period,
			initial_capital, fee_bps, result, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := s.pool.Exec(ctx, query,
		run.ID, run.Symbol,
		run.Params.FastPeriod, run.Params.SlowPeriod,
		run.Params.InitialCapital, run.Params.FeeBps,
		resultJSON, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("postgres: insert backtest run %s: %w", run.ID, err)
	}
	return nil
}

// GetByID retrieves a single run by its UUID.
// It returns domain.ErrNotFound when no such run exists.
func (s *BacktestRunStore) GetByID(ctx context.Context, id string) (domain.BacktestRun, error) {
	query := fmt.Sprintf(`SELECT %s FROM backtest_runs WHERE id = $1`, backtestRunSelectCols)

	run, err := scanBacktestRun(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BacktestRun{}, domain.ErrNotFound
		}
		return domain.BacktestRun{}, fmt.Errorf("postgres: get backtest run %s: %w", id, err)
	}
	return run, nil
}

// ListBySymbol returns runs for one symbol, newest first.
func (s *BacktestRunStore) ListBySymbol(ctx context.Context, symbol string, opts domain.ListOpts) ([]domain.BacktestRun, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM backtest_runs
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, backtestRunSelectCols)

	rows, err := s.pool.Query(ctx, query, symbol, listLimit(opts), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list backtest runs for %s: %w", symbol, err)
	}
	defer rows.Close()

	runs, err := scanBacktestRunRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: list backtest runs for %s: %w", symbol, err)
	}
	return runs, nil
}

// ListRecent returns runs across all symbols, newest first.
func (s *BacktestRunStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.BacktestRun, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM backtest_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, backtestRunSelectCols)

	rows, err := s.pool.Query(ctx, query, listLimit(opts), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent backtest runs: %w", err)
	}
	defer rows.Close()

	runs, err := scanBacktestRunRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent backtest runs: %w", err)
	}
	return runs, nil
}

const defaultListLimit = 50

func listLimit(opts domain.ListOpts) int {
	if opts.Limit <= 0 {
		return defaultListLimit
	}
	return opts.Limit
}

// Compile-time interface check.
var _ domain.BacktestRunStore = (*BacktestRunStore)(nil)
