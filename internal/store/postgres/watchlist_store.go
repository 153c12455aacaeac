package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// WatchlistStore implements domain.WatchlistStore using PostgreSQL.
type WatchlistStore struct {
	pool *pgxpool.Pool
}

// NewWatchlistStore creates a new WatchlistStore backed by the given
// connection pool.
func NewWatchlistStore(pool *pgxpool.Pool) *WatchlistStore {
	return &WatchlistStore{pool: pool}
}

const watchlistSelectCols = `id, name, symbols, created_at, updated_at`

func scanWatchlist(row pgx.Row) (domain.Watchlist, error) {
	var wl domain.Watchlist
	if err := row.Scan(&wl.ID, &wl.Name, &wl.Symbols, &wl.CreatedAt, &wl.UpdatedAt); err != nil {
		return domain.Watchlist{}, err
	}
	return wl, nil
}

// Upsert creates a watchlist or replaces the symbol list of an existing one
// with the same name. It returns the stored row.
func (s *WatchlistStore) Upsert(ctx context.Context, wl domain.Watchlist) (domain.Watchlist, error) {
	query := fmt.Sprintf(`
		INSERT INTO watchlists (name, symbols)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
			SET symbols = EXCLUDED.symbols, updated_at = NOW()
		RETURNING %s`, watchlistSelectCols)

	stored, err := scanWatchlist(s.pool.QueryRow(ctx, query, wl.Name, wl.Symbols))
	if err != nil {
		return domain.Watchlist{}, fmt.Errorf("postgres: upsert watchlist %s: %w", wl.Name, err)
	}
	return stored, nil
}

// GetByName retrieves a watchlist by its unique name.
// It returns domain.ErrNotFound when no such watchlist exists.
func (s *WatchlistStore) GetByName(ctx context.Context, name string) (domain.Watchlist, error) {
	query := fmt.Sprintf(`SELECT %s FROM watchlists WHERE name = $1`, watchlistSelectCols)

	wl, err := scanWatchlist(s.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Watchlist{}, domain.ErrNotFound
		}
		return domain.Watchlist{}, fmt.Errorf("postgres: get watchlist %s: %w", name, err)
	}
	return wl, nil
}

// List returns all watchlists ordered by name.
func (s *WatchlistStore) List(ctx context.Context) ([]domain.Watchlist, error) {
	query := fmt.Sprintf(`SELECT %s FROM watchlists ORDER BY name`, watchlistSelectCols)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list watchlists: %w", err)
	}
	defer rows.Close()

	var lists []domain.Watchlist
	for rows.Next() {
		wl, err := scanWatchlist(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: list watchlists: %w", err)
		}
		lists = append(lists, wl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list watchlists: %w", err)
	}
	return lists, nil
}

// Delete removes a watchlist by name.
// It returns domain.ErrNotFound when no row was deleted.
func (s *WatchlistStore) Delete(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM watchlists WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("postgres: delete watchlist %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Compile-time interface check.
var _ domain.WatchlistStore = (*WatchlistStore)(nil)
