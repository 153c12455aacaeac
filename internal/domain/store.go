package domain

import "context"

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// BacktestRunStore persists completed simulation runs.
type BacktestRunStore interface {
	Insert(ctx context.Context, run BacktestRun) error
	GetByID(ctx context.Context, id string) (BacktestRun, error)
	ListBySymbol(ctx context.Context, symbol string, opts ListOpts) ([]BacktestRun, error)
	ListRecent(ctx context.Context, opts ListOpts) ([]BacktestRun, error)
}

// WatchlistStore persists the named symbol lists driving the scan board.
type WatchlistStore interface {
	Upsert(ctx context.Context, wl Watchlist) (Watchlist, error)
	GetByName(ctx context.Context, name string) (Watchlist, error)
	List(ctx context.Context) ([]Watchlist, error)
	Delete(ctx context.Context, name string) error
}
