package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alanyoungcy/stocklens/internal/domain"
	"github.com/alanyoungcy/stocklens/internal/service"
)

// ScanService runs a scan pass over a symbol list.
type ScanService interface {
	Scan(ctx context.Context, symbols []string) (service.ScanResult, error)
}

// ScanHandler serves the scan board and watchlist CRUD.
type ScanHandler struct {
	scanner        ScanService
	watchlists     domain.WatchlistStore
	defaultSymbols []string
	logger         *slog.Logger
}

// NewScanHandler creates a ScanHandler. The watchlist store may be nil when
// persistence is not configured; named watchlist lookups then 404.
func NewScanHandler(scanner ScanService, watchlists domain.WatchlistStore, defaultSymbols []string, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		scanner:        scanner,
		watchlists:     watchlists,
		defaultSymbols: defaultSymbols,
		logger:         logger,
	}
}

// Scan runs a scan over an explicit symbol list, a named watchlist, or the
// configured default list, in that order of precedence.
// GET /api/scan?symbols=AAPL,MSFT or GET /api/scan?watchlist=tech
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.resolveSymbols(r)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "watchlist not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: resolve scan symbols failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to resolve symbols")
		return
	}

	result, err := h.scanner.Scan(r.Context(), symbols)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: scan failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ScanHandler) resolveSymbols(r *http.Request) ([]string, error) {
	q := r.URL.Query()

	if raw := q.Get("symbols"); raw != "" {
		var symbols []string
		for _, s := range strings.Split(raw, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				symbols = append(symbols, s)
			}
		}
		return symbols, nil
	}

	if name := q.Get("watchlist"); name != "" {
		if h.watchlists == nil {
			return nil, domain.ErrNotFound
		}
		wl, err := h.watchlists.GetByName(r.Context(), name)
		if err != nil {
			return nil, err
		}
		return wl.Symbols, nil
	}

	return h.defaultSymbols, nil
}

// ListWatchlists returns all saved watchlists.
// GET /api/watchlists
func (h *ScanHandler) ListWatchlists(w http.ResponseWriter, r *http.Request) {
	if h.watchlists == nil {
		writeJSON(w, http.StatusOK, map[string]any{"watchlists": []domain.Watchlist{}})
		return
	}

	lists, err := h.watchlists.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list watchlists failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list watchlists")
		return
	}
	if lists == nil {
		lists = []domain.Watchlist{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"watchlists": lists})
}

// GetWatchlist returns one watchlist by name.
// GET /api/watchlists/{name}
func (h *ScanHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing watchlist name")
		return
	}
	if h.watchlists == nil {
		writeError(w, http.StatusNotFound, "watchlist not found")
		return
	}

	wl, err := h.watchlists.GetByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "watchlist not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get watchlist failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get watchlist")
		return
	}

	writeJSON(w, http.StatusOK, wl)
}

// putWatchlistRequest is the body for watchlist upserts.
type putWatchlistRequest struct {
	Symbols []string `json:"symbols"`
}

// PutWatchlist creates or replaces a watchlist.
// PUT /api/watchlists/{name}
func (h *ScanHandler) PutWatchlist(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing watchlist name")
		return
	}
	if h.watchlists == nil {
		writeError(w, http.StatusServiceUnavailable, "watchlist storage not configured")
		return
	}

	var req putWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var symbols []string
	for _, s := range req.Symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "watchlist needs at least one symbol")
		return
	}

	wl, err := h.watchlists.Upsert(r.Context(), domain.Watchlist{Name: name, Symbols: symbols})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: upsert watchlist failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to save watchlist")
		return
	}

	writeJSON(w, http.StatusOK, wl)
}

// DeleteWatchlist removes a watchlist by name.
// DELETE /api/watchlists/{name}
func (h *ScanHandler) DeleteWatchlist(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing watchlist name")
		return
	}
	if h.watchlists == nil {
		writeError(w, http.StatusNotFound, "watchlist not found")
		return
	}

	if err := h.watchlists.Delete(r.Context(), name); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "watchlist not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: delete watchlist failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete watchlist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
