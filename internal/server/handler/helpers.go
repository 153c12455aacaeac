// Package handler contains the HTTP handlers for the REST API. Handlers
// declare narrow local interfaces for the services they call so the package
// does not depend on the concrete service implementations.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// errorBody is the uniform error envelope every endpoint returns.
type errorBody struct {
	Error string `json:"error"`
}

// writeJSON marshals v and writes it with the given status. Marshal failures
// degrade to a bare 500 so the client always gets valid JSON.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends the uniform error envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeDomainError maps sentinel errors onto HTTP status codes and falls back
// to a 502 for upstream failures or a 500 otherwise.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidParams), errors.Is(err, domain.ErrInsufficientHistory):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "upstream rate limit")
	case errors.Is(err, domain.ErrUpstream):
		writeError(w, http.StatusBadGateway, "upstream provider failure")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// parseListOpts extracts pagination from the query string. limit defaults to
// 50 and is clamped to 500; offset defaults to 0.
func parseListOpts(r *http.Request) domain.ListOpts {
	q := r.URL.Query()

	limit := queryInt(q.Get("limit"), defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := queryInt(q.Get("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	return domain.ListOpts{Limit: limit, Offset: offset}
}

// queryInt parses a query parameter as an int, returning fallback for empty
// or malformed values.
func queryInt(v string, fallback int) int {
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// pathParam extracts a named path parameter from the request using Go 1.22+
// built-in routing (http.Request.PathValue).
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// symbolParam extracts and normalizes the {symbol} path parameter.
func symbolParam(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(pathParam(r, "symbol")))
}

// parseRange maps the ?range= query parameter onto a CandleRange, defaulting
// to six months. Unknown values fall back to the default rather than erroring
// so stale dashboard clients keep working.
func parseRange(r *http.Request) domain.CandleRange {
	switch domain.CandleRange(r.URL.Query().Get("range")) {
	case domain.Range3M:
		return domain.Range3M
	case domain.Range1Y:
		return domain.Range1Y
	case domain.Range2Y:
		return domain.Range2Y
	default:
		return domain.Range6M
	}
}
