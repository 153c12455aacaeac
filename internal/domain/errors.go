package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidParams       = errors.New("invalid backtest parameters")
	ErrInsufficientHistory = errors.New("insufficient candle history")
	ErrRateLimited         = errors.New("rate limited")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUpstream            = errors.New("upstream provider failure")
	ErrLockHeld            = errors.New("lock already held")
	ErrContextDone         = errors.New("context cancelled")
)
