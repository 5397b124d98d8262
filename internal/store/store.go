// Package store defines storage interfaces for persisting and retrieving
// price bars and backtest runs.
package store

import (
	"context"
	"errors"
	"time"

	"crossback/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars to storage, replacing any bar with
	// the same symbol and timestamp.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol within [start, end], sorted
	// by timestamp.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols available in storage.
	ListSymbols(ctx context.Context) ([]string, error)
}

// RunStore persists and retrieves backtest runs.
type RunStore interface {
	// SaveRun inserts a run with its trade log, assigning run.ID and
	// run.CreatedAt when they are unset.
	SaveRun(ctx context.Context, run *domain.Run) error

	// GetRun retrieves a single run, including its trades, by ID.
	GetRun(ctx context.Context, id string) (*domain.Run, error)

	// ListRuns returns the most recent runs, newest first, optionally
	// filtered by symbol. Trades are not loaded.
	ListRuns(ctx context.Context, symbol string, limit int) ([]domain.Run, error)
}
