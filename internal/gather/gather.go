// Package gather defines the bar-series sources that feed backtests and the
// gatherers that cache their output.
package gather

import (
	"context"
	"time"

	"crossback/internal/domain"
)

// Gatherer is the interface for all data gathering processes.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run performs the gathering job. It returns early if ctx is cancelled.
	Run(ctx context.Context) error
}

// Source supplies historical bars. Implementations return bars in strictly
// increasing timestamp order with no duplicates.
type Source interface {
	FetchBars(ctx context.Context, symbol, timeframe string, r DateRange) ([]domain.Bar, error)
}

// DateRange represents a time range for data fetching.
type DateRange struct {
	Start time.Time
	End   time.Time
}
