package httpapi

import (
	"crossback/internal/domain"
)

// BacktestRequest is the body of POST /api/backtests. Zero-valued fields
// fall back to the server's configured defaults.
type BacktestRequest struct {
	Strategy       string  `json:"strategy,omitempty"`
	Symbol         string  `json:"symbol,omitempty"`
	Start          string  `json:"start,omitempty"`
	End            string  `json:"end,omitempty"`
	FastWindow     int     `json:"fast_window,omitempty"`
	SlowWindow     int     `json:"slow_window,omitempty"`
	InitialCapital float64 `json:"initial_capital,omitempty"`

	// IncludeRows asks for the full signal table in the response.
	IncludeRows bool `json:"include_rows,omitempty"`
}

// RunResponse wraps a stored run with its trade summary.
type RunResponse struct {
	Run     domain.Run         `json:"run"`
	Summary domain.Summary     `json:"summary"`
	Rows    []domain.SignalRow `json:"rows,omitempty"`
}

// RunsResponse is the body of GET /api/runs.
type RunsResponse struct {
	Runs []domain.Run `json:"runs"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status     string   `json:"status"`
	Timeframe  string   `json:"timeframe"`
	Strategies []string `json:"strategies"`
	Broker     string   `json:"broker"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
