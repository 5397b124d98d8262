package crossback

import (
	"fmt"
	"time"
)

// BacktestRequest selects the series and parameters of a server-side
// backtest. Zero-valued fields use the server's defaults.
type BacktestRequest struct {
	Strategy       string  `json:"strategy,omitempty"`
	Symbol         string  `json:"symbol,omitempty"`
	Start          string  `json:"start,omitempty"`
	End            string  `json:"end,omitempty"`
	FastWindow     int     `json:"fast_window,omitempty"`
	SlowWindow     int     `json:"slow_window,omitempty"`
	InitialCapital float64 `json:"initial_capital,omitempty"`
	IncludeRows    bool    `json:"include_rows,omitempty"`
}

// Trade is one simulated buy or sell.
type Trade struct {
	Timestamp time.Time `json:"timestamp"`
	Side      string    `json:"side"`
	Price     float64   `json:"price"`
}

// SignalRow is one row of the signal table.
type SignalRow struct {
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
	FastAvg   float64   `json:"fast_avg"`
	SlowAvg   float64   `json:"slow_avg"`
	Position  int       `json:"position"`
}

// Result is the outcome of a simulation.
type Result struct {
	TotalReturnPct float64 `json:"total_return_pct"`
	Trades         []Trade `json:"trades"`
	InitialCapital float64 `json:"initial_capital"`
	FinalValue     float64 `json:"final_value"`
	LastClose      float64 `json:"last_close"`
	Rows           int     `json:"rows"`
}

// Summary aggregates a run's trade log.
type Summary struct {
	Buys       int     `json:"buys"`
	Sells      int     `json:"sells"`
	RoundTrips int     `json:"round_trips"`
	Winners    int     `json:"winners"`
	WinRate    float64 `json:"win_rate"`
	OpenAtEnd  bool    `json:"open_at_end"`
}

// Run is a persisted backtest.
type Run struct {
	ID         string    `json:"id"`
	Strategy   string    `json:"strategy"`
	Symbol     string    `json:"symbol"`
	Timeframe  string    `json:"timeframe"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	FastWindow int       `json:"fast_window"`
	SlowWindow int       `json:"slow_window"`
	CreatedAt  time.Time `json:"created_at"`
	Result     Result    `json:"result"`
}

// RunDetail is a run together with its summary and, when requested, the
// signal table it was computed from.
type RunDetail struct {
	Run     Run         `json:"run"`
	Summary Summary     `json:"summary"`
	Rows    []SignalRow `json:"rows,omitempty"`
}

// Account reports brokerage balances. Amounts are decimal strings.
type Account struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Currency       string `json:"currency"`
	Cash           string `json:"cash"`
	Equity         string `json:"equity"`
	BuyingPower    string `json:"buying_power"`
	TradingBlocked bool   `json:"trading_blocked"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crossback api: %d %s", e.StatusCode, e.Message)
}
