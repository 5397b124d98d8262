// Package domain defines the core value types shared across crossback:
// price bars, derived signal rows, trade events, simulation state and
// backtest results.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is a single time-stamped OHLCV observation. Only Close feeds the
// crossover engine; the remaining fields are carried through from the data
// source so cached bars stay complete.
type Bar struct {
	Symbol     string
	Timestamp  time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	TradeCount int64
	VWAP       float64
}

// Position is the discrete market stance derived from the two averages.
type Position int

const (
	// PositionShort means the fast average is not above the slow average.
	// The simulator never sells short; it treats this as "be flat".
	PositionShort Position = -1
	// PositionLong means the fast average is strictly above the slow average.
	PositionLong Position = 1
)

func (p Position) String() string {
	if p == PositionLong {
		return "long"
	}
	return "short"
}

// SignalRow is one fully-defined row of the signal table: both rolling
// averages exist for it.
type SignalRow struct {
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
	FastAvg   float64   `json:"fast_avg"`
	SlowAvg   float64   `json:"slow_avg"`
	Position  Position  `json:"position"`
}

// TradeSide identifies the direction of a TradeEvent.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// TradeEvent records a single all-in or all-out transition.
type TradeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Side      TradeSide `json:"side"`
	Price     float64   `json:"price"`
}

// SimulationState is the mutable accumulator of a single simulation walk.
// At most one of Capital and Units is non-zero.
type SimulationState struct {
	Capital float64 `json:"capital"`
	Units   float64 `json:"units"`
}

// Holding reports whether the state carries an open position.
func (s SimulationState) Holding() bool { return s.Units > 0 }

// Flat reports whether the state is fully in cash.
func (s SimulationState) Flat() bool { return s.Units == 0 }

// Result is the read-only outcome of one backtest.
type Result struct {
	TotalReturnPct float64         `json:"total_return_pct"`
	Trades         []TradeEvent    `json:"trades"`
	InitialCapital float64         `json:"initial_capital"`
	FinalValue     float64         `json:"final_value"`
	FinalState     SimulationState `json:"final_state"`
	LastClose      float64         `json:"last_close"`
	Rows           int             `json:"rows"`
}

// Summary aggregates the trade log of a Result.
type Summary struct {
	Buys       int     `json:"buys"`
	Sells      int     `json:"sells"`
	RoundTrips int     `json:"round_trips"`
	Winners    int     `json:"winners"`
	WinRate    float64 `json:"win_rate"`
	OpenAtEnd  bool    `json:"open_at_end"`
}

// Summary pairs each buy with the following sell and counts closed round
// trips that exited above their entry price.
func (r Result) Summary() Summary {
	var s Summary
	var entry float64
	for _, t := range r.Trades {
		switch t.Side {
		case TradeSideBuy:
			s.Buys++
			entry = t.Price
		case TradeSideSell:
			s.Sells++
			s.RoundTrips++
			if t.Price > entry {
				s.Winners++
			}
		}
	}
	if s.RoundTrips > 0 {
		s.WinRate = float64(s.Winners) / float64(s.RoundTrips)
	}
	s.OpenAtEnd = r.FinalState.Holding()
	return s
}

// AccountInfo is a snapshot of a brokerage account's funding state.
type AccountInfo struct {
	ID             string          `json:"id"`
	Status         string          `json:"status"`
	Currency       string          `json:"currency"`
	Cash           decimal.Decimal `json:"cash"`
	Equity         decimal.Decimal `json:"equity"`
	BuyingPower    decimal.Decimal `json:"buying_power"`
	TradingBlocked bool            `json:"trading_blocked"`
}

// Run is a persisted backtest: its inputs plus the Result.
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
