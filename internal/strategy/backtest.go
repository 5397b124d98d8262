package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crossback/internal/domain"
	"crossback/internal/store"
)

// Backtest is the full output of one run: the signal table the simulator saw
// and the Result it produced.
type Backtest struct {
	Strategy string
	Symbol   string
	Params   Params
	Rows     []domain.SignalRow
	Result   domain.Result
}

// Backtester replays historical bar data through a strategy and reports its
// return.
type Backtester struct {
	store    store.BarStore
	registry *Registry
	log      *slog.Logger
}

// NewBacktester creates a Backtester that reads bars from the given store and
// looks up strategies in the provided registry. barStore may be nil when only
// RunBars is used.
func NewBacktester(barStore store.BarStore, registry *Registry) *Backtester {
	return &Backtester{
		store:    barStore,
		registry: registry,
		log:      slog.Default().With("component", "backtester"),
	}
}

// Run loads bars for symbol within [start, end] from the store and backtests
// the named strategy over them.
func (bt *Backtester) Run(ctx context.Context, name, symbol string, start, end time.Time, p Params) (*Backtest, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if bt.store == nil {
		return nil, fmt.Errorf("backtester has no bar store")
	}

	bars, err := bt.store.ReadBars(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("reading bars for %s: %w", symbol, err)
	}
	return bt.RunBars(ctx, name, symbol, bars, p)
}

// RunBars backtests the named strategy over bars already in memory.
func (bt *Backtester) RunBars(ctx context.Context, name, symbol string, bars []domain.Bar, p Params) (*Backtest, error) {
	s, err := bt.registry.New(name, p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := bt.log.With("strategy", name, "symbol", symbol)
	if len(bars) < p.SlowWindow {
		log.Warn("insufficient data", "bars", len(bars), "required", p.SlowWindow)
		return nil, &domain.InsufficientDataError{Bars: len(bars), Required: p.SlowWindow}
	}

	log.Info("backtest starting",
		"bars", len(bars),
		"from", bars[0].Timestamp,
		"to", bars[len(bars)-1].Timestamp,
		"fast", p.FastWindow,
		"slow", p.SlowWindow,
	)

	rows, err := s.Signals(ctx, bars)
	if err != nil {
		return nil, fmt.Errorf("computing signals: %w", err)
	}

	result, err := Simulate(rows, p.InitialCapital)
	if err != nil {
		return nil, err
	}

	for _, t := range result.Trades {
		log.Debug("trade", "side", t.Side, "at", t.Timestamp, "price", t.Price)
	}
	log.Info("backtest complete",
		"rows", result.Rows,
		"trades", len(result.Trades),
		"returnPct", fmt.Sprintf("%.2f", result.TotalReturnPct),
	)

	return &Backtest{
		Strategy: name,
		Symbol:   symbol,
		Params:   p,
		Rows:     rows,
		Result:   result,
	}, nil
}
