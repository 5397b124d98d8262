// Package builtins provides built-in strategy implementations that ship with
// crossback.
package builtins

import (
	"context"

	"crossback/internal/domain"
	"crossback/internal/strategy"
)

// SMACrossName is the registry key of the dual SMA crossover strategy.
const SMACrossName = "sma-cross"

// Compile-time interface check.
var _ strategy.Strategy = (*SMACross)(nil)

// SMACross implements a dual simple moving average crossover strategy. A row
// is long while the fast SMA is strictly above the slow SMA.
type SMACross struct {
	params strategy.Params
}

// NewSMACross creates a new SMACross strategy after validating p.
func NewSMACross(p strategy.Params) (*SMACross, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &SMACross{params: p}, nil
}

// Register adds every builtin strategy to r.
func Register(r *strategy.Registry) {
	r.Register(SMACrossName, func(p strategy.Params) (strategy.Strategy, error) {
		return NewSMACross(p)
	})
}

// Name returns "sma-cross".
func (s *SMACross) Name() string {
	return SMACrossName
}

// Params returns the windows and capital the strategy was built with.
func (s *SMACross) Params() strategy.Params {
	return s.params
}

// Signals computes both SMAs over bar closes.
func (s *SMACross) Signals(ctx context.Context, bars []domain.Bar) ([]domain.SignalRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return strategy.Generate(bars, s.params.FastWindow, s.params.SlowWindow), nil
}
