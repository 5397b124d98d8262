package strategy

import (
	"math"

	"crossback/internal/domain"
)

// Documented defaults: a 42/252 period dual SMA on 10,000 of capital.
const (
	DefaultFastWindow     = 42
	DefaultSlowWindow     = 252
	DefaultInitialCapital = 10000.0
)

// Params configures a dual moving-average backtest.
type Params struct {
	FastWindow     int     `json:"fast_window" yaml:"fast_window"`
	SlowWindow     int     `json:"slow_window" yaml:"slow_window"`
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
}

// DefaultParams returns the documented 42/252/10000 configuration.
func DefaultParams() Params {
	return Params{
		FastWindow:     DefaultFastWindow,
		SlowWindow:     DefaultSlowWindow,
		InitialCapital: DefaultInitialCapital,
	}
}

// Validate rejects non-positive windows, a fast window that is not shorter
// than the slow one, and non-positive or non-finite capital.
func (p Params) Validate() error {
	switch {
	case p.FastWindow <= 0:
		return &domain.ConfigurationError{Field: "fast_window", Reason: "must be positive"}
	case p.SlowWindow <= 0:
		return &domain.ConfigurationError{Field: "slow_window", Reason: "must be positive"}
	case p.FastWindow >= p.SlowWindow:
		return &domain.ConfigurationError{Field: "fast_window", Reason: "must be less than slow_window"}
	}
	return validateCapital(p.InitialCapital)
}

func validateCapital(c float64) error {
	if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
		return &domain.ConfigurationError{Field: "initial_capital", Reason: "must be a positive finite number"}
	}
	return nil
}
