// Package strategy holds the signal generator, the trade simulator and the
// performance reporter, plus a Registry of named strategies and the
// Backtester that runs them against stored bars.
package strategy

import (
	"context"
	"fmt"
	"sort"

	"crossback/internal/domain"
)

// Strategy turns a bar series into fully-defined signal rows.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// Params returns the validated parameters the strategy was built with.
	Params() Params

	// Signals computes the signal table for bars. An empty result means the
	// series is too short.
	Signals(ctx context.Context, bars []domain.Bar) ([]domain.SignalRow, error)
}

// Factory builds a Strategy from parameters, validating them first.
type Factory func(p Params) (Strategy, error)

// Registry holds named strategy factories for lookup and enumeration.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name, replacing any previous one.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New builds the named strategy with p.
func (r *Registry) New(name string, p Params) (Strategy, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, &domain.ConfigurationError{Field: "strategy", Reason: fmt.Sprintf("%q is not registered", name)}
	}
	return f(p)
}

// List returns a sorted slice of all registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
