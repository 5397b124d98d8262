package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData is matched by every *InsufficientDataError.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidConfig is matched by every *ConfigurationError.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConfigurationError reports a parameter that fails validation before any
// computation starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrInvalidConfig }

// InsufficientDataError reports that a series was too short to produce a
// single fully-defined signal row. It is distinct from a breakeven result.
type InsufficientDataError struct {
	Bars     int
	Required int
}

func (e *InsufficientDataError) Error() string {
	if e.Required > 0 {
		return fmt.Sprintf("insufficient data: have %d bars, need at least %d", e.Bars, e.Required)
	}
	return "insufficient data: no signal rows to simulate"
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }
