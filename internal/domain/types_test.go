package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTypesExist(t *testing.T) {
	// Verify Bar can be instantiated with zero values.
	bar := Bar{}
	if bar.Symbol != "" {
		t.Error("expected empty Symbol for zero-value Bar")
	}
	if !bar.Timestamp.IsZero() {
		t.Error("expected zero Timestamp for zero-value Bar")
	}
	if bar.Open != 0 || bar.High != 0 || bar.Low != 0 || bar.Close != 0 {
		t.Error("expected zero OHLC values for zero-value Bar")
	}

	// Verify enum constants are defined correctly.
	if TradeSideBuy != "buy" || TradeSideSell != "sell" {
		t.Errorf("TradeSide constants = %q/%q, want buy/sell", TradeSideBuy, TradeSideSell)
	}
	if PositionLong != 1 || PositionShort != -1 {
		t.Error("Position constants have unexpected values")
	}
	if PositionLong.String() != "long" || PositionShort.String() != "short" {
		t.Error("Position.String returned unexpected values")
	}
}

func TestSimulationStateFlags(t *testing.T) {
	flat := SimulationState{Capital: 10000}
	if !flat.Flat() || flat.Holding() {
		t.Errorf("state %+v: want flat", flat)
	}

	holding := SimulationState{Units: 2.5}
	if holding.Flat() || !holding.Holding() {
		t.Errorf("state %+v: want holding", holding)
	}
}

func TestResultSummary(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := Result{
		Trades: []TradeEvent{
			{Timestamp: ts, Side: TradeSideBuy, Price: 50},
			{Timestamp: ts.Add(time.Minute), Side: TradeSideSell, Price: 80},
			{Timestamp: ts.Add(2 * time.Minute), Side: TradeSideBuy, Price: 90},
			{Timestamp: ts.Add(3 * time.Minute), Side: TradeSideSell, Price: 70},
			{Timestamp: ts.Add(4 * time.Minute), Side: TradeSideBuy, Price: 60},
		},
		FinalState: SimulationState{Units: 3},
	}

	s := r.Summary()
	if s.Buys != 3 || s.Sells != 2 || s.RoundTrips != 2 {
		t.Fatalf("Summary counts = %+v", s)
	}
	if s.Winners != 1 || s.WinRate != 0.5 {
		t.Errorf("Winners/WinRate = %d/%v, want 1/0.5", s.Winners, s.WinRate)
	}
	if !s.OpenAtEnd {
		t.Error("OpenAtEnd = false, want true")
	}
}

func TestErrorKinds(t *testing.T) {
	var err error = fmt.Errorf("running: %w", &InsufficientDataError{Bars: 10, Required: 252})
	if !errors.Is(err, ErrInsufficientData) {
		t.Error("wrapped InsufficientDataError should match ErrInsufficientData")
	}
	if errors.Is(err, ErrInvalidConfig) {
		t.Error("InsufficientDataError must not match ErrInvalidConfig")
	}
	var ide *InsufficientDataError
	if !errors.As(err, &ide) || ide.Required != 252 {
		t.Errorf("errors.As InsufficientDataError = %+v", ide)
	}

	err = &ConfigurationError{Field: "fast_window", Reason: "must be less than slow_window"}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("ConfigurationError should match ErrInvalidConfig")
	}
	if got := err.Error(); got != "invalid configuration: fast_window must be less than slow_window" {
		t.Errorf("Error() = %q", got)
	}
}
