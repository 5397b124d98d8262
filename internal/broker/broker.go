// Package broker defines the Broker interface and provides implementations
// for querying account funding state. Order placement is out of scope.
package broker

import (
	"context"

	"crossback/internal/domain"
)

// Broker abstracts brokerage account queries.
type Broker interface {
	// Name returns the broker identifier (e.g. "alpaca", "simulator").
	Name() string

	// GetAccount returns a snapshot of the account's financial metrics.
	GetAccount(ctx context.Context) (*domain.AccountInfo, error)
}
