package broker

import (
	"context"

	"github.com/shopspring/decimal"

	"crossback/internal/domain"
)

// Compile-time interface check.
var _ Broker = (*SimulatorBroker)(nil)

// SimulatorBroker reports a paper account funded with a fixed amount of
// cash. It stands in for a real brokerage when no credentials are configured.
type SimulatorBroker struct {
	cash decimal.Decimal
}

// NewSimulatorBroker creates a SimulatorBroker holding cash.
func NewSimulatorBroker(cash float64) *SimulatorBroker {
	return &SimulatorBroker{cash: decimal.NewFromFloat(cash)}
}

// Name returns "simulator".
func (b *SimulatorBroker) Name() string {
	return "simulator"
}

// GetAccount returns an all-cash account whose buying power equals its cash.
func (b *SimulatorBroker) GetAccount(_ context.Context) (*domain.AccountInfo, error) {
	return &domain.AccountInfo{
		ID:          "SIM",
		Status:      "ACTIVE",
		Currency:    "USD",
		Cash:        b.cash,
		Equity:      b.cash,
		BuyingPower: b.cash,
	}, nil
}
