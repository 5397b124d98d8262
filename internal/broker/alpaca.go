package broker

import (
	"context"
	"fmt"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"

	"crossback/internal/domain"
)

// Compile-time interface check.
var _ Broker = (*AlpacaBroker)(nil)

type accountClient interface {
	GetAccount() (*alpaca.Account, error)
}

// AlpacaBroker implements the Broker interface using the Alpaca trading API.
type AlpacaBroker struct {
	client accountClient
}

// NewAlpacaBroker creates a new AlpacaBroker configured with the given
// credentials and API endpoint.
func NewAlpacaBroker(apiKey, apiSecret, baseURL string) *AlpacaBroker {
	return &AlpacaBroker{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
	}
}

// Name returns "alpaca".
func (b *AlpacaBroker) Name() string {
	return "alpaca"
}

// GetAccount returns the current account information from the Alpaca API.
func (b *AlpacaBroker) GetAccount(ctx context.Context) (*domain.AccountInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acct, err := b.client.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return &domain.AccountInfo{
		ID:             acct.ID,
		Status:         string(acct.Status),
		Currency:       acct.Currency,
		Cash:           acct.Cash,
		Equity:         acct.Equity,
		BuyingPower:    acct.BuyingPower,
		TradingBlocked: acct.TradingBlocked,
	}, nil
}
