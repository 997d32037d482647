package fintrack

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a normalized price observation returned by a PriceSource.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Currency  Currency        `json:"currency"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// PriceSource fetches the latest price of an asset.
type PriceSource interface {
	FetchQuote(ctx context.Context, asset Asset) (Quote, error)
}

// RateSource fetches the latest cross-rate of a single currency pair.
type RateSource interface {
	FetchRate(ctx context.Context) (FXRate, error)
}

// FixedDeposit prices fixed deposits. A deposit is counted in units of its
// currency, so its price is always one.
type FixedDeposit struct{}

func (FixedDeposit) FetchQuote(_ context.Context, asset Asset) (Quote, error) {
	return Quote{
		Symbol:    asset.Symbol,
		Price:     decimal.NewFromInt(1),
		Currency:  asset.Currency,
		UpdatedAt: time.Now(),
	}, nil
}
