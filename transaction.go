package fintrack

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxKind is the type of a ledger event.
type TxKind string

const (
	Buy         TxKind = "buy"
	Sell        TxKind = "sell"
	TransferIn  TxKind = "transfer-in"
	TransferOut TxKind = "transfer-out"
	Income      TxKind = "income"
)

// ParseTxKind returns the TxKind named s.
func ParseTxKind(s string) (TxKind, error) {
	k := TxKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Buy, Sell, TransferIn, TransferOut, Income:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown transaction kind %q", ErrInvalid, s)
}

// Transaction is a single event on one asset. Price is per unit, in the
// asset's home currency.
type Transaction struct {
	ID       string          `json:"id"`
	AssetID  string          `json:"asset"`
	Kind     TxKind          `json:"kind"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fees     decimal.Decimal `json:"fees"`
	Time     time.Time       `json:"time"`
	Note     string          `json:"note,omitempty"`
}

// NewTransaction returns a Transaction with a fresh id and no fees.
func NewTransaction(assetID string, kind TxKind, quantity, price decimal.Decimal, when time.Time) Transaction {
	return Transaction{
		ID:       uuid.NewString(),
		AssetID:  assetID,
		Kind:     kind,
		Quantity: quantity,
		Price:    price,
		Time:     when,
	}
}
