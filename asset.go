package fintrack

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	TRY Currency = "TRY"
	USD Currency = "USD"
)

// ParseCurrency normalizes code to upper case and checks it is a known currency.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if err := ValidateCurrency(c); err != nil {
		return "", err
	}
	return c, nil
}

// Kind is the instrument family of an asset. It selects the price source.
type Kind string

const (
	KindIndexEquity   Kind = "index-equity"
	KindForeignEquity Kind = "foreign-equity"
	KindPreciousMetal Kind = "precious-metal"
	KindFund          Kind = "fund"
	KindFixedDeposit  Kind = "fixed-deposit"
	KindCrypto        Kind = "crypto"
)

// Kinds returns every kind, in display order.
func Kinds() []Kind {
	return []Kind{KindIndexEquity, KindForeignEquity, KindPreciousMetal, KindFund, KindFixedDeposit, KindCrypto}
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown asset kind %q", ErrInvalid, s)
}

// Title is the human label of the kind.
func (k Kind) Title() string {
	switch k {
	case KindIndexEquity:
		return "BIST 100"
	case KindForeignEquity:
		return "US Stocks"
	case KindPreciousMetal:
		return "Precious Metals"
	case KindFund:
		return "Funds"
	case KindFixedDeposit:
		return "Fixed Deposit"
	case KindCrypto:
		return "Crypto"
	}
	return string(k)
}

// DefaultCurrency is the currency an asset of this kind is usually quoted in.
func (k Kind) DefaultCurrency() Currency {
	switch k {
	case KindForeignEquity, KindPreciousMetal, KindCrypto:
		return USD
	}
	return TRY
}

// Asset is a tracked instrument.
type Asset struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
	Kind   Kind   `json:"kind"`
	// Currency is the asset's home currency, the one its quotes and
	// transaction prices are expressed in.
	Currency Currency `json:"currency"`
	// ProviderSymbol overrides Symbol when querying a price source.
	ProviderSymbol string `json:"providerSymbol,omitempty"`
	// ProviderHint is a source specific qualifier, the exchange code for equities.
	ProviderHint string `json:"providerHint,omitempty"`
	// LastQuote is the cached result of the last successful fetch.
	LastQuote *Quote `json:"lastQuote,omitempty"`
}

// NewAsset returns an Asset with a fresh id. An empty currency defaults to the kind's.
func NewAsset(symbol, name string, kind Kind, currency Currency) Asset {
	if currency == "" {
		currency = kind.DefaultCurrency()
	}
	return Asset{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		Name:     name,
		Kind:     kind,
		Currency: currency,
	}
}

// SourceSymbol is the symbol sent to price sources.
func (a Asset) SourceSymbol() string {
	if s := strings.TrimSpace(a.ProviderSymbol); s != "" {
		return s
	}
	return strings.TrimSpace(a.Symbol)
}

// Label is the display name, falling back to the symbol.
func (a Asset) Label() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Symbol
}
