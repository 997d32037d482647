package fintrack

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Holding is an asset with its position and cached quote.
type Holding struct {
	AssetID     string          `json:"assetId"`
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name,omitempty"`
	Kind        Kind            `json:"kind"`
	Currency    Currency        `json:"currency"`
	Quantity    decimal.Decimal `json:"quantity"`
	CostBasis   decimal.Decimal `json:"costBasis"`
	AverageCost decimal.Decimal `json:"averageCost"`
	LastQuote   *Quote          `json:"lastQuote,omitempty"`
}

// Held reports whether the holding has a positive quantity.
func (h Holding) Held() bool { return h.Quantity.IsPositive() }

// NewHolding builds the holding of asset from its transactions, in any order.
func NewHolding(asset Asset, txs []Transaction) Holding {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b Transaction) int { return a.Time.Compare(b.Time) })
	pos := ComputePosition(sorted)
	return Holding{
		AssetID:     asset.ID,
		Symbol:      asset.Symbol,
		Name:        asset.Name,
		Kind:        asset.Kind,
		Currency:    asset.Currency,
		Quantity:    pos.Quantity,
		CostBasis:   pos.CostBasis,
		AverageCost: pos.AverageCost,
		LastQuote:   asset.LastQuote,
	}
}

// Holdings builds one Holding per asset. Transactions of unknown assets are ignored.
func Holdings(assets []Asset, txs []Transaction) []Holding {
	byAsset := make(map[string][]Transaction, len(assets))
	for _, tx := range txs {
		byAsset[tx.AssetID] = append(byAsset[tx.AssetID], tx)
	}
	holdings := make([]Holding, 0, len(assets))
	for _, a := range assets {
		holdings = append(holdings, NewHolding(a, byAsset[a.ID]))
	}
	slices.SortStableFunc(holdings, func(a, b Holding) int { return cmp.Compare(a.Symbol, b.Symbol) })
	return holdings
}
