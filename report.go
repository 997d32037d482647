package fintrack

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Report is the dashboard of the portfolio: totals, one row per held asset
// and subtotals per kind, all in the reporting currency.
type Report struct {
	ReportingCurrency Currency    `json:"reportingCurrency"`
	Rate              *FXRate     `json:"rate,omitempty"`
	Snapshot          Snapshot    `json:"snapshot"`
	Rows              []Valuation `json:"rows"`
	Kinds             []KindTotal `json:"kinds"`
	GeneratedAt       time.Time   `json:"generatedAt"`
}

// NewReport loads the ledger and values every held asset with the cross-rate of pair.
func NewReport(ctx context.Context, l Ledger, pair Pair) (*Report, error) {
	settings, err := l.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load settings: %w", err)
	}
	assets, err := l.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot list assets: %w", err)
	}
	txs, err := l.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot list transactions: %w", err)
	}
	var rate *FXRate
	if r, ok, err := l.FindFXRate(ctx, pair); err != nil {
		return nil, fmt.Errorf("cannot find %s rate: %w", pair, err)
	} else if ok {
		rate = &r
	}
	return BuildReport(Holdings(assets, txs), settings.ReportingCurrency, rate), nil
}

// BuildReport values the held holdings.
func BuildReport(holdings []Holding, reporting Currency, rate *FXRate) *Report {
	var held []Holding
	for _, h := range holdings {
		if h.Held() {
			held = append(held, h)
		}
	}
	rows := make([]Valuation, 0, len(held))
	for _, h := range held {
		rows = append(rows, Value(h, reporting, rate))
	}
	slices.SortStableFunc(rows, func(a, b Valuation) int { return b.Value.Cmp(a.Value) })
	return &Report{
		ReportingCurrency: reporting,
		Rate:              rate,
		Snapshot:          Dashboard(held, reporting, rate),
		Rows:              rows,
		Kinds:             ByKind(held, reporting, rate),
		GeneratedAt:       time.Now(),
	}
}
