package fintrack

import (
	"time"

	"github.com/shopspring/decimal"
)

// Convert converts value from one currency to another with the cross-rate of
// rate's pair.
//
// Conversion is best effort: without a usable rate, or for a pair the rate
// does not cover, the value passes through unconverted.
func Convert(value decimal.Decimal, from, to Currency, rate *FXRate) decimal.Decimal {
	if from == to || rate == nil || !rate.Rate.IsPositive() {
		return value
	}
	switch {
	case from == rate.Pair.Base && to == rate.Pair.Quote:
		return value.Mul(rate.Rate)
	case from == rate.Pair.Quote && to == rate.Pair.Base:
		return value.Div(rate.Rate)
	}
	return value
}

// Snapshot is the valuation of a set of holdings in a reporting currency.
type Snapshot struct {
	TotalValue decimal.Decimal `json:"totalValue"`
	TotalCost  decimal.Decimal `json:"totalCost"`
	ProfitLoss decimal.Decimal `json:"profitLoss"`
	// ProfitLossPct is a ratio, 0.05 for 5%. It is zero when the cost is zero.
	ProfitLossPct decimal.Decimal `json:"profitLossPct"`
	// LastUpdatedAt is the most recent quote time, nil if nothing was ever quoted.
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
}

// Valuation is a single holding valued in the reporting currency.
type Valuation struct {
	Holding
	Value         decimal.Decimal `json:"value"`
	Cost          decimal.Decimal `json:"cost"`
	ProfitLoss    decimal.Decimal `json:"profitLoss"`
	ProfitLossPct decimal.Decimal `json:"profitLossPct"`
}

// Value values h in the reporting currency. A holding never quoted is worth zero.
func Value(h Holding, reporting Currency, rate *FXRate) Valuation {
	cost := Convert(h.CostBasis, h.Currency, reporting, rate)
	value := decimal.Zero
	if q := h.LastQuote; q != nil {
		from := q.Currency
		if from == "" {
			from = h.Currency
		}
		value = Convert(q.Price.Mul(h.Quantity), from, reporting, rate)
	}
	pl := value.Sub(cost)
	return Valuation{
		Holding:       h,
		Value:         value,
		Cost:          cost,
		ProfitLoss:    pl,
		ProfitLossPct: ratio(pl, cost),
	}
}

// Dashboard sums the valuation of every holding.
func Dashboard(holdings []Holding, reporting Currency, rate *FXRate) Snapshot {
	var s Snapshot
	for _, h := range holdings {
		v := Value(h, reporting, rate)
		s.TotalValue = s.TotalValue.Add(v.Value)
		s.TotalCost = s.TotalCost.Add(v.Cost)
		if q := h.LastQuote; q != nil && !q.UpdatedAt.IsZero() {
			if s.LastUpdatedAt == nil || q.UpdatedAt.After(*s.LastUpdatedAt) {
				t := q.UpdatedAt
				s.LastUpdatedAt = &t
			}
		}
	}
	s.ProfitLoss = s.TotalValue.Sub(s.TotalCost)
	s.ProfitLossPct = ratio(s.ProfitLoss, s.TotalCost)
	return s
}

// KindTotal is the snapshot of all holdings of one kind.
type KindTotal struct {
	Kind Kind `json:"kind"`
	Snapshot
}

// ByKind returns one snapshot per kind present in holdings, in Kinds order.
func ByKind(holdings []Holding, reporting Currency, rate *FXRate) []KindTotal {
	groups := make(map[Kind][]Holding)
	for _, h := range holdings {
		groups[h.Kind] = append(groups[h.Kind], h)
	}
	var totals []KindTotal
	for _, k := range Kinds() {
		if hs, ok := groups[k]; ok {
			totals = append(totals, KindTotal{Kind: k, Snapshot: Dashboard(hs, reporting, rate)})
		}
	}
	return totals
}

func ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}
