package fintrack

import "github.com/shopspring/decimal"

// Position is the result of folding an asset's transactions.
type Position struct {
	Quantity decimal.Decimal
	// CostBasis is the money put into the current quantity, fees included.
	// Income lowers it and may drive it negative.
	CostBasis   decimal.Decimal
	AverageCost decimal.Decimal
}

// ComputePosition folds txs, assumed sorted by time, into a Position.
//
// Sells and outgoing transfers larger than the held quantity are clamped to
// it. A sell releases cost at the current average cost; an outgoing transfer
// releases nothing until the quantity reaches zero, which resets the cost
// basis.
func ComputePosition(txs []Transaction) Position {
	qty := decimal.Zero
	cost := decimal.Zero
	for _, tx := range txs {
		switch tx.Kind {
		case Buy:
			qty = qty.Add(tx.Quantity)
			cost = cost.Add(tx.Quantity.Mul(tx.Price)).Add(tx.Fees)
		case Sell:
			sold := decimal.Min(tx.Quantity, qty)
			if qty.IsPositive() {
				avg := cost.Div(qty)
				cost = cost.Sub(avg.Mul(sold))
			}
			qty = qty.Sub(sold)
			if qty.IsZero() && sold.IsPositive() {
				// drop the rounding residual of the average cost
				cost = decimal.Zero
			}
		case TransferIn:
			qty = qty.Add(tx.Quantity)
			cost = cost.Add(tx.Quantity.Mul(tx.Price))
		case TransferOut:
			qty = qty.Sub(decimal.Min(tx.Quantity, qty))
			if qty.IsZero() {
				cost = decimal.Zero
			}
		case Income:
			cost = cost.Sub(tx.Quantity.Mul(tx.Price))
		}
	}
	avg := decimal.Zero
	if qty.IsPositive() {
		avg = cost.Div(qty)
	}
	return Position{Quantity: qty, CostBasis: cost, AverageCost: avg}
}
