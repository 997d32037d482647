package refresh

import (
	"fmt"

	"github.com/etnz/fintrack"
)

// Sources are the price sources per kind and the FX rate source.
type Sources struct {
	// Equity prices index equities, foreign equities and precious metals.
	Equity       fintrack.PriceSource
	Fund         fintrack.PriceSource
	Crypto       fintrack.PriceSource
	FixedDeposit fintrack.PriceSource
	FX           fintrack.RateSource
}

// For returns the source pricing assets of kind k.
func (s Sources) For(k fintrack.Kind) (fintrack.PriceSource, error) {
	var src fintrack.PriceSource
	switch k {
	case fintrack.KindIndexEquity, fintrack.KindForeignEquity, fintrack.KindPreciousMetal:
		src = s.Equity
	case fintrack.KindFund:
		src = s.Fund
	case fintrack.KindCrypto:
		src = s.Crypto
	case fintrack.KindFixedDeposit:
		src = s.FixedDeposit
	}
	if src == nil {
		return nil, fmt.Errorf("%w: no price source for %q assets", fintrack.ErrUnsupported, k)
	}
	return src, nil
}
