package fintrack

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Pair is an ordered currency pair. A rate on the pair is the amount of Quote
// for one unit of Base.
type Pair struct {
	Base  Currency
	Quote Currency
}

// DefaultPair is the USD/TRY cross-rate the refresh loop maintains.
var DefaultPair = Pair{Base: USD, Quote: TRY}

// String returns the concatenated codes, as in "USDTRY".
func (p Pair) String() string { return string(p.Base) + string(p.Quote) }

// ParsePair parses a six letter pair like "USDTRY".
func ParsePair(s string) (Pair, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 6 {
		return Pair{}, fmt.Errorf("%w: currency pair %q", ErrInvalid, s)
	}
	base, err := ParseCurrency(s[:3])
	if err != nil {
		return Pair{}, err
	}
	quote, err := ParseCurrency(s[3:])
	if err != nil {
		return Pair{}, err
	}
	if base == quote {
		return Pair{}, fmt.Errorf("%w: currency pair %q has twice the same currency", ErrInvalid, s)
	}
	return Pair{Base: base, Quote: quote}, nil
}

func (p Pair) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Pair) UnmarshalText(b []byte) error {
	v, err := ParsePair(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// FXRate is the stored cross-rate for a pair. There is at most one per pair.
type FXRate struct {
	ID        string          `json:"id"`
	Pair      Pair            `json:"pair"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Settings is the singleton holding user preferences.
type Settings struct {
	ID                string   `json:"id"`
	ReportingCurrency Currency `json:"reportingCurrency"`
}

// SettingsID is the id of the singleton Settings record.
const SettingsID = "settings"

// DefaultSettings is what Settings holds before the user changes anything.
func DefaultSettings() Settings {
	return Settings{ID: SettingsID, ReportingCurrency: TRY}
}
