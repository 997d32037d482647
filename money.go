package fintrack

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount in a currency, used for display.
type Money struct {
	value decimal.Decimal
	cur   Currency
}

// M returns a Money.
func M(value decimal.Decimal, currency Currency) Money {
	return Money{value: value, cur: currency}
}

// D turns an integer or float literal into a decimal. Floats keep their
// shortest representation, D(0.1) is exactly 0.1.
func D[T int | int64 | float64](v T) decimal.Decimal {
	if f, ok := any(v).(float64); ok {
		return decimal.NewFromFloat(f)
	}
	return decimal.NewFromInt(int64(v))
}

// MustD parses a decimal literal and panics if it is malformed. Tests and
// constants only.
func MustD(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (m Money) Value() decimal.Decimal { return m.value }
func (m Money) Currency() Currency     { return m.cur }
func (m Money) IsZero() bool           { return m.value.IsZero() }

// currency returns the go-money currency. It is never nil: unknown codes get
// a default format.
func (m Money) currency() money.Currency {
	return *money.New(0, string(m.cur)).Currency()
}

// String formats the value with the currency's symbol and minor units.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString is String with an explicit sign. Zero is "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}
