package fintrack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
)

// ValidateCurrency checks that c is an ISO 4217 code known to go-money.
func ValidateCurrency(c Currency) error {
	if c == "" {
		return fmt.Errorf("%w: missing currency", ErrInvalid)
	}
	if money.GetCurrency(string(c)) == nil {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalid, string(c))
	}
	return nil
}

// Validate returns all the validation failures of the asset.
func (a Asset) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("missing id"))
	}
	if strings.TrimSpace(a.Symbol) == "" {
		errs = append(errs, errors.New("missing symbol"))
	}
	if _, err := ParseKind(string(a.Kind)); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateCurrency(a.Currency); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: asset %q: %w", ErrInvalid, a.Symbol, err)
	}
	return nil
}

// Validate returns all the validation failures of the transaction.
func (t Transaction) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("missing id"))
	}
	if t.AssetID == "" {
		errs = append(errs, errors.New("missing asset"))
	}
	if _, err := ParseTxKind(string(t.Kind)); err != nil {
		errs = append(errs, err)
	}
	if t.Quantity.IsNegative() {
		errs = append(errs, fmt.Errorf("negative quantity %s", t.Quantity))
	}
	if t.Fees.IsNegative() {
		errs = append(errs, fmt.Errorf("negative fees %s", t.Fees))
	}
	if t.Time.IsZero() {
		errs = append(errs, errors.New("missing time"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: transaction %q: %w", ErrInvalid, t.ID, err)
	}
	return nil
}

// Validate checks an entity before it is staged in a Store.
func Validate(e Entity) error {
	switch v := e.(type) {
	case Asset:
		return v.Validate()
	case Transaction:
		return v.Validate()
	case FXRate:
		if err := ValidateCurrency(v.Pair.Base); err != nil {
			return err
		}
		if err := ValidateCurrency(v.Pair.Quote); err != nil {
			return err
		}
		if !v.Rate.IsPositive() {
			return fmt.Errorf("%w: %s rate %s is not positive", ErrInvalid, v.Pair, v.Rate)
		}
	case Settings:
		return ValidateCurrency(v.ReportingCurrency)
	case PriceUpdate:
		if v.AssetID == "" {
			return fmt.Errorf("%w: price update without asset", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unsupported entity %T", ErrInvalid, e)
	}
	return nil
}
