// Package core provides money parsing and handling utilities.
//
// Amounts are carried as integer cents. Decimal text is parsed with
// shopspring/decimal so that inputs like "12.5", "12,50" or "1e2" are
// handled without floating point drift.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxCents keeps amounts well inside int64 after aggregation.
const maxCents = int64(1) << 53

// ParseAmount converts a decimal string to Money with half-up rounding to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Zero,
// negative and non-numeric values return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,34")  -> 1234 cents
//	ParseAmount("12.345") -> 1235 cents
//	ParseAmount("12.344") -> 1234 cents
func ParseAmount(s string) (Money, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	if !d.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	m := MoneyFromDecimal(d)
	if m.Cents <= 0 || m.Cents > maxCents {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// ParseDecimal parses a plain decimal number, normalizing a decimal comma.
// Sign is preserved; callers decide whether negatives are acceptable.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d, nil
}

// MoneyFromDecimal rounds d half-up to two places and returns it in cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// Decimal returns the amount as a decimal value in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON emits the amount as a bare JSON number in currency units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}
