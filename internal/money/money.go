// Package money implements exact monetary arithmetic in integer minor units
// (céntimos). Amounts cross the API boundary as 2-decimal values and are
// converted losslessly; inside the service every comparison is exact, so no
// epsilon tolerances exist anywhere in the reconciliation logic.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Cents is a monetary amount in céntimos. 150.00 soles == Cents(15000).
type Cents int64

// ErrPrecision is returned when an input amount carries more than two
// decimal places and therefore cannot be represented in céntimos.
var ErrPrecision = errors.New("el monto tiene más de dos decimales")

var hundred = decimal.NewFromInt(100)

// FromDecimal converts a 2-decimal amount into céntimos, rejecting anything
// that would lose precision.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	scaled := d.Mul(hundred)
	if !scaled.IsInteger() {
		return 0, ErrPrecision
	}
	return Cents(scaled.IntPart()), nil
}

// Decimal returns the amount as a decimal with 2-digit scale for responses.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats the amount with exactly two decimals ("150.00").
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

func (c Cents) IsPositive() bool { return c > 0 }

func (c Cents) IsNegative() bool { return c < 0 }

func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// Min returns the smaller of a and b.
func Min(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}
