// Package money represents currency amounts as fixed-point integers in minor units.
//
// Decimal text is only parsed and produced at the boundary (CSV, JSON, CLI flags);
// all arithmetic inside the ledger runs on int64 minor units.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by an Amount.
const Scale = 2

// Tolerance is the smallest reportable currency unit (0.01). Two totals are
// considered equal when their difference is strictly below it.
const Tolerance Amount = 1

// ErrInvalidAmount is returned for non-numeric input or input with more
// fractional digits than Scale.
var ErrInvalidAmount = errors.New("invalid input: amount")

// Amount is a signed amount in minor units (1 = 0.01).
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

var minorPerUnit = decimal.New(1, Scale)

// Parse parses a decimal string such as "1000", "1000.5" or "-12.34".
// Empty input parses as zero.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// MustParse is Parse for literals in tests and defaults. It panics on error.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromDecimal converts d to minor units, rejecting sub-minor precision.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	minor := d.Mul(minorPerUnit)
	if !minor.Equal(minor.Truncate(0)) {
		return Zero, fmt.Errorf("%w %s: more than %d decimal places", ErrInvalidAmount, d, Scale)
	}
	if minor.Abs().GreaterThan(decimal.NewFromInt(1 << 62)) {
		return Zero, fmt.Errorf("%w %s: out of range", ErrInvalidAmount, d)
	}
	return Amount(minor.IntPart()), nil
}

// FromMinor wraps a raw minor-unit count.
func FromMinor(minor int64) Amount {
	return Amount(minor)
}

// FromUnits returns n whole currency units.
func FromUnits(n int64) Amount {
	return Amount(n * 100)
}

// Minor returns the raw minor-unit count.
func (a Amount) Minor() int64 {
	return int64(a)
}

// Decimal returns a as a decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// String formats a with exactly Scale fractional digits.
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// Abs returns |a|.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// IsZero reports whether a is zero.
func (a Amount) IsZero() bool {
	return a == 0
}

// IsNegative reports whether a is below zero.
func (a Amount) IsNegative() bool {
	return a < 0
}

// WithinTolerance reports whether |a| < Tolerance.
func (a Amount) WithinTolerance() bool {
	return a.Abs() < Tolerance
}

// Sum adds amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// MarshalJSON encodes a as a decimal string, e.g. "1000.00".
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or a JSON number. Anything else
// fails with ErrInvalidAmount rather than decoding to zero.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = Zero
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
		}
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: empty string", ErrInvalidAmount)
		}
		raw = s
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
