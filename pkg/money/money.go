package money

import (
	"database/sql/driver"
	"fmt"
	"strings"

	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Money is an amount in integer minor units (pence). All arithmetic stays in
// minor units; rate multiplication rounds half-up exactly once at the point
// the product is taken, never accumulating fractional remainders.
type Money struct {
	units int64
}

// MaxFractionDigits is the precision accepted from user input.
const MaxFractionDigits = 2

var hundred = decimal.NewFromInt(100)

// Zero is the additive identity.
var Zero = Money{}

// FromMinorUnits wraps an amount already expressed in minor units.
func FromMinorUnits(units int64) Money {
	return Money{units: units}
}

// FromString parses a user-entered decimal amount. It rejects negative,
// non-finite, and over-precise input.
func FromString(value string) (Money, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Zero, pkgerrors.New(pkgerrors.CodeValidation, "amount is required")
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid amount %q", value))
	}
	if dec.IsNegative() {
		return Zero, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	if dec.Exponent() < -MaxFractionDigits && !dec.Equal(dec.Round(MaxFractionDigits)) {
		return Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("amount %q has more than %d decimal places", value, MaxFractionDigits))
	}
	return Money{units: dec.Mul(hundred).IntPart()}, nil
}

// MinorUnits returns the raw amount in minor units.
func (m Money) MinorUnits() int64 {
	return m.units
}

// Decimal returns the amount as an exact decimal in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.units, -MaxFractionDigits)
}

func (m Money) Add(other Money) Money {
	return Money{units: m.units + other.units}
}

func (m Money) Sub(other Money) Money {
	return Money{units: m.units - other.units}
}

// MulRate multiplies by an arbitrary decimal rate and rounds the result
// half-up to the nearest minor unit.
func (m Money) MulRate(rate decimal.Decimal) Money {
	product := decimal.NewFromInt(m.units).Mul(rate)
	return Money{units: roundHalfUp(product)}
}

// MulQuantity multiplies a unit price by a decimal quantity, rounding half-up.
func (m Money) MulQuantity(qty decimal.Decimal) Money {
	return m.MulRate(qty)
}

func (m Money) IsNegative() bool {
	return m.units < 0
}

func (m Money) IsZero() bool {
	return m.units == 0
}

// Compare returns -1, 0, or 1 as m is less than, equal to, or greater than other.
func (m Money) Compare(other Money) int {
	switch {
	case m.units < other.units:
		return -1
	case m.units > other.units:
		return 1
	default:
		return 0
	}
}

// String formats the amount with exactly two decimal places, e.g. "134.10".
func (m Money) String() string {
	return m.Decimal().StringFixed(MaxFractionDigits)
}

// MarshalJSON encodes the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a decimal string or bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" {
		*m = Zero
		return nil
	}
	dec, err := decimal.NewFromString(raw)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid money value")
	}
	m.units = roundHalfUp(dec.Mul(hundred))
	return nil
}

// Value implements driver.Valuer so GORM stores minor units in integer columns.
func (m Money) Value() (driver.Value, error) {
	return m.units, nil
}

// Scan implements sql.Scanner for integer minor-unit columns.
func (m *Money) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		m.units = 0
	case int64:
		m.units = v
	case int:
		m.units = int64(v)
	case float64:
		m.units = roundHalfUp(decimal.NewFromFloat(v))
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	return nil
}

// roundHalfUp rounds to the nearest integer with halves moving away from
// zero, matching the round-half-up rule for the non-negative amounts this
// engine produces.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
