package totals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/calebmorton/tradedocs-backend/pkg/money"
)

func item(desc string, qty int64, priceCents int64, taxPercent int64) LineItem {
	return LineItem{
		Description: desc,
		Quantity:    decimal.NewFromInt(qty),
		UnitPrice:   money.FromMinorUnits(priceCents),
		TaxPercent:  decimal.NewFromInt(taxPercent),
	}
}

func TestComputeProRatesTaxByDiscountRatio(t *testing.T) {
	t.Parallel()

	items := []LineItem{
		item("boiler service", 2, 5000, 20),
		item("sundries", 1, 1000, 0),
		item("copper pipe", 5, 200, 20),
	}

	got, err := Compute(items, decimal.NewFromInt(10), money.Zero)
	require.NoError(t, err)

	// subtotal 120.00, raw tax 22.00, discount 12.00
	// tax scaled by (120-12)/120 = 0.9 -> 19.80
	assert.Equal(t, "120.00", got.Subtotal.String())
	assert.Equal(t, "12.00", got.DiscountAmount.String())
	assert.Equal(t, "19.80", got.TaxTotal.String())
	assert.Equal(t, "127.80", got.GrandTotal.String())
	assert.Equal(t, "127.80", got.BalanceDue.String())
}

func TestComputeGrandTotalInvariant(t *testing.T) {
	t.Parallel()

	cases := [][]LineItem{
		{item("a", 3, 3333, 20)},
		{item("a", 1, 1, 20), item("b", 7, 99, 5)},
		{item("a", 2, 12345, 17), item("b", 1, 6789, 20), item("c", 9, 11, 0)},
	}

	for _, items := range cases {
		for _, discount := range []int64{0, 7, 10, 33, 100} {
			got, err := Compute(items, decimal.NewFromInt(discount), money.Zero)
			require.NoError(t, err)

			want := got.Subtotal.Sub(got.DiscountAmount).Add(got.TaxTotal)
			assert.Equal(t, 0, got.GrandTotal.Compare(want), "grand total must equal subtotal - discount + tax post-rounding")
			assert.False(t, got.Subtotal.IsNegative())
			assert.False(t, got.TaxTotal.IsNegative())
		}
	}
}

func TestComputePartialPaymentAndOverpayment(t *testing.T) {
	t.Parallel()

	items := []LineItem{item("callout", 1, 10000, 0)}

	got, err := Compute(items, decimal.Zero, money.FromMinorUnits(4000))
	require.NoError(t, err)
	assert.Equal(t, "60.00", got.BalanceDue.String())

	// overpayment is reported negative, not clamped
	got, err = Compute(items, decimal.Zero, money.FromMinorUnits(12000))
	require.NoError(t, err)
	assert.Equal(t, "-20.00", got.BalanceDue.String())
	assert.True(t, got.BalanceDue.IsNegative())
}

func TestComputeZeroSubtotalYieldsZeroTax(t *testing.T) {
	t.Parallel()

	got, err := Compute([]LineItem{item("free survey", 0, 5000, 20)}, decimal.NewFromInt(50), money.Zero)
	require.NoError(t, err)
	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.TaxTotal.IsZero())
	assert.True(t, got.GrandTotal.IsZero())
}

func TestComputeFractionalQuantityRoundsOnce(t *testing.T) {
	t.Parallel()

	items := []LineItem{{
		Description: "labour",
		Quantity:    decimal.RequireFromString("1.5"),
		UnitPrice:   money.FromMinorUnits(3333),
		TaxPercent:  decimal.NewFromInt(20),
	}}

	got, err := Compute(items, decimal.Zero, money.Zero)
	require.NoError(t, err)
	// 33.33 * 1.5 = 49.995 -> 50.00 once at the line, tax 20% of 50.00
	assert.Equal(t, "50.00", got.Subtotal.String())
	assert.Equal(t, "10.00", got.TaxTotal.String())
}

func TestComputeValidation(t *testing.T) {
	t.Parallel()

	_, err := Compute(nil, decimal.Zero, money.Zero)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = Compute([]LineItem{item("x", 1, 100, 0)}, decimal.NewFromInt(101), money.Zero)
	require.Error(t, err)

	_, err = Compute([]LineItem{item("x", 1, 100, 0)}, decimal.NewFromInt(-1), money.Zero)
	require.Error(t, err)

	_, err = Compute([]LineItem{{
		Description: "bad qty",
		Quantity:    decimal.NewFromInt(-2),
		UnitPrice:   money.FromMinorUnits(100),
	}}, decimal.Zero, money.Zero)
	require.Error(t, err)

	_, err = Compute([]LineItem{item("bad tax", 1, 100, 120)}, decimal.Zero, money.Zero)
	require.Error(t, err)
}
