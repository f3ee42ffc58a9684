// Package totals computes line-item financial breakdowns for invoices,
// quotes, and certificates. One calculator serves every document class.
package totals

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/calebmorton/tradedocs-backend/pkg/money"
)

// LineItem is a single billable row as entered by the caller.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   money.Money
	TaxPercent  decimal.Decimal
}

// LineAmounts carries the rounded per-line products.
type LineAmounts struct {
	LineTotal money.Money
	LineTax   money.Money
}

// Breakdown is the derived totals structure. It is never stored apart from
// the document that produced it.
type Breakdown struct {
	Lines          []LineAmounts
	Subtotal       money.Money
	TaxTotal       money.Money
	DiscountAmount money.Money
	GrandTotal     money.Money
	PartialPayment money.Money
	BalanceDue     money.Money
}

var oneHundred = decimal.NewFromInt(100)

// Compute maps line items, a subtotal-level discount percentage, and a
// partial payment into a totals breakdown.
//
// Per-line tax is computed on the undiscounted line total, then the summed
// tax is scaled by the discounted fraction of the subtotal. Pro-rating VAT by
// the discount ratio rather than recomputing per line is a deliberate policy
// carried over from the existing books; do not "fix" it without a domain
// sign-off, since it changes issued financial output.
func Compute(items []LineItem, discountPercent decimal.Decimal, partialPayment money.Money) (Breakdown, error) {
	if len(items) == 0 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item is required")
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(oneHundred) {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("discount percent must be between 0 and 100, got %s", discountPercent))
	}

	lines := make([]LineAmounts, 0, len(items))
	subtotal := money.Zero
	taxRaw := money.Zero

	for i, item := range items {
		if err := validateItem(i, item); err != nil {
			return Breakdown{}, err
		}
		lineTotal := item.UnitPrice.MulQuantity(item.Quantity)
		lineTax := lineTotal.MulRate(item.TaxPercent.Div(oneHundred))
		lines = append(lines, LineAmounts{LineTotal: lineTotal, LineTax: lineTax})
		subtotal = subtotal.Add(lineTotal)
		taxRaw = taxRaw.Add(lineTax)
	}

	discountAmount := subtotal.MulRate(discountPercent.Div(oneHundred))

	taxTotal := money.Zero
	if !subtotal.IsZero() {
		discountedRatio := subtotal.Sub(discountAmount).Decimal().Div(subtotal.Decimal())
		taxTotal = taxRaw.MulRate(discountedRatio)
	}

	grandTotal := subtotal.Sub(discountAmount).Add(taxTotal)
	balanceDue := grandTotal.Sub(partialPayment)

	return Breakdown{
		Lines:          lines,
		Subtotal:       subtotal,
		TaxTotal:       taxTotal,
		DiscountAmount: discountAmount,
		GrandTotal:     grandTotal,
		PartialPayment: partialPayment,
		BalanceDue:     balanceDue,
	}, nil
}

func validateItem(index int, item LineItem) error {
	if item.Quantity.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("line %d: quantity must not be negative", index+1))
	}
	if item.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("line %d: unit price must not be negative", index+1))
	}
	if item.TaxPercent.IsNegative() || item.TaxPercent.GreaterThan(oneHundred) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("line %d: tax percent must be between 0 and 100", index+1))
	}
	return nil
}
