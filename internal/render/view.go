// Package render defines the data contract crossing into the print engine.
// The engine renders markup; this package decides exactly which data it may
// see, which is where the certificate-freeze guarantee lives.
package render

import (
	"encoding/json"
	"time"

	"github.com/calebmorton/tradedocs-backend/internal/snapshot"
	"github.com/calebmorton/tradedocs-backend/pkg/db/models"
	"github.com/calebmorton/tradedocs-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/calebmorton/tradedocs-backend/pkg/money"
	"github.com/calebmorton/tradedocs-backend/pkg/types"
)

// PartyView is the issuing-business block handed to the engine.
type PartyView struct {
	Name                string
	Email               string
	Phone               string
	Address             types.Address
	LogoRef             string
	Terms               string
	RegistrationNumbers string
}

// LineView is a rendered line item row.
type LineView struct {
	Description string
	Quantity    string
	TaxPercent  string
	UnitPrice   money.Money
	LineTotal   money.Money
	LineTax     money.Money
}

// TotalsView is the rendered totals block.
type TotalsView struct {
	Subtotal       money.Money
	TaxTotal       money.Money
	DiscountAmount money.Money
	GrandTotal     money.Money
	PartialPayment money.Money
	BalanceDue     money.Money
}

// View is the complete, deterministic input to a render. Rendering the same
// document twice yields the same View.
type View struct {
	Class         enums.DocumentClass
	Reference     string
	Status        enums.DocumentStatus
	Currency      enums.Currency
	IssuedAt      time.Time
	ExpiryOrDueAt *time.Time

	Business PartyView
	Preparer *types.PreparerIdentitySnapshot
	Customer types.CustomerSnapshot

	Lines  []LineView
	Totals TotalsView
	Notes  string

	// CertificateContent is present only for certificates and is sourced
	// exclusively from the locked payload.
	CertificateContent json.RawMessage
}

// BuildView assembles the render input for a document.
//
// Certificates read everything frozen at issuance from the locked payload;
// the live business profile is deliberately ignored for them. Invoices and
// quotes are not legally frozen records, so they re-pull live branding on
// every render.
func BuildView(doc *models.Document, liveBusiness *models.Business) (View, error) {
	if doc == nil {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "document required")
	}

	view := View{
		Class:         doc.Class,
		Reference:     doc.Reference,
		Status:        doc.Status,
		Currency:      doc.Currency,
		IssuedAt:      doc.IssuedAt,
		ExpiryOrDueAt: doc.ExpiryOrDueAt,
		Customer:      doc.CustomerSnapshot,
		Lines:         buildLines(doc.Items),
		Totals: TotalsView{
			Subtotal:       money.FromMinorUnits(doc.SubtotalCents),
			TaxTotal:       money.FromMinorUnits(doc.TaxTotalCents),
			DiscountAmount: money.FromMinorUnits(doc.DiscountAmountCents),
			GrandTotal:     money.FromMinorUnits(doc.GrandTotalCents),
			PartialPayment: money.FromMinorUnits(doc.PartialPaymentCents),
			BalanceDue:     money.FromMinorUnits(doc.BalanceDueCents),
		},
	}
	if doc.Notes != nil {
		view.Notes = *doc.Notes
	}

	if doc.Class == enums.DocumentClassCertificate {
		if err := snapshot.ValidateLockedPayload(doc.LockedPayload); err != nil {
			return View{}, err
		}
		payload := doc.LockedPayload
		view.Business = PartyView{
			Name:                payload.BusinessProfile.Name,
			Email:               payload.BusinessProfile.Email,
			Phone:               payload.BusinessProfile.Phone,
			Address:             payload.BusinessProfile.Address,
			LogoRef:             payload.BusinessProfile.LogoRef,
			Terms:               payload.BusinessProfile.DefaultTerms,
			RegistrationNumbers: payload.BusinessProfile.RegistrationNumbers,
		}
		preparer := payload.PreparerIdentity
		view.Preparer = &preparer
		view.CertificateContent = payload.Content
		return view, nil
	}

	if liveBusiness == nil {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "business profile required to render "+doc.Class.String())
	}
	view.Business = PartyView{
		Name:                liveBusiness.Name,
		Email:               liveBusiness.Email,
		Phone:               liveBusiness.Phone,
		Address:             liveBusiness.Address,
		LogoRef:             liveBusiness.LogoRef,
		Terms:               liveBusiness.DefaultTerms,
		RegistrationNumbers: liveBusiness.RegistrationNumbers,
	}
	return view, nil
}

func buildLines(items []models.DocumentLineItem) []LineView {
	lines := make([]LineView, 0, len(items))
	for _, item := range items {
		lines = append(lines, LineView{
			Description: item.Description,
			Quantity:    item.Quantity,
			TaxPercent:  item.TaxPercent,
			UnitPrice:   money.FromMinorUnits(item.UnitPriceCents),
			LineTotal:   money.FromMinorUnits(item.LineTotalCents),
			LineTax:     money.FromMinorUnits(item.LineTaxCents),
		})
	}
	return lines
}
