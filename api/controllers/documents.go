package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calebmorton/tradedocs-backend/api/middleware"
	"github.com/calebmorton/tradedocs-backend/api/responses"
	"github.com/calebmorton/tradedocs-backend/api/validators"
	"github.com/calebmorton/tradedocs-backend/internal/documents"
	"github.com/calebmorton/tradedocs-backend/internal/snapshot"
	"github.com/calebmorton/tradedocs-backend/internal/totals"
	"github.com/calebmorton/tradedocs-backend/pkg/db/models"
	"github.com/calebmorton/tradedocs-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/calebmorton/tradedocs-backend/pkg/logger"
	"github.com/calebmorton/tradedocs-backend/pkg/money"
	"github.com/calebmorton/tradedocs-backend/pkg/pagination"
	"github.com/calebmorton/tradedocs-backend/pkg/types"
)

type lineItemRequest struct {
	Description string `json:"description" validate:"required"`
	Quantity    string `json:"quantity" validate:"required"`
	UnitPrice   string `json:"unit_price" validate:"required"`
	TaxPercent  string `json:"tax_percent"`
}

type customerRequest struct {
	ID      *uuid.UUID    `json:"id"`
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone"`
	Address types.Address `json:"address"`
	Save    bool          `json:"save"`
}

type createDocumentRequest struct {
	Class              string                          `json:"class" validate:"required,oneof=invoice quote certificate"`
	Currency           string                          `json:"currency"`
	Items              []lineItemRequest               `json:"items" validate:"required,min=1,dive"`
	DiscountPercent    string                          `json:"discount_percent"`
	PartialPayment     string                          `json:"partial_payment"`
	Customer           customerRequest                 `json:"customer"`
	QuickEntry         bool                            `json:"quick_entry"`
	Notes              *string                         `json:"notes"`
	DueInDays          *int                            `json:"due_in_days"`
	CertificateContent json.RawMessage                 `json:"certificate_content,omitempty"`
	Preparer           *types.PreparerIdentitySnapshot `json:"preparer,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type lineItemResponse struct {
	Position    int    `json:"position"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TaxPercent  string `json:"tax_percent"`
	LineTotal   string `json:"line_total"`
	LineTax     string `json:"line_tax"`
}

type totalsResponse struct {
	Subtotal       string `json:"subtotal"`
	TaxTotal       string `json:"tax_total"`
	DiscountAmount string `json:"discount_amount"`
	GrandTotal     string `json:"grand_total"`
	PartialPayment string `json:"partial_payment"`
	BalanceDue     string `json:"balance_due"`
}

type documentResponse struct {
	ID               uuid.UUID              `json:"id"`
	Class            string                 `json:"class"`
	Reference        string                 `json:"reference"`
	SequenceNumber   int64                  `json:"sequence_number"`
	Status           string                 `json:"status"`
	Currency         string                 `json:"currency"`
	IssuedAt         time.Time              `json:"issued_at"`
	ExpiryOrDueAt    *time.Time             `json:"expiry_or_due_at,omitempty"`
	DiscountPercent  string                 `json:"discount_percent"`
	Totals           totalsResponse         `json:"totals"`
	CustomerSnapshot types.CustomerSnapshot `json:"customer_snapshot"`
	Notes            *string                `json:"notes,omitempty"`
	Items            []lineItemResponse     `json:"items,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

type documentPageResponse struct {
	Items      []documentResponse `json:"items"`
	NextCursor *string            `json:"next_cursor,omitempty"`
}

// CreateDocument handles POST /api/v1/documents.
func CreateDocument(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createDocumentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildCreateInput(businessID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDocumentClass(ctx, string(input.Class))
		}

		doc, err := svc.CreateDocument(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toDocumentResponse(doc))
	}
}

// ListDocuments handles GET /api/v1/documents.
func ListDocuments(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := buildListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), businessID, filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := documentPageResponse{
			Items:      make([]documentResponse, 0, len(page.Items)),
			NextCursor: page.NextCursor,
		}
		for i := range page.Items {
			out.Items = append(out.Items, toDocumentResponse(&page.Items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// DocumentDetail handles GET /api/v1/documents/{documentId}.
func DocumentDetail(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, documentID, err := documentScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.GetByID(r.Context(), businessID, documentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toDocumentResponse(doc))
	}
}

// UpdateDocumentStatus handles PATCH /api/v1/documents/{documentId}/status.
func UpdateDocumentStatus(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, documentID, err := documentScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseDocumentStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		doc, err := svc.UpdateStatus(r.Context(), documents.UpdateStatusInput{
			BusinessID: businessID,
			DocumentID: documentID,
			NewStatus:  status,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toDocumentResponse(doc))
	}
}

// RenderDocument handles GET /api/v1/documents/{documentId}/render.
func RenderDocument(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, documentID, err := documentScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDocumentID(ctx, documentID.String())
		}

		artifact, err := svc.RenderDocument(ctx, businessID, documentID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteArtifact(w, artifact.ContentType, artifact.Data)
	}
}

// ReissueCertificate handles POST /api/v1/documents/{documentId}/reissue.
func ReissueCertificate(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, documentID, err := documentScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDocumentID(ctx, documentID.String())
		}

		artifact, err := svc.ReissueCertificate(ctx, businessID, documentID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteArtifact(w, artifact.ContentType, artifact.Data)
	}
}

func businessIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.BusinessIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "business context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid business id")
	}
	return id, nil
}

func documentScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	businessID, err := businessIDFromRequest(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	documentID, err := uuid.Parse(chi.URLParam(r, "documentId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid document id")
	}
	return businessID, documentID, nil
}

func buildCreateInput(businessID uuid.UUID, req createDocumentRequest) (documents.CreateDocumentInput, error) {
	var input documents.CreateDocumentInput

	class, err := enums.ParseDocumentClass(req.Class)
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid class")
	}

	items := make([]totals.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		parsed, parseErr := parseLineItem(item)
		if parseErr != nil {
			return input, parseErr
		}
		items = append(items, parsed)
	}

	discount := decimal.Zero
	if strings.TrimSpace(req.DiscountPercent) != "" {
		discount, err = decimal.NewFromString(req.DiscountPercent)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount_percent")
		}
	}

	partial := money.Zero
	if strings.TrimSpace(req.PartialPayment) != "" {
		partial, err = money.FromString(req.PartialPayment)
		if err != nil {
			return input, err
		}
	}

	input = documents.CreateDocumentInput{
		BusinessID:         businessID,
		Class:              class,
		Items:              items,
		DiscountPercent:    discount,
		PartialPayment:     partial,
		Customer:           buildCustomerInput(req.Customer),
		QuickEntry:         req.QuickEntry,
		Notes:              req.Notes,
		DueInDays:          req.DueInDays,
		CertificateContent: req.CertificateContent,
	}
	if req.Currency != "" {
		currency, currErr := enums.ParseCurrency(req.Currency)
		if currErr != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, currErr, "invalid currency")
		}
		input.Currency = currency
	}
	if req.Preparer != nil {
		input.Preparer = *req.Preparer
	}
	return input, nil
}

func parseLineItem(item lineItemRequest) (totals.LineItem, error) {
	qty, err := decimal.NewFromString(item.Quantity)
	if err != nil {
		return totals.LineItem{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quantity").WithDetails(map[string]any{"description": item.Description})
	}
	price, err := money.FromString(item.UnitPrice)
	if err != nil {
		return totals.LineItem{}, err
	}
	tax := decimal.Zero
	if strings.TrimSpace(item.TaxPercent) != "" {
		tax, err = decimal.NewFromString(item.TaxPercent)
		if err != nil {
			return totals.LineItem{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tax_percent").WithDetails(map[string]any{"description": item.Description})
		}
	}
	return totals.LineItem{
		Description: item.Description,
		Quantity:    qty,
		UnitPrice:   price,
		TaxPercent:  tax,
	}, nil
}

func buildCustomerInput(req customerRequest) documents.CustomerInput {
	if req.ID != nil {
		return documents.CustomerInput{ExistingID: req.ID}
	}
	return documents.CustomerInput{
		NewForm: &snapshot.CustomerForm{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
		},
		SaveNew: req.Save,
	}
}

func buildListFilters(r *http.Request) (documents.ListFilters, error) {
	var filters documents.ListFilters
	if raw := strings.TrimSpace(r.URL.Query().Get("class")); raw != "" {
		class, err := enums.ParseDocumentClass(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid class filter")
		}
		filters.Class = &class
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseDocumentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	return filters, nil
}

func toDocumentResponse(doc *models.Document) documentResponse {
	resp := documentResponse{
		ID:               doc.ID,
		Class:            doc.Class.String(),
		Reference:        doc.Reference,
		SequenceNumber:   doc.SequenceNumber,
		Status:           doc.Status.String(),
		Currency:         doc.Currency.String(),
		IssuedAt:         doc.IssuedAt,
		ExpiryOrDueAt:    doc.ExpiryOrDueAt,
		DiscountPercent:  doc.DiscountPercent,
		CustomerSnapshot: doc.CustomerSnapshot,
		Notes:            doc.Notes,
		CreatedAt:        doc.CreatedAt,
		Totals: totalsResponse{
			Subtotal:       money.FromMinorUnits(doc.SubtotalCents).String(),
			TaxTotal:       money.FromMinorUnits(doc.TaxTotalCents).String(),
			DiscountAmount: money.FromMinorUnits(doc.DiscountAmountCents).String(),
			GrandTotal:     money.FromMinorUnits(doc.GrandTotalCents).String(),
			PartialPayment: money.FromMinorUnits(doc.PartialPaymentCents).String(),
			BalanceDue:     money.FromMinorUnits(doc.BalanceDueCents).String(),
		},
	}
	for _, item := range doc.Items {
		resp.Items = append(resp.Items, lineItemResponse{
			Position:    item.Position,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   money.FromMinorUnits(item.UnitPriceCents).String(),
			TaxPercent:  item.TaxPercent,
			LineTotal:   money.FromMinorUnits(item.LineTotalCents).String(),
			LineTax:     money.FromMinorUnits(item.LineTaxCents).String(),
		})
	}
	return resp
}
