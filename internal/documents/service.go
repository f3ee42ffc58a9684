package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebmorton/tradedocs-backend/internal/businesses"
	"github.com/calebmorton/tradedocs-backend/internal/customers"
	"github.com/calebmorton/tradedocs-backend/internal/render"
	"github.com/calebmorton/tradedocs-backend/internal/sequencer"
	"github.com/calebmorton/tradedocs-backend/internal/snapshot"
	"github.com/calebmorton/tradedocs-backend/internal/totals"
	"github.com/calebmorton/tradedocs-backend/pkg/db"
	"github.com/calebmorton/tradedocs-backend/pkg/db/models"
	"github.com/calebmorton/tradedocs-backend/pkg/docref"
	"github.com/calebmorton/tradedocs-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/calebmorton/tradedocs-backend/pkg/metrics"
	"github.com/calebmorton/tradedocs-backend/pkg/pagination"
	"github.com/calebmorton/tradedocs-backend/pkg/types"
)

// referenceWidth is the zero-pad width of the sequence portion of a document
// reference, e.g. INV-2026-0042.
const referenceWidth = 4

// Service is the document engine's entry point.
type Service interface {
	CreateDocument(ctx context.Context, input CreateDocumentInput) (*models.Document, error)
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, businessID uuid.UUID, filters ListFilters, params pagination.Params) (*DocumentPage, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Document, error)
	RenderDocument(ctx context.Context, businessID, id uuid.UUID) (render.Artifact, error)
	ReissueCertificate(ctx context.Context, businessID, id uuid.UUID) (render.Artifact, error)
}

type service struct {
	client     *db.Client
	repo       Repository
	businesses businesses.Repository
	customers  customers.Repository
	sequencer  sequencer.Service
	renderer   render.Renderer
	now        snapshot.Clock
}

// NewService builds the document service.
func NewService(
	client *db.Client,
	repo Repository,
	businessRepo businesses.Repository,
	customerRepo customers.Repository,
	seq sequencer.Service,
	renderer render.Renderer,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("documents repository required")
	}
	if businessRepo == nil {
		return nil, fmt.Errorf("businesses repository required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequencer service required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer required")
	}
	return &service{
		client:     client,
		repo:       repo,
		businesses: businessRepo,
		customers:  customerRepo,
		sequencer:  seq,
		renderer:   renderer,
		now:        time.Now,
	}, nil
}

// CreateDocument builds the document outside the transaction, then reserves
// the number and persists the document with its line items atomically. A
// failed insert rolls the reservation back with it, so references stay
// gapless. Rendering never happens here.
func (s *service) CreateDocument(ctx context.Context, input CreateDocumentInput) (*models.Document, error) {
	if input.BusinessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business id required")
	}
	if !input.Class.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid document class %q", input.Class))
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyGBP
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", currency))
	}

	breakdown, err := totals.Compute(input.Items, input.DiscountPercent, input.PartialPayment)
	if err != nil {
		return nil, err
	}

	business, err := s.businesses.FindByID(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}

	selection, err := s.resolveCustomer(ctx, input)
	if err != nil {
		return nil, err
	}
	reqs := snapshot.FullRequirements
	if input.QuickEntry {
		reqs = snapshot.QuickEntryRequirements
	}
	customerSnap, err := snapshot.BuildCustomerSnapshot(selection, reqs)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now().UTC()

	var locked *types.LockedPayload
	if input.Class == enums.DocumentClassCertificate {
		locked, err = snapshot.BuildLockedPayload(input.CertificateContent, business, input.Preparer, s.now)
		if err != nil {
			return nil, err
		}
	}

	doc := &models.Document{
		BusinessID:       input.BusinessID,
		CustomerID:       customerSnap.CustomerID,
		Class:            input.Class,
		Status:           enums.InitialStatus(input.Class),
		Currency:         currency,
		IssuedAt:         issuedAt,
		ExpiryOrDueAt:    expiryOrDueAt(input, business, issuedAt),
		DiscountPercent:  input.DiscountPercent.String(),
		CustomerSnapshot: customerSnap,
		LockedPayload:    locked,
		Notes:            input.Notes,
		Items:            buildLineItems(input.Items, breakdown),

		SubtotalCents:       breakdown.Subtotal.MinorUnits(),
		TaxTotalCents:       breakdown.TaxTotal.MinorUnits(),
		DiscountAmountCents: breakdown.DiscountAmount.MinorUnits(),
		GrandTotalCents:     breakdown.GrandTotal.MinorUnits(),
		PartialPaymentCents: breakdown.PartialPayment.MinorUnits(),
		BalanceDueCents:     breakdown.BalanceDue.MinorUnits(),
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if input.Customer.NewForm != nil && input.Customer.SaveNew {
			created, createErr := s.customers.WithTx(tx).Create(ctx, &models.Customer{
				BusinessID: input.BusinessID,
				Name:       customerSnap.Name,
				Email:      customerSnap.Email,
				Phone:      customerSnap.Phone,
				Address:    customerSnap.Address,
			})
			if createErr != nil {
				return createErr
			}
			id := created.ID
			doc.CustomerID = &id
			doc.CustomerSnapshot.CustomerID = &id
		}

		seq, reserveErr := s.sequencer.Reserve(ctx, tx, input.BusinessID, input.Class.CounterName())
		if reserveErr != nil {
			return reserveErr
		}
		ref, refErr := docref.Format(input.Class.ReferencePrefix(), issuedAt.Year(), seq, referenceWidth)
		if refErr != nil {
			return refErr
		}
		doc.SequenceNumber = seq
		doc.Reference = ref

		_, insertErr := s.repo.WithTx(tx).Create(ctx, doc)
		return insertErr
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "document number already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist document")
	}

	metrics.DocumentsIssued.WithLabelValues(input.Class.String()).Inc()
	return doc, nil
}

func (s *service) resolveCustomer(ctx context.Context, input CreateDocumentInput) (snapshot.CustomerSelection, error) {
	var selection snapshot.CustomerSelection
	if input.Customer.ExistingID != nil {
		existing, err := s.customers.FindByID(ctx, input.BusinessID, *input.Customer.ExistingID)
		if err != nil {
			return selection, err
		}
		selection.Existing = existing
		return selection, nil
	}
	selection.New = input.Customer.NewForm
	return selection, nil
}

// expiryOrDueAt derives the date column per class: invoices fall due after
// the business payment terms (or an explicit override), quotes expire after
// the standard validity window, certificates carry their dates inside the
// locked content.
func expiryOrDueAt(input CreateDocumentInput, business *models.Business, issuedAt time.Time) *time.Time {
	switch input.Class {
	case enums.DocumentClassInvoice:
		days := business.PaymentTermsDays
		if input.DueInDays != nil {
			days = *input.DueInDays
		}
		due := issuedAt.AddDate(0, 0, days)
		return &due
	case enums.DocumentClassQuote:
		expiry := quoteExpiry(issuedAt)
		return &expiry
	default:
		return nil
	}
}

func buildLineItems(items []totals.LineItem, breakdown totals.Breakdown) []models.DocumentLineItem {
	rows := make([]models.DocumentLineItem, 0, len(items))
	for i, item := range items {
		rows = append(rows, models.DocumentLineItem{
			Position:       i + 1,
			Description:    item.Description,
			Quantity:       item.Quantity.String(),
			UnitPriceCents: item.UnitPrice.MinorUnits(),
			TaxPercent:     item.TaxPercent.String(),
			LineTotalCents: breakdown.Lines[i].LineTotal.MinorUnits(),
			LineTaxCents:   breakdown.Lines[i].LineTax.MinorUnits(),
		})
	}
	return rows
}

func (s *service) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Document, error) {
	if businessID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business id and document id required")
	}
	return s.repo.FindByID(ctx, businessID, id)
}

func (s *service) List(ctx context.Context, businessID uuid.UUID, filters ListFilters, params pagination.Params) (*DocumentPage, error) {
	if businessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	docs, err := s.repo.List(ctx, listQuery{
		BusinessID: businessID,
		Filters:    filters,
		Limit:      limit + 1,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
	}

	page := &DocumentPage{Items: docs}
	if len(docs) > limit {
		page.Items = docs[:limit]
		last := page.Items[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	return page, nil
}

// UpdateStatus applies a lifecycle transition after checking it is legal for
// the document's class.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Document, error) {
	if !input.NewStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", input.NewStatus))
	}

	doc, err := s.repo.FindByID(ctx, input.BusinessID, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if !enums.CanTransition(doc.Class, doc.Status, input.NewStatus) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("%s cannot move from %s to %s", doc.Class, doc.Status, input.NewStatus))
	}

	if err := s.repo.UpdateStatus(ctx, input.BusinessID, input.DocumentID, input.NewStatus); err != nil {
		return nil, err
	}
	doc.Status = input.NewStatus
	return doc, nil
}

// RenderDocument produces the print artifact for any class. Invoices and
// quotes re-pull the live business profile; certificates render purely from
// their locked payload.
func (s *service) RenderDocument(ctx context.Context, businessID, id uuid.UUID) (render.Artifact, error) {
	doc, err := s.repo.FindByID(ctx, businessID, id)
	if err != nil {
		return render.Artifact{}, err
	}

	var business *models.Business
	if doc.Class != enums.DocumentClassCertificate {
		business, err = s.businesses.FindByID(ctx, businessID)
		if err != nil {
			return render.Artifact{}, err
		}
	}

	view, err := render.BuildView(doc, business)
	if err != nil {
		return render.Artifact{}, err
	}
	return s.renderer.Render(ctx, view)
}

// ReissueCertificate re-renders a certificate from its locked payload. The
// live business profile is never consulted, so a reissued certificate is
// byte-stable against later profile edits.
func (s *service) ReissueCertificate(ctx context.Context, businessID, id uuid.UUID) (render.Artifact, error) {
	doc, err := s.repo.FindByID(ctx, businessID, id)
	if err != nil {
		return render.Artifact{}, err
	}
	if doc.Class != enums.DocumentClassCertificate {
		return render.Artifact{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("document %s is a %s, not a certificate", doc.Reference, doc.Class))
	}

	view, err := render.BuildView(doc, nil)
	if err != nil {
		return render.Artifact{}, err
	}
	return s.renderer.Render(ctx, view)
}
