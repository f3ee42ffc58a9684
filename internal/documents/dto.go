package documents

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calebmorton/tradedocs-backend/internal/snapshot"
	"github.com/calebmorton/tradedocs-backend/internal/totals"
	"github.com/calebmorton/tradedocs-backend/pkg/db/models"
	"github.com/calebmorton/tradedocs-backend/pkg/enums"
	"github.com/calebmorton/tradedocs-backend/pkg/money"
	"github.com/calebmorton/tradedocs-backend/pkg/pagination"
	"github.com/calebmorton/tradedocs-backend/pkg/types"
)

// CustomerInput selects the customer for a new document: a fresh form entry
// or a stored customer id, never both.
type CustomerInput struct {
	NewForm    *snapshot.CustomerForm
	ExistingID *uuid.UUID
	// SaveNew persists the form entry as a customer record alongside the
	// document, in the same transaction.
	SaveNew bool
}

// CreateDocumentInput carries everything needed to create and number a
// document.
type CreateDocumentInput struct {
	BusinessID      uuid.UUID
	Class           enums.DocumentClass
	Currency        enums.Currency
	Items           []totals.LineItem
	DiscountPercent decimal.Decimal
	PartialPayment  money.Money
	Customer        CustomerInput
	QuickEntry      bool
	Notes           *string

	// DueInDays overrides the business default payment terms for invoices.
	DueInDays *int

	// Certificate-only fields.
	CertificateContent json.RawMessage
	Preparer           types.PreparerIdentitySnapshot
}

// UpdateStatusInput moves a document through its lifecycle.
type UpdateStatusInput struct {
	BusinessID uuid.UUID
	DocumentID uuid.UUID
	NewStatus  enums.DocumentStatus
}

// ListFilters narrows document listings.
type ListFilters struct {
	Class  *enums.DocumentClass
	Status *enums.DocumentStatus
}

// DocumentPage is a cursor page of documents.
type DocumentPage struct {
	Items      []models.Document `json:"items"`
	NextCursor *string           `json:"next_cursor,omitempty"`
}

// listQuery bundles repository list arguments.
type listQuery struct {
	BusinessID uuid.UUID
	Filters    ListFilters
	Limit      int
	Cursor     *pagination.Cursor
}

// quoteValidityDays is how long a quote stands before it expires.
const quoteValidityDays = 30

func quoteExpiry(issuedAt time.Time) time.Time {
	return issuedAt.AddDate(0, 0, quoteValidityDays)
}
