package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebmorton/tradedocs-backend/pkg/enums"
	"github.com/calebmorton/tradedocs-backend/pkg/types"
)

// Document is a numbered commercial document owned by a business. Line items,
// totals, and snapshots are immutable after creation; only Status moves.
type Document struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	BusinessID      uuid.UUID            `gorm:"column:business_id;type:uuid;not null;index"`
	CustomerID      *uuid.UUID           `gorm:"column:customer_id;type:uuid"`
	Class           enums.DocumentClass  `gorm:"column:document_class;type:text;not null"`
	SequenceNumber  int64                `gorm:"column:sequence_number;not null"`
	Reference       string               `gorm:"column:reference;not null"`
	Status          enums.DocumentStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	Currency        enums.Currency       `gorm:"column:currency;type:text;not null;default:'GBP'"`
	IssuedAt        time.Time            `gorm:"column:issued_at;not null"`
	ExpiryOrDueAt   *time.Time           `gorm:"column:expiry_or_due_at"`
	DiscountPercent string               `gorm:"column:discount_percent;type:numeric;not null;default:0"`

	SubtotalCents       int64 `gorm:"column:subtotal_cents;not null"`
	TaxTotalCents       int64 `gorm:"column:tax_total_cents;not null;default:0"`
	DiscountAmountCents int64 `gorm:"column:discount_amount_cents;not null;default:0"`
	GrandTotalCents     int64 `gorm:"column:grand_total_cents;not null"`
	PartialPaymentCents int64 `gorm:"column:partial_payment_cents;not null;default:0"`
	BalanceDueCents     int64 `gorm:"column:balance_due_cents;not null"`

	CustomerSnapshot types.CustomerSnapshot `gorm:"column:customer_snapshot;type:jsonb;serializer:json"`
	LockedPayload    *types.LockedPayload   `gorm:"column:locked_payload;type:jsonb;serializer:json"`
	Notes            *string                `gorm:"column:notes"`

	Items []DocumentLineItem `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName sets the database table name.
func (Document) TableName() string { return "documents" }
