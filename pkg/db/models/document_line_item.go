package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentLineItem is a single billable row frozen into a document.
// Quantity and tax percent are stored as numeric strings so fractional
// quantities survive without float drift.
type DocumentLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	DocumentID     uuid.UUID `gorm:"column:document_id;type:uuid;not null;index"`
	Position       int       `gorm:"column:position;not null"`
	Description    string    `gorm:"column:description;not null"`
	Quantity       string    `gorm:"column:quantity;type:numeric;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	TaxPercent     string    `gorm:"column:tax_percent;type:numeric;not null;default:0"`
	LineTotalCents int64     `gorm:"column:line_total_cents;not null"`
	LineTaxCents   int64     `gorm:"column:line_tax_cents;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName sets the database table name.
func (DocumentLineItem) TableName() string { return "document_line_items" }
