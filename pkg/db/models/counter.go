package models

import (
	"time"

	"github.com/google/uuid"
)

// Counter is a named, business-scoped monotonic sequence source. Rows are
// created lazily on first reservation and mutated only through the atomic
// upsert in internal/sequencer.
type Counter struct {
	BusinessID uuid.UUID `gorm:"column:business_id;type:uuid;not null;primaryKey"`
	Name       string    `gorm:"column:name;not null;primaryKey"`
	NextValue  int64     `gorm:"column:next_value;not null;default:1"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName sets the database table name.
func (Counter) TableName() string { return "counters" }
