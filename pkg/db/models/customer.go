package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebmorton/tradedocs-backend/pkg/types"
)

// Customer is the live customer record. Documents embed a snapshot of these
// fields instead of joining against this row at render time.
type Customer struct {
	ID         uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	BusinessID uuid.UUID     `gorm:"column:business_id;type:uuid;not null;index"`
	Name       string        `gorm:"column:name;not null"`
	Email      string        `gorm:"column:email"`
	Phone      string        `gorm:"column:phone"`
	Address    types.Address `gorm:"column:address;type:jsonb;serializer:json"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
