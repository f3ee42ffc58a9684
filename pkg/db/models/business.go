package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebmorton/tradedocs-backend/pkg/types"
)

// Business is the issuing company profile. Snapshot builders read from it at
// document-creation time; the engine never writes it back.
type Business struct {
	ID                  uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Name                string        `gorm:"column:name;not null"`
	Email               string        `gorm:"column:email"`
	Phone               string        `gorm:"column:phone"`
	Address             types.Address `gorm:"column:address;type:jsonb;serializer:json"`
	LogoRef             string        `gorm:"column:logo_ref"`
	DefaultTerms        string        `gorm:"column:default_terms"`
	RegistrationNumbers string        `gorm:"column:registration_numbers"`
	PaymentTermsDays    int           `gorm:"column:payment_terms_days;not null;default:30"`
	CreatedAt           time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
