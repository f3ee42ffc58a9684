// Package businesses reads the issuing company profiles supplied to the
// snapshot builder and renderer. The engine never mutates them.
package businesses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebmorton/tradedocs-backend/pkg/db/models"
	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
)

// Repository exposes read access to business profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a businesses repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var business models.Business
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&business).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, err
	}
	return &business, nil
}
