// Package documents orchestrates document creation, numbering, lifecycle,
// and rendering.
package documents

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebmorton/tradedocs-backend/pkg/db/models"
	"github.com/calebmorton/tradedocs-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
)

// Repository persists documents and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, q listQuery) ([]models.Document, error)
	UpdateStatus(ctx context.Context, businessID, id uuid.UUID, status enums.DocumentStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a documents repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts the document and its line items in one statement batch.
// gorm persists the Items association with the parent row. IDs are assigned
// app-side so drivers without uuid defaults behave the same.
func (r *repository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	for i := range doc.Items {
		if doc.Items[i].ID == uuid.Nil {
			doc.Items[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *repository) FindByID(ctx context.Context, businessID, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return nil, err
	}
	return &doc, nil
}

func (r *repository) List(ctx context.Context, q listQuery) ([]models.Document, error) {
	query := r.db.WithContext(ctx).
		Where("business_id = ?", q.BusinessID).
		Order("created_at DESC, id DESC").
		Limit(q.Limit)

	if q.Filters.Class != nil {
		query = query.Where("document_class = ?", *q.Filters.Class)
	}
	if q.Filters.Status != nil {
		query = query.Where("status = ?", *q.Filters.Status)
	}
	if q.Cursor != nil {
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			q.Cursor.CreatedAt, q.Cursor.CreatedAt, q.Cursor.ID,
		)
	}

	var docs []models.Document
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repository) UpdateStatus(ctx context.Context, businessID, id uuid.UUID, status enums.DocumentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("business_id = ? AND id = ?", businessID, id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
	}
	return nil
}
