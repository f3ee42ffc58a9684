package sequencer

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reserves sequence values against the counters table.
type Repository interface {
	// ReserveNext allocates the next value for (businessID, counterName) in a
	// single atomic statement. Run it on the transaction that inserts the
	// document so a failed creation rolls the reservation back.
	ReserveNext(ctx context.Context, db *gorm.DB, businessID uuid.UUID, counterName string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sequencer repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// The read-modify-write pattern this replaces loses reservations when two
// creations race; the upsert makes the increment a single statement the
// database serializes. Absent rows start at 1, so the first reservation
// inserts next_value = 2 and hands back 1.
const reserveNextSQL = `
INSERT INTO counters (business_id, name, next_value, created_at, updated_at)
VALUES (?, ?, 2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT (business_id, name)
DO UPDATE SET next_value = counters.next_value + 1, updated_at = CURRENT_TIMESTAMP
RETURNING next_value - 1`

func (r *repository) ReserveNext(ctx context.Context, db *gorm.DB, businessID uuid.UUID, counterName string) (int64, error) {
	if db == nil {
		db = r.db
	}
	var reserved int64
	err := db.WithContext(ctx).Raw(reserveNextSQL, businessID, counterName).Scan(&reserved).Error
	if err != nil {
		return 0, err
	}
	return reserved, nil
}
