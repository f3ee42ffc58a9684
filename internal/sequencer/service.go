// Package sequencer allocates strictly increasing document numbers per
// (business, counter name), starting at 1.
package sequencer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebmorton/tradedocs-backend/pkg/db"
	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/calebmorton/tradedocs-backend/pkg/metrics"
)

// DefaultMaxRetries bounds the automatic retry of lock conflicts before the
// failure surfaces to the caller.
const DefaultMaxRetries = 3

// Service reserves document numbers with bounded retry on lock conflicts.
type Service interface {
	Reserve(ctx context.Context, tx *gorm.DB, businessID uuid.UUID, counterName string) (int64, error)
}

type service struct {
	repo       Repository
	maxRetries int
}

// NewService builds a sequencer service.
func NewService(repo Repository, maxRetries int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sequencer repository required")
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &service{repo: repo, maxRetries: maxRetries}, nil
}

func (s *service) Reserve(ctx context.Context, tx *gorm.DB, businessID uuid.UUID, counterName string) (int64, error) {
	if businessID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "business id required")
	}
	if counterName == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "counter name required")
	}

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		reserved, err := s.repo.ReserveNext(ctx, tx, businessID, counterName)
		if err == nil {
			return reserved, nil
		}
		if !db.IsSerializationFailure(err) {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve document number")
		}
		metrics.SequencerRetries.Inc()
		lastErr = err
	}
	return 0, pkgerrors.Wrap(pkgerrors.CodeSequencerConflict, lastErr,
		fmt.Sprintf("counter %q contention persisted after %d attempts", counterName, s.maxRetries))
}
