package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/courtsec/courtsec/internal/models"
)

// CourthouseStore reads the courthouse directory.
type CourthouseStore struct {
	Base
}

// NewCourthouseStore creates a CourthouseStore.
func NewCourthouseStore(base Base) *CourthouseStore {
	return &CourthouseStore{Base: base}
}

// ListCourthouses returns directory entries ordered by county, division and name.
func (s *CourthouseStore) ListCourthouses(ctx context.Context) ([]models.Courthouse, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing courthouses: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	list, err := queryEntities[models.Courthouse](ctx, tx, models.CourthouseFields,
		selectSQL(models.CourthouseFields, visibleOnly)+" ORDER BY county, division, name")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing list courthouses: %w", err)
	}

	return list, nil
}

// GetCourthouse returns a directory entry by ID.
func (s *CourthouseStore) GetCourthouse(ctx context.Context, id uuid.UUID) (*models.Courthouse, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting courthouse: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	ch, err := queryEntity[models.Courthouse](ctx, tx, models.CourthouseFields,
		selectSQL(models.CourthouseFields, visibleOnly, "id = $1"), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrCourthouseNotFound
		}

		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing get courthouse: %w", err)
	}

	return ch, nil
}
