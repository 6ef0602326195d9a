package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/courtsec/courtsec/internal/models"
)

// IncidentStore reads incidents. Deleted incidents are hidden unless an
// IncludingDeleted entry point is used.
type IncidentStore struct {
	Base
}

// NewIncidentStore creates an IncidentStore.
func NewIncidentStore(base Base) *IncidentStore {
	return &IncidentStore{Base: base}
}

// ListIncidents returns live incidents, newest first.
func (s *IncidentStore) ListIncidents(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error) {
	return s.list(ctx, visibleOnly, opts)
}

// ListIncidentsIncludingDeleted returns incidents including soft-deleted ones.
// It backs administrative views only.
func (s *IncidentStore) ListIncidentsIncludingDeleted(
	ctx context.Context, opts models.IncidentListOpts,
) ([]models.Incident, bool, error) {
	return s.list(ctx, includeDeleted, opts)
}

// GetIncident returns a live incident with its live attachments.
func (s *IncidentStore) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	return s.get(ctx, visibleOnly, id)
}

// GetIncidentIncludingDeleted returns an incident and all of its attachments
// whether or not they are deleted.
func (s *IncidentStore) GetIncidentIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	return s.get(ctx, includeDeleted, id)
}

func (s *IncidentStore) list(
	ctx context.Context, scope readScope, opts models.IncidentListOpts,
) ([]models.Incident, bool, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("listing incidents: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var conds []string
	args := make([]any, 0, 3)

	if opts.Status != "" {
		args = append(args, opts.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}

	query := selectSQL(models.IncidentFields, scope, conds...)
	query += fmt.Sprintf(" ORDER BY incident_date DESC, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit+1, offset)

	incidents, err := queryEntities[models.Incident](ctx, tx, models.IncidentFields, query, args...)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(incidents) > limit
	if hasMore {
		incidents = incidents[:limit]
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("committing list incidents: %w", err)
	}

	return incidents, hasMore, nil
}

func (s *IncidentStore) get(ctx context.Context, scope readScope, id uuid.UUID) (*models.Incident, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting incident: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	inc, err := queryEntity[models.Incident](ctx, tx, models.IncidentFields,
		selectSQL(models.IncidentFields, scope, "id = $1"), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrIncidentNotFound
		}

		return nil, err
	}

	inc.Attachments, err = queryEntities[models.Attachment](ctx, tx, models.AttachmentFields,
		selectSQL(models.AttachmentFields, scope, "incident_id = $1")+" ORDER BY uploaded_at, id", id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing get incident: %w", err)
	}

	return inc, nil
}
