package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/courtsec/courtsec/internal/models"
)

// AttachmentStore reads live attachment metadata.
type AttachmentStore struct {
	Base
}

// NewAttachmentStore creates an AttachmentStore.
func NewAttachmentStore(base Base) *AttachmentStore {
	return &AttachmentStore{Base: base}
}

// GetAttachment returns a live attachment by ID.
func (s *AttachmentStore) GetAttachment(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting attachment: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	att, err := queryEntity[models.Attachment](ctx, tx, models.AttachmentFields,
		selectSQL(models.AttachmentFields, visibleOnly, "id = $1"), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAttachmentNotFound
		}

		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing get attachment: %w", err)
	}

	return att, nil
}

// ListAttachments returns the live attachments of an incident in upload order.
func (s *AttachmentStore) ListAttachments(ctx context.Context, incidentID uuid.UUID) ([]models.Attachment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	atts, err := queryEntities[models.Attachment](ctx, tx, models.AttachmentFields,
		selectSQL(models.AttachmentFields, visibleOnly, "incident_id = $1")+" ORDER BY uploaded_at, id", incidentID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing list attachments: %w", err)
	}

	return atts, nil
}
