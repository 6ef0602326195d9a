package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/domain"
	"github.com/courtsec/courtsec/internal/identity"
	"github.com/courtsec/courtsec/internal/models"
)

// IncidentStore is the read side IncidentService depends on.
type IncidentStore interface {
	ListIncidents(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error)
	ListIncidentsIncludingDeleted(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	GetIncidentIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.Incident, error)
}

// AuditQueryStore reads the audit log.
type AuditQueryStore interface {
	QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditRecord, bool, error)
}

// Compile-time check: *IncidentService must satisfy domain.IncidentService.
var _ domain.IncidentService = (*IncidentService)(nil)

// IncidentService implements incident reporting, editing and removal.
type IncidentService struct {
	store     IncidentStore
	audit     AuditQueryStore
	committer Committer
	log       *logrus.Logger
}

// NewIncidentService creates an IncidentService.
func NewIncidentService(store IncidentStore, audit AuditQueryStore, committer Committer, log *logrus.Logger) *IncidentService {
	return &IncidentService{store: store, audit: audit, committer: committer, log: log}
}

// ListIncidents returns live incidents (pass-through).
func (s *IncidentService) ListIncidents(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, false, models.ErrInvalidStatus
	}

	return s.store.ListIncidents(ctx, opts)
}

// ListIncidentsIncludingDeleted returns every incident, soft-deleted ones included.
func (s *IncidentService) ListIncidentsIncludingDeleted(
	ctx context.Context, opts models.IncidentListOpts,
) ([]models.Incident, bool, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, false, models.ErrInvalidStatus
	}

	return s.store.ListIncidentsIncludingDeleted(ctx, opts)
}

// GetIncident returns a live incident (pass-through).
func (s *IncidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	return s.store.GetIncident(ctx, id)
}

// GetIncidentIncludingDeleted returns an incident whether or not it is deleted.
func (s *IncidentService) GetIncidentIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	return s.store.GetIncidentIncludingDeleted(ctx, id)
}

// CreateIncident validates req and records a new Open incident.
func (s *IncidentService) CreateIncident(
	ctx context.Context, who identity.Provider, req models.CreateIncidentRequest,
) (*models.Incident, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := s.committer.Commit(ctx, who, commit.NewChangeSet().Add(req.NewIncident()))
	if err != nil {
		return nil, fmt.Errorf("creating incident: %w", err)
	}

	inc, err := stored[models.Incident](res, 0)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"incident_id": inc.ID,
		"type":        inc.Type,
		"courthouse":  inc.Courthouse,
	}).Info("incident.create")

	return inc, nil
}

// UpdateIncident applies req to a live incident.
func (s *IncidentService) UpdateIncident(
	ctx context.Context, who identity.Provider, id uuid.UUID, req models.UpdateIncidentRequest,
) (*models.Incident, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	before, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	after := *before
	req.ApplyTo(&after)

	res, err := s.committer.Commit(ctx, who, commit.NewChangeSet().Update(before, &after))
	if err != nil {
		return nil, fmt.Errorf("updating incident: %w", notFound(err, models.ErrIncidentNotFound))
	}

	inc, err := stored[models.Incident](res, 0)
	if err != nil {
		return nil, err
	}

	inc.Attachments = before.Attachments

	s.log.WithFields(logrus.Fields{
		"incident_id": inc.ID,
		"status":      inc.Status,
	}).Info("incident.update")

	return inc, nil
}

// DeleteIncident removes a live incident. The commit coordinator cascades the
// soft delete to its live attachments in the same transaction, so attachments
// filed after the read are removed too.
func (s *IncidentService) DeleteIncident(ctx context.Context, who identity.Provider, id uuid.UUID) error {
	inc, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return err
	}

	res, err := s.committer.Commit(ctx, who, commit.NewChangeSet().Delete(inc))
	if err != nil {
		return fmt.Errorf("deleting incident: %w", notFound(err, models.ErrIncidentNotFound))
	}

	attachments := 0
	for _, rec := range res.Audit {
		if rec.TableName == string(models.KindAttachment) {
			attachments++
		}
	}

	s.log.WithFields(logrus.Fields{
		"incident_id": id,
		"attachments": attachments,
	}).Info("incident.delete")

	return nil
}

// IncidentHistory returns the audit trail of an incident, newest first. The
// trail of a deleted incident stays available.
func (s *IncidentService) IncidentHistory(
	ctx context.Context, id uuid.UUID, limit, offset int,
) ([]models.AuditRecord, bool, error) {
	if _, err := s.store.GetIncidentIncludingDeleted(ctx, id); err != nil {
		return nil, false, err
	}

	return s.audit.QueryAudit(ctx, models.AuditQueryOpts{
		TableName:  string(models.KindIncident),
		PrimaryKey: id.String(),
		Limit:      limit,
		Offset:     offset,
	})
}
