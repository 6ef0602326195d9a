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

// AttachmentStore reads live attachment metadata.
type AttachmentStore interface {
	GetAttachment(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
}

// Compile-time check: *AttachmentService must satisfy domain.AttachmentService.
var _ domain.AttachmentService = (*AttachmentService)(nil)

// AttachmentService files and removes attachment metadata. Blob storage is
// handled elsewhere; only the reference is recorded here.
type AttachmentService struct {
	incidents   IncidentStore
	attachments AttachmentStore
	committer   Committer
	system      string
	log         *logrus.Logger
}

// NewAttachmentService creates an AttachmentService. system is recorded as
// the uploader when the caller is unauthenticated.
func NewAttachmentService(
	incidents IncidentStore, attachments AttachmentStore, committer Committer, system string, log *logrus.Logger,
) *AttachmentService {
	return &AttachmentService{
		incidents:   incidents,
		attachments: attachments,
		committer:   committer,
		system:      system,
		log:         log,
	}
}

// AddAttachment files req against a live incident. The incident is locked
// for share while the attachment is written, so a concurrent delete either
// waits for it or makes the call fail with ErrIncidentNotFound.
func (s *AttachmentService) AddAttachment(
	ctx context.Context, who identity.Provider, incidentID uuid.UUID, req models.CreateAttachmentRequest,
) (*models.Attachment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inc, err := s.incidents.GetIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	att := req.NewAttachment(inc.ID, identity.Resolve(who, s.system))

	res, err := s.committer.Commit(ctx, who, commit.NewChangeSet().Require(inc).Add(att))
	if err != nil {
		return nil, fmt.Errorf("adding attachment: %w", notFound(err, models.ErrIncidentNotFound))
	}

	out, err := stored[models.Attachment](res, 1)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"incident_id":   inc.ID,
		"attachment_id": out.ID,
		"size":          out.SizeInBytes,
	}).Info("attachment.add")

	return out, nil
}

// DeleteAttachment soft-deletes a live attachment.
func (s *AttachmentService) DeleteAttachment(ctx context.Context, who identity.Provider, id uuid.UUID) error {
	att, err := s.attachments.GetAttachment(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.committer.Commit(ctx, who, commit.NewChangeSet().Delete(att)); err != nil {
		return fmt.Errorf("deleting attachment: %w", notFound(err, models.ErrAttachmentNotFound))
	}

	s.log.WithFields(logrus.Fields{
		"incident_id":   att.IncidentID,
		"attachment_id": id,
	}).Info("attachment.delete")

	return nil
}
