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

// CourthouseStore reads the courthouse directory.
type CourthouseStore interface {
	ListCourthouses(ctx context.Context) ([]models.Courthouse, error)
	GetCourthouse(ctx context.Context, id uuid.UUID) (*models.Courthouse, error)
}

// Compile-time check: *CourthouseService must satisfy domain.CourthouseService.
var _ domain.CourthouseService = (*CourthouseService)(nil)

// CourthouseService maintains the courthouse directory. Entries are removed
// physically; the audit log keeps their last state.
type CourthouseService struct {
	store     CourthouseStore
	committer Committer
	log       *logrus.Logger
}

// NewCourthouseService creates a CourthouseService.
func NewCourthouseService(store CourthouseStore, committer Committer, log *logrus.Logger) *CourthouseService {
	return &CourthouseService{store: store, committer: committer, log: log}
}

// ListCourthouses returns the directory (pass-through).
func (s *CourthouseService) ListCourthouses(ctx context.Context) ([]models.Courthouse, error) {
	return s.store.ListCourthouses(ctx)
}

// CreateCourthouse adds a directory entry.
func (s *CourthouseService) CreateCourthouse(
	ctx context.Context, who identity.Provider, req models.CreateCourthouseRequest,
) (*models.Courthouse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := s.committer.Commit(ctx, who, commit.NewChangeSet().Add(req.NewCourthouse()))
	if err != nil {
		return nil, fmt.Errorf("creating courthouse: %w", err)
	}

	ch, err := stored[models.Courthouse](res, 0)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"courthouse_id": ch.ID,
		"name":          ch.Name,
	}).Info("courthouse.create")

	return ch, nil
}

// DeleteCourthouse removes a directory entry.
func (s *CourthouseService) DeleteCourthouse(ctx context.Context, who identity.Provider, id uuid.UUID) error {
	ch, err := s.store.GetCourthouse(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.committer.Commit(ctx, who, commit.NewChangeSet().Delete(ch)); err != nil {
		return fmt.Errorf("deleting courthouse: %w", notFound(err, models.ErrCourthouseNotFound))
	}

	s.log.WithField("courthouse_id", id).Info("courthouse.delete")

	return nil
}
