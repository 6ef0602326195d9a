package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/domain"
	"github.com/courtsec/courtsec/internal/models"
)

// Compile-time check: *AuditService must satisfy domain.AuditService.
var _ domain.AuditService = (*AuditService)(nil)

// AuditService exposes the audit log read-only. Records are written only by
// the commit coordinator.
type AuditService struct {
	store AuditQueryStore
	log   *logrus.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(store AuditQueryStore, log *logrus.Logger) *AuditService {
	return &AuditService{store: store, log: log}
}

// QueryAudit returns audit records matching opts, newest first.
func (s *AuditService) QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditRecord, bool, error) {
	if opts.Action != "" && !opts.Action.Valid() {
		return nil, false, models.ErrInvalidAction
	}

	s.log.WithFields(logrus.Fields{
		"table":       opts.TableName,
		"primary_key": opts.PrimaryKey,
		"action":      opts.Action,
		"limit":       opts.Limit,
		"offset":      opts.Offset,
	}).Debug("audit.query")

	return s.store.QueryAudit(ctx, opts)
}
