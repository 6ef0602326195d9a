// Package domain defines the service interfaces shared by the REST API, the
// seeder and the legacy importer. Consumers depend on these interfaces rather
// than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/google/uuid"

	"github.com/courtsec/courtsec/internal/identity"
	"github.com/courtsec/courtsec/internal/models"
)

// IncidentService defines incident operations. Reads hide soft-deleted
// records except through the IncludingDeleted variants.
type IncidentService interface {
	ListIncidents(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error)
	ListIncidentsIncludingDeleted(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	GetIncidentIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	CreateIncident(ctx context.Context, who identity.Provider, req models.CreateIncidentRequest) (*models.Incident, error)
	UpdateIncident(ctx context.Context, who identity.Provider, id uuid.UUID, req models.UpdateIncidentRequest) (*models.Incident, error)
	DeleteIncident(ctx context.Context, who identity.Provider, id uuid.UUID) error
	IncidentHistory(ctx context.Context, id uuid.UUID, limit, offset int) ([]models.AuditRecord, bool, error)
}

// AttachmentService defines attachment metadata operations.
type AttachmentService interface {
	AddAttachment(ctx context.Context, who identity.Provider, incidentID uuid.UUID, req models.CreateAttachmentRequest) (*models.Attachment, error)
	DeleteAttachment(ctx context.Context, who identity.Provider, id uuid.UUID) error
}

// CourthouseService defines courthouse directory operations.
type CourthouseService interface {
	ListCourthouses(ctx context.Context) ([]models.Courthouse, error)
	CreateCourthouse(ctx context.Context, who identity.Provider, req models.CreateCourthouseRequest) (*models.Courthouse, error)
	DeleteCourthouse(ctx context.Context, who identity.Provider, id uuid.UUID) error
}

// AuditService defines read access to the audit log.
type AuditService interface {
	QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditRecord, bool, error)
}
