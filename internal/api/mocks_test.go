package api_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/courtsec/courtsec/internal/identity"
	"github.com/courtsec/courtsec/internal/models"
)

// mockIncidentService implements domain.IncidentService for testing.
type mockIncidentService struct {
	listFn    func(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error)
	listAllFn func(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	getAnyFn  func(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	createFn  func(ctx context.Context, who identity.Provider, req models.CreateIncidentRequest) (*models.Incident, error)
	updateFn  func(ctx context.Context, who identity.Provider, id uuid.UUID, req models.UpdateIncidentRequest) (*models.Incident, error)
	deleteFn  func(ctx context.Context, who identity.Provider, id uuid.UUID) error
	historyFn func(ctx context.Context, id uuid.UUID, limit, offset int) ([]models.AuditRecord, bool, error)
}

func (m *mockIncidentService) ListIncidents(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error) {
	return m.listFn(ctx, opts)
}

func (m *mockIncidentService) ListIncidentsIncludingDeleted(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error) {
	return m.listAllFn(ctx, opts)
}

func (m *mockIncidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	return m.getFn(ctx, id)
}

func (m *mockIncidentService) GetIncidentIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	return m.getAnyFn(ctx, id)
}

func (m *mockIncidentService) CreateIncident(ctx context.Context, who identity.Provider, req models.CreateIncidentRequest) (*models.Incident, error) {
	return m.createFn(ctx, who, req)
}

func (m *mockIncidentService) UpdateIncident(ctx context.Context, who identity.Provider, id uuid.UUID, req models.UpdateIncidentRequest) (*models.Incident, error) {
	return m.updateFn(ctx, who, id, req)
}

func (m *mockIncidentService) DeleteIncident(ctx context.Context, who identity.Provider, id uuid.UUID) error {
	return m.deleteFn(ctx, who, id)
}

func (m *mockIncidentService) IncidentHistory(ctx context.Context, id uuid.UUID, limit, offset int) ([]models.AuditRecord, bool, error) {
	return m.historyFn(ctx, id, limit, offset)
}

// mockAttachmentService implements domain.AttachmentService for testing.
type mockAttachmentService struct {
	addFn    func(ctx context.Context, who identity.Provider, incidentID uuid.UUID, req models.CreateAttachmentRequest) (*models.Attachment, error)
	deleteFn func(ctx context.Context, who identity.Provider, id uuid.UUID) error
}

func (m *mockAttachmentService) AddAttachment(ctx context.Context, who identity.Provider, incidentID uuid.UUID, req models.CreateAttachmentRequest) (*models.Attachment, error) {
	return m.addFn(ctx, who, incidentID, req)
}

func (m *mockAttachmentService) DeleteAttachment(ctx context.Context, who identity.Provider, id uuid.UUID) error {
	return m.deleteFn(ctx, who, id)
}

// mockCourthouseService implements domain.CourthouseService for testing.
type mockCourthouseService struct {
	listFn   func(ctx context.Context) ([]models.Courthouse, error)
	createFn func(ctx context.Context, who identity.Provider, req models.CreateCourthouseRequest) (*models.Courthouse, error)
	deleteFn func(ctx context.Context, who identity.Provider, id uuid.UUID) error
}

func (m *mockCourthouseService) ListCourthouses(ctx context.Context) ([]models.Courthouse, error) {
	return m.listFn(ctx)
}

func (m *mockCourthouseService) CreateCourthouse(ctx context.Context, who identity.Provider, req models.CreateCourthouseRequest) (*models.Courthouse, error) {
	return m.createFn(ctx, who, req)
}

func (m *mockCourthouseService) DeleteCourthouse(ctx context.Context, who identity.Provider, id uuid.UUID) error {
	return m.deleteFn(ctx, who, id)
}

// mockAuditService implements domain.AuditService for testing.
type mockAuditService struct {
	queryFn func(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditRecord, bool, error)
}

func (m *mockAuditService) QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditRecord, bool, error) {
	return m.queryFn(ctx, opts)
}

// mockActorLookup implements middleware.ActorLookup for testing.
type mockActorLookup struct {
	actors map[string]string
}

func (m *mockActorLookup) ActorByAPIKey(_ context.Context, apiKey string) (string, error) {
	return m.actors[apiKey], nil
}

// mockDatabase implements api.Database for testing.
type mockDatabase struct {
	healthErr error
	version   int64
	queryErr  error
}

func (m *mockDatabase) HealthCheck(context.Context) error { return m.healthErr }

func (m *mockDatabase) QueryRow(context.Context, string, ...any) pgx.Row {
	return mockRow{version: m.version, err: m.queryErr}
}

type mockRow struct {
	version int64
	err     error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	if p, ok := dest[0].(*int64); ok {
		*p = r.version
	}

	return nil
}
