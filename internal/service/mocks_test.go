package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/entity"
	"github.com/courtsec/courtsec/internal/identity"
	"github.com/courtsec/courtsec/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// mockCommitter records change sets and returns configured responses.
type mockCommitter struct {
	mu    sync.Mutex
	sets  []*commit.ChangeSet
	whos  []identity.Provider
	err   error
	apply func(e commit.Entry) entity.Entity
}

// Commit echoes each entry's After state, the Before state of required
// entries and nil for deletes, unless apply is set.
func (m *mockCommitter) Commit(_ context.Context, who identity.Provider, cs *commit.ChangeSet) (*commit.Result, error) {
	m.mu.Lock()
	m.sets = append(m.sets, cs)
	m.whos = append(m.whos, who)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	res := &commit.Result{}
	for _, e := range cs.Entries() {
		switch {
		case m.apply != nil:
			res.Entities = append(res.Entities, m.apply(e))
		case e.After != nil:
			res.Entities = append(res.Entities, e.After)
		case e.Op == commit.Required:
			res.Entities = append(res.Entities, e.Before)
		default:
			res.Entities = append(res.Entities, nil)
		}
	}

	return res, nil
}

func (m *mockCommitter) last() *commit.ChangeSet {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sets) == 0 {
		return nil
	}

	return m.sets[len(m.sets)-1]
}

type mockIncidentStore struct {
	listIncidents          func(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error)
	listIncludingDeleted   func(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error)
	getIncident            func(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	getIncidentWithDeleted func(ctx context.Context, id uuid.UUID) (*models.Incident, error)
}

func (m *mockIncidentStore) ListIncidents(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error) {
	return m.listIncidents(ctx, opts)
}

func (m *mockIncidentStore) ListIncidentsIncludingDeleted(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error) {
	return m.listIncludingDeleted(ctx, opts)
}

func (m *mockIncidentStore) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	return m.getIncident(ctx, id)
}

func (m *mockIncidentStore) GetIncidentIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	return m.getIncidentWithDeleted(ctx, id)
}

type mockAttachmentStore struct {
	getAttachment func(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
}

func (m *mockAttachmentStore) GetAttachment(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	return m.getAttachment(ctx, id)
}

type mockCourthouseStore struct {
	listCourthouses func(ctx context.Context) ([]models.Courthouse, error)
	getCourthouse   func(ctx context.Context, id uuid.UUID) (*models.Courthouse, error)
}

func (m *mockCourthouseStore) ListCourthouses(ctx context.Context) ([]models.Courthouse, error) {
	return m.listCourthouses(ctx)
}

func (m *mockCourthouseStore) GetCourthouse(ctx context.Context, id uuid.UUID) (*models.Courthouse, error) {
	return m.getCourthouse(ctx, id)
}

type mockAuditStore struct {
	queryAudit func(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditRecord, bool, error)
}

func (m *mockAuditStore) QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditRecord, bool, error) {
	return m.queryAudit(ctx, opts)
}
