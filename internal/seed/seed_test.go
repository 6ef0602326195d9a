package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/identity"
	"github.com/courtsec/courtsec/internal/models"
)

type mockLister struct {
	incidents []models.Incident
	err       error
}

func (m *mockLister) ListIncidentsIncludingDeleted(context.Context, models.IncidentListOpts) ([]models.Incident, bool, error) {
	return m.incidents, false, m.err
}

type mockCommitter struct {
	sets []*commit.ChangeSet
	who  identity.Provider
	err  error
}

func (m *mockCommitter) Commit(_ context.Context, who identity.Provider, cs *commit.ChangeSet) (*commit.Result, error) {
	m.sets = append(m.sets, cs)
	m.who = who

	return &commit.Result{}, m.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestRun_SeedsEmptyDatabase(t *testing.T) {
	committer := &mockCommitter{}
	s := New(&mockLister{}, committer, quietLogger())
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	n, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n != 4 {
		t.Errorf("expected 4 incidents, got %d", n)
	}

	if len(committer.sets) != 1 {
		t.Fatalf("expected a single commit, got %d", len(committer.sets))
	}

	if identity.Resolve(committer.who, "system") != "system" {
		t.Error("seed rows should be attributed to the system identity")
	}

	statuses := map[models.IncidentStatus]bool{}
	for _, e := range committer.sets[0].Entries() {
		if e.Op != commit.Added {
			t.Errorf("expected only inserts, got %s", e.Op)
		}

		inc, ok := e.After.(*models.Incident)
		if !ok {
			continue
		}

		statuses[inc.Status] = true

		req := models.CreateIncidentRequest{
			IncidentDate: inc.IncidentDate, ReporterFirstName: inc.ReporterFirstName,
			ReporterLastName: inc.ReporterLastName, ReporterEmail: inc.ReporterEmail,
			County: inc.County, Division: inc.Division, Courthouse: inc.Courthouse,
			LocationWithinCourthouse: inc.LocationWithinCourthouse, Type: inc.Type, Narrative: inc.Narrative,
		}
		if err := req.Validate(); err != nil {
			t.Errorf("sample incident fails validation: %v", err)
		}
	}

	if len(statuses) != 4 {
		t.Errorf("samples should cover every status, got %v", statuses)
	}
}

func TestRun_SkipsWhenIncidentsExist(t *testing.T) {
	committer := &mockCommitter{}
	s := New(&mockLister{incidents: []models.Incident{{Deleted: true}}}, committer, quietLogger())

	n, err := s.Run(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("expected skip, got %d, %v", n, err)
	}

	if len(committer.sets) != 0 {
		t.Error("nothing should be committed")
	}
}

func TestRun_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")

	if _, err := New(&mockLister{err: boom}, &mockCommitter{}, quietLogger()).Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected lister error, got %v", err)
	}

	if _, err := New(&mockLister{}, &mockCommitter{err: commit.ErrStorageUnavailable}, quietLogger()).Run(context.Background()); !errors.Is(err, commit.ErrStorageUnavailable) {
		t.Errorf("expected commit error, got %v", err)
	}
}
