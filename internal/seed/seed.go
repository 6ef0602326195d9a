// Package seed loads sample incidents into an empty database. Seed rows go
// through the commit coordinator like any other write, so they are audited.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/identity"
	"github.com/courtsec/courtsec/internal/models"
)

// IncidentLister reports existing incidents, soft-deleted ones included.
type IncidentLister interface {
	ListIncidentsIncludingDeleted(ctx context.Context, opts models.IncidentListOpts) ([]models.Incident, bool, error)
}

// Committer commits a change set on behalf of a caller.
type Committer interface {
	Commit(ctx context.Context, who identity.Provider, cs *commit.ChangeSet) (*commit.Result, error)
}

// Seeder inserts the sample data set.
type Seeder struct {
	incidents IncidentLister
	committer Committer
	log       *logrus.Logger
	now       func() time.Time
}

// New creates a Seeder.
func New(incidents IncidentLister, committer Committer, log *logrus.Logger) *Seeder {
	return &Seeder{incidents: incidents, committer: committer, log: log, now: time.Now}
}

// Run seeds when no incident exists, deleted or not, and returns the number
// of incidents written. All rows land in one transaction.
func (s *Seeder) Run(ctx context.Context) (int, error) {
	existing, _, err := s.incidents.ListIncidentsIncludingDeleted(ctx, models.IncidentListOpts{Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("checking for incidents: %w", err)
	}

	if len(existing) > 0 {
		s.log.Info("database already contains incidents, skipping seed")

		return 0, nil
	}

	incidents := sampleIncidents(s.now().UTC())

	cs := commit.NewChangeSet()
	for i := range incidents {
		cs.Add(&incidents[i])
	}

	for i := range sampleCourthouses {
		ch := sampleCourthouses[i]
		cs.Add(&ch)
	}

	if _, err := s.committer.Commit(ctx, identity.Anonymous, cs); err != nil {
		return 0, fmt.Errorf("seeding incidents: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"incidents":   len(incidents),
		"courthouses": len(sampleCourthouses),
	}).Info("seeded sample data")

	return len(incidents), nil
}

func ptr(s string) *string { return &s }

var sampleCourthouses = []models.Courthouse{
	{County: "Franklin", Division: "Criminal", Name: "Main Justice Center"},
	{County: "Franklin", Division: "Family", Name: "Annex Building"},
}

func sampleIncidents(now time.Time) []models.Incident {
	return []models.Incident{
		{
			IncidentDate:             now.AddDate(0, 0, -1),
			Status:                   models.StatusOpen,
			ReporterFirstName:        "John",
			ReporterLastName:         "Doe",
			ReporterEmail:            "jdoe@courtroom.local",
			ReporterJobTitle:         "Bailiff",
			County:                   "Franklin",
			Division:                 "Criminal",
			Courthouse:               "Main Justice Center",
			LocationWithinCourthouse: "Courtroom 3B",
			RelatedDocketNumber:      ptr("CR-2026-0042"),
			Type:                     models.TypePhysicalAltercation,
			Narrative:                "Two individuals began shouting match in gallery which escalated to a brief scuffle. Deputies intervened and separated parties.",
		},
		{
			IncidentDate:             now.AddDate(0, 0, -3),
			Status:                   models.StatusUnderReview,
			ReporterFirstName:        "Sarah",
			ReporterLastName:         "Smith",
			ReporterEmail:            "ssmith@courtroom.local",
			ReporterJobTitle:         "Security Supervisor",
			County:                   "Franklin",
			Division:                 "Family",
			Courthouse:               "Annex Building",
			LocationWithinCourthouse: "Main Entrance Security Checkpoint",
			Type:                     models.TypeContrabandFound,
			WeaponInvolved:           true,
			WeaponType:               ptr("Pocket Knife (3 inch blade)"),
			ContrabandSeized:         true,
			ContrabandType:           ptr("Weapon"),
			Narrative:                "During routine magnetometer screening, an individual attempted to conceal a pocket knife in their shoe. Item was confiscated.",
		},
		{
			IncidentDate:             now.AddDate(0, 0, -7),
			Status:                   models.StatusClosed,
			ReporterFirstName:        "Michael",
			ReporterLastName:         "Johnson",
			ReporterEmail:            "mjohnson@courtroom.local",
			ReporterJobTitle:         "Clerk",
			County:                   "Franklin",
			Division:                 "Civil",
			Courthouse:               "Main Justice Center",
			LocationWithinCourthouse: "3rd Floor Hallway",
			Type:                     models.TypeMedicalEmergency,
			Narrative:                "Elderly witness fainted outside courtroom. EMTs were called and transported individual to general hospital.",
		},
		{
			IncidentDate:             now.Add(-2 * time.Hour),
			Status:                   models.StatusEscalated,
			ReporterFirstName:        "Hon. James",
			ReporterLastName:         "Wilson",
			ReporterEmail:            "jwilson@courtroom.local",
			ReporterJobTitle:         "Judge",
			County:                   "Franklin",
			Division:                 "Criminal",
			Courthouse:               "Main Justice Center",
			LocationWithinCourthouse: "Courtroom 1A",
			RelatedDocketNumber:      ptr("CR-2026-0158"),
			SuspectFirstName:         ptr("Robert"),
			SuspectLastName:          ptr("Tables"),
			Type:                     models.TypeVerbalThreat,
			Narrative:                "Defendant directed profane language and verbal threats toward opposing counsel after verdict was read. Defendant was removed holding cell. Recommend additional security for sentencing phase.",
		},
	}
}
