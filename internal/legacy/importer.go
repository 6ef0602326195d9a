package legacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/identity"
	"github.com/courtsec/courtsec/internal/models"
)

// DefaultActor is the identity recorded on audit rows written by an import.
const DefaultActor = "legacy-import"

const defaultBatchSize = 100

// IncidentGetter looks up incidents that may already have been imported.
type IncidentGetter interface {
	GetIncidentIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.Incident, error)
}

// Committer commits a change set on behalf of a caller.
type Committer interface {
	Commit(ctx context.Context, who identity.Provider, cs *commit.ChangeSet) (*commit.Result, error)
}

// Options controls an import run.
type Options struct {
	// Actor is recorded as the author of every imported row.
	Actor string
	// BatchSize is the number of incidents committed per transaction.
	BatchSize int
	// DryRun reads and converts the export without writing.
	DryRun bool
}

// Importer copies legacy incidents and attachments into the store.
type Importer struct {
	incidents IncidentGetter
	committer Committer
	log       *logrus.Logger
}

// NewImporter creates an Importer.
func NewImporter(incidents IncidentGetter, committer Committer, log *logrus.Logger) *Importer {
	return &Importer{incidents: incidents, committer: committer, log: log}
}

// Run imports the export at path. Incidents already present are skipped, so a
// run can be repeated after a failure. Each batch commits on its own; an
// error stops the run and the report reflects what was written so far.
func (im *Importer) Run(ctx context.Context, path string, opts Options) (*Report, error) {
	if opts.Actor == "" {
		opts.Actor = DefaultActor
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	start := time.Now()
	r := &Report{Source: path, Actor: opts.Actor, DryRun: opts.DryRun}
	defer func() { r.Duration = time.Since(start) }()

	db, err := openExport(path)
	if err != nil {
		return r, err
	}
	defer db.Close()

	incRows, err := readIncidents(ctx, db)
	if err != nil {
		return r, fmt.Errorf("read incidents: %w", err)
	}

	attRows, err := readAttachments(ctx, db)
	if err != nil {
		return r, fmt.Errorf("read attachments: %w", err)
	}

	r.IncidentsRead = len(incRows)
	r.AttachmentsRead = len(attRows)

	im.log.WithFields(logrus.Fields{
		"incidents":   r.IncidentsRead,
		"attachments": r.AttachmentsRead,
	}).Info("read legacy export")

	byIncident := make(map[uuid.UUID][]*models.Attachment)
	for i := range attRows {
		att, err := toAttachment(&attRows[i])
		if err != nil {
			r.skip(attRows[i].ID, err)
			continue
		}

		byIncident[att.IncidentID] = append(byIncident[att.IncidentID], att)
	}

	pending, err := im.convert(ctx, incRows, r)
	if err != nil {
		return r, err
	}

	for id, atts := range byIncident {
		if _, ok := pending[id]; !ok {
			for _, a := range atts {
				r.skip(a.ID.String(), errors.New("incident not imported"))
			}
		}
	}

	if opts.DryRun {
		for _, inc := range pending {
			r.IncidentsImported++
			r.AttachmentsImported += len(byIncident[inc.ID])
		}

		return r, nil
	}

	who := identity.User(opts.Actor)
	order := orderOf(incRows, pending)

	for i := 0; i < len(order); i += opts.BatchSize {
		end := min(i+opts.BatchSize, len(order))

		cs := commit.NewChangeSet()
		attachments := 0
		for _, id := range order[i:end] {
			cs.Add(pending[id])
			for _, a := range byIncident[id] {
				cs.Add(a)
				attachments++
			}
		}

		if _, err := im.committer.Commit(ctx, who, cs); err != nil {
			return r, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}

		r.IncidentsImported += end - i
		r.AttachmentsImported += attachments
		r.Batches++

		im.log.WithFields(logrus.Fields{
			"batch":       r.Batches,
			"incidents":   end - i,
			"attachments": attachments,
		}).Info("legacy batch committed")
	}

	return r, nil
}

// convert turns rows into incidents, dropping invalid rows and rows that are
// already in the store.
func (im *Importer) convert(ctx context.Context, rows []incidentRow, r *Report) (map[uuid.UUID]*models.Incident, error) {
	out := make(map[uuid.UUID]*models.Incident, len(rows))

	for i := range rows {
		inc, err := toIncident(&rows[i])
		if err != nil {
			r.skip(rows[i].ID, err)
			continue
		}

		_, err = im.incidents.GetIncidentIncludingDeleted(ctx, inc.ID)
		switch {
		case err == nil:
			r.AlreadyPresent++
			continue
		case !errors.Is(err, models.ErrIncidentNotFound):
			return nil, fmt.Errorf("checking incident %s: %w", inc.ID, err)
		}

		out[inc.ID] = inc
	}

	return out, nil
}

// orderOf returns the ids of pending in export order.
func orderOf(rows []incidentRow, pending map[uuid.UUID]*models.Incident) []uuid.UUID {
	order := make([]uuid.UUID, 0, len(pending))
	for i := range rows {
		id, err := uuid.Parse(rows[i].ID)
		if err != nil {
			continue
		}

		if _, ok := pending[id]; ok {
			order = append(order, id)
		}
	}

	return order
}
