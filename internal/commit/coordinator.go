package commit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/audit"
	"github.com/courtsec/courtsec/internal/entity"
	"github.com/courtsec/courtsec/internal/identity"
	"github.com/courtsec/courtsec/internal/metrics"
	"github.com/courtsec/courtsec/internal/models"
)

// Coordinator commits change sets. Each commit rewrites policy-covered
// deletes into soft deletes, stamps modification times, diffs every entry and
// writes the entity rows together with their audit records in one
// transaction. A Coordinator holds no mutable state and may be shared.
//
// Updates and deletes lock their row and re-read it inside the transaction.
// An update writes only the columns the caller changed, applied to the row's
// current state, so concurrent edits of different columns both survive.
type Coordinator struct {
	store    RecordStore
	registry *entity.Registry
	policy   entity.SoftDeletePolicy
	cascades []entity.Cascade
	log      *logrus.Logger
	now      func() time.Time
	fallback string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces the time source used for stamps and audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithFallbackIdentity sets the identity recorded for unauthenticated commits.
func WithFallbackIdentity(id string) Option {
	return func(c *Coordinator) {
		if id != "" {
			c.fallback = id
		}
	}
}

// WithCascades makes soft deletes of each parent kind carry over to its live
// children in the same transaction.
func WithCascades(cascades ...entity.Cascade) Option {
	return func(c *Coordinator) { c.cascades = append(c.cascades, cascades...) }
}

// NewCoordinator returns a coordinator writing to store. The policy must only
// name registered kinds that carry a deleted flag.
func NewCoordinator(
	store RecordStore, registry *entity.Registry, policy entity.SoftDeletePolicy,
	log *logrus.Logger, opts ...Option,
) (*Coordinator, error) {
	if err := policy.Validate(registry); err != nil {
		return nil, fmt.Errorf("validating soft-delete policy: %w", err)
	}

	c := &Coordinator{
		store:    store,
		registry: registry,
		policy:   policy,
		log:      log,
		now:      time.Now,
		fallback: identity.DefaultSystem,
	}

	for _, opt := range opts {
		opt(c)
	}

	for _, cc := range c.cascades {
		if err := cc.Validate(registry, policy); err != nil {
			return nil, fmt.Errorf("validating cascade: %w", err)
		}
	}

	return c, nil
}

// Result is the outcome of a successful commit. Entities is indexed like the
// change set: the stored state for each written entry, the locked state for
// required entries, the Before state for tracked entries, nil after a
// physical delete. Audit also holds the records of cascaded deletes.
type Result struct {
	Entities []entity.Entity
	Audit    []*models.AuditRecord
}

// step is a planned write. Inserts carry their prepared audit record; every
// other write is diffed once its row is locked.
type step struct {
	index  int
	desc   *entity.Descriptor
	op     Op
	action models.AuditAction
	before entity.Entity
	state  entity.Entity
	record *models.AuditRecord
}

// run is the state of one commit's transaction.
type run struct {
	tx    Tx
	actor string
	now   time.Time
	res   *Result
}

// Commit applies cs on behalf of who. Either every entity write and every
// audit record lands, or none does.
func (c *Coordinator) Commit(ctx context.Context, who identity.Provider, cs *ChangeSet) (*Result, error) {
	if cs == nil {
		return nil, fmt.Errorf("%w: nil change set", ErrInvalidEntry)
	}

	actor := identity.Resolve(who, c.fallback)
	now := c.now().UTC().Truncate(time.Microsecond)

	steps, err := c.plan(cs.entries, actor, now)
	if err != nil {
		c.observe(err)
		return nil, err
	}

	res := &Result{Entities: make([]entity.Entity, len(cs.entries))}
	for i, e := range cs.entries {
		if e.Op == Unchanged {
			res.Entities[i] = e.Before
		}
	}

	if len(steps) == 0 {
		return res, nil
	}

	start := time.Now()

	if err := c.write(ctx, steps, &run{actor: actor, now: now, res: res}); err != nil {
		c.observe(err)
		c.log.WithFields(logrus.Fields{
			"actor":   actor,
			"entries": len(steps),
		}).WithError(err).Warn("commit rolled back")

		return nil, err
	}

	metrics.CommitDuration.Observe(time.Since(start).Seconds())
	c.observe(nil)

	for _, rec := range res.Audit {
		metrics.AuditRecordsTotal.WithLabelValues(rec.TableName, string(rec.Action)).Inc()
	}

	c.log.WithFields(logrus.Fields{
		"actor":   actor,
		"entries": len(steps),
		"audit":   len(res.Audit),
	}).Debug("change set committed")

	return res, nil
}

// plan validates entries ahead of the transaction, rewrites policy-covered
// deletes and prepares the audit records of inserts.
func (c *Coordinator) plan(entries []Entry, actor string, now time.Time) ([]step, error) {
	steps := make([]step, 0, len(entries))

	for i, e := range entries {
		if e.Op == Unchanged {
			continue
		}

		s, err := c.planEntry(i, e, actor, now)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		steps = append(steps, s)
	}

	return steps, nil
}

func (c *Coordinator) planEntry(i int, e Entry, actor string, now time.Time) (step, error) {
	subj := e.subject()
	if subj == nil {
		return step{}, fmt.Errorf("%w: %s entry has no entity", ErrInvalidEntry, e.Op)
	}

	desc, ok := c.registry.Lookup(subj.EntityKind())
	if !ok {
		return step{}, fmt.Errorf("%w: unregistered kind %q", ErrInvalidEntry, subj.EntityKind())
	}

	s := step{index: i, desc: desc, op: e.Op, before: e.Before}

	switch e.Op {
	case Added:
		if e.After == nil {
			return step{}, fmt.Errorf("%w: added %s has no state", ErrInvalidEntry, desc.Kind)
		}

		s.action = models.ActionInsert
		s.state = e.After
		s.before = nil

	case Modified:
		if e.Before == nil || e.After == nil {
			return step{}, fmt.Errorf("%w: modified %s needs both states", ErrInvalidEntry, desc.Kind)
		}

		if e.Before.EntityKind() != e.After.EntityKind() {
			return step{}, fmt.Errorf("%w: modified entry changes kind", ErrInvalidEntry)
		}

		key := desc.PrimaryKey(e.Before)
		if key == "" || key != desc.PrimaryKey(e.After) {
			return step{}, fmt.Errorf("%w: modified %s must keep its primary key", ErrInvalidEntry, desc.Kind)
		}

		s.action = models.ActionUpdate
		s.state = e.After

	case Deleted:
		if e.Before == nil {
			return step{}, fmt.Errorf("%w: deleted %s has no persisted state", ErrInvalidEntry, desc.Kind)
		}

		if desc.PrimaryKey(e.Before) == "" {
			return step{}, fmt.Errorf("%w: deleted %s has no primary key", ErrInvalidEntry, desc.Kind)
		}

		s.action = models.ActionDelete
		if c.policy.ShouldSoftDelete(desc.Kind) {
			s.op = Modified
			s.action = models.ActionSoftDelete
		}

	case Required:
		if e.Before == nil || desc.PrimaryKey(e.Before) == "" {
			return step{}, fmt.Errorf("%w: required %s has no primary key", ErrInvalidEntry, desc.Kind)
		}

	default:
		return step{}, fmt.Errorf("%w: unknown operation %d", ErrInvalidEntry, int(e.Op))
	}

	if desc.Kind == models.KindAuditLog {
		if s.op != Added {
			return step{}, fmt.Errorf("%w: audit records are immutable", ErrInvalidEntry)
		}

		if _, ok := s.state.(*models.AuditRecord); !ok {
			return step{}, fmt.Errorf("%w: %T staged as an audit record", ErrInvalidEntry, s.state)
		}

		return s, nil
	}

	if s.op != Added {
		return s, nil
	}

	rec, err := audit.Build(audit.Change{
		Descriptor: desc,
		Action:     s.action,
		After:      s.state,
	}, actor, now)
	if err != nil {
		return step{}, err
	}

	s.record = rec

	return s, nil
}

// write runs the planned steps in one transaction. Soft deletes cascade once
// every staged entry is written, so children deleted explicitly are skipped.
func (c *Coordinator) write(ctx context.Context, steps []step, r *run) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	tx, err := c.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	r.tx = tx

	committed := false
	defer func() {
		if committed {
			return
		}

		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			c.log.WithError(rbErr).Warn("rollback failed")
		}
	}()

	var deleted []step

	for _, s := range steps {
		stored, err := c.writeStep(ctx, r, s)
		if err != nil {
			return err
		}

		r.res.Entities[s.index] = stored

		if s.action == models.ActionSoftDelete {
			s.state = stored
			deleted = append(deleted, s)
		}
	}

	for _, s := range deleted {
		if err := c.cascade(ctx, r, s.desc, s.state); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	committed = true

	return nil
}

func (c *Coordinator) writeStep(ctx context.Context, r *run, s step) (entity.Entity, error) {
	d := s.desc

	// Staged audit records are written as-is and never audited themselves.
	if d.Kind == models.KindAuditLog {
		rec := s.state.(*models.AuditRecord)
		if err := r.tx.InsertAudit(ctx, rec); err != nil {
			return nil, fmt.Errorf("writing staged audit record: %w", err)
		}

		r.res.Audit = append(r.res.Audit, rec)

		return rec, nil
	}

	switch s.op {
	case Added:
		stored, err := r.tx.Apply(ctx, Write{Op: Added, Descriptor: d, Entity: s.state})
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", d.Kind, err)
		}

		if s.record.PrimaryKey == "" && stored != nil {
			s.record.PrimaryKey = d.PrimaryKey(stored)
		}

		if err := r.tx.InsertAudit(ctx, s.record); err != nil {
			return nil, fmt.Errorf("writing audit record for %s: %w", d.Kind, err)
		}

		r.res.Audit = append(r.res.Audit, s.record)

		return stored, nil

	case Required:
		current, err := r.tx.Lock(ctx, d, s.before, LockShare)
		if err != nil {
			return nil, fmt.Errorf("locking %s: %w", d.Kind, err)
		}

		return current, nil
	}

	current, err := r.tx.Lock(ctx, d, s.before, LockUpdate)
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", d.Kind, err)
	}

	switch s.action {
	case models.ActionDelete:
		if _, err := r.tx.Apply(ctx, Write{Op: Deleted, Descriptor: d, Entity: current}); err != nil {
			return nil, fmt.Errorf("writing %s: %w", d.Kind, err)
		}

		return nil, c.record(ctx, r, audit.Change{Descriptor: d, Action: s.action, Before: current})

	case models.ActionSoftDelete:
		return c.softDelete(ctx, r, d, current)
	}

	// Only the columns the caller changed are carried onto the locked row.
	next := d.Clone(current)

	var cols []string
	for _, f := range d.Changed(s.before, s.state) {
		if f.Name == d.ModifiedColumn() {
			continue
		}

		f.Copy(next, s.state)
		cols = append(cols, f.Name)
	}

	return c.update(ctx, r, d, models.ActionUpdate, current, next, cols)
}

// softDelete flags a locked row as deleted.
func (c *Coordinator) softDelete(ctx context.Context, r *run, d *entity.Descriptor, current entity.Entity) (entity.Entity, error) {
	next := d.Clone(current)
	d.MarkDeleted(next)

	return c.update(ctx, r, d, models.ActionSoftDelete, current, next, []string{d.DeletedColumn()})
}

// update stamps next, writes cols of it over the locked row current and
// audits the difference. A write with no columns leaves the row as it is.
func (c *Coordinator) update(
	ctx context.Context, r *run, d *entity.Descriptor, action models.AuditAction,
	current, next entity.Entity, cols []string,
) (entity.Entity, error) {
	if d.Touch(next, r.now) {
		cols = append(cols, d.ModifiedColumn())
	}

	stored := current
	if len(cols) > 0 {
		var err error

		stored, err = r.tx.Apply(ctx, Write{Op: Modified, Descriptor: d, Entity: next, Columns: cols})
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", d.Kind, err)
		}
	}

	if err := c.record(ctx, r, audit.Change{Descriptor: d, Action: action, Before: current, After: next}); err != nil {
		return nil, err
	}

	return stored, nil
}

// record builds and writes the audit record of ch.
func (c *Coordinator) record(ctx context.Context, r *run, ch audit.Change) error {
	rec, err := audit.Build(ch, r.actor, r.now)
	if err != nil {
		return err
	}

	if err := r.tx.InsertAudit(ctx, rec); err != nil {
		return fmt.Errorf("writing audit record for %s: %w", ch.Descriptor.Kind, err)
	}

	r.res.Audit = append(r.res.Audit, rec)

	return nil
}

// cascade soft-deletes the live children of a soft-deleted parent row.
func (c *Coordinator) cascade(ctx context.Context, r *run, d *entity.Descriptor, parent entity.Entity) error {
	key, ok := d.KeyField()
	if !ok || parent == nil {
		return nil
	}

	for _, cc := range c.cascades {
		if cc.Parent != d.Kind {
			continue
		}

		child, _ := c.registry.Lookup(cc.Child)

		rows, err := r.tx.Children(ctx, child, cc.Column, key.Value(parent))
		if err != nil {
			return fmt.Errorf("locking %s of %s: %w", cc.Child, d.Kind, err)
		}

		for _, row := range rows {
			stored, err := c.softDelete(ctx, r, child, row)
			if err != nil {
				return err
			}

			if err := c.cascade(ctx, r, child, stored); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *Coordinator) observe(err error) {
	outcome := "committed"

	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidEntry):
		outcome = "invalid"
	case errors.Is(err, ErrSerialization):
		outcome = "serialization"
	case errors.Is(err, ErrConstraintViolation):
		outcome = "constraint"
	case errors.Is(err, ErrMissingRow):
		outcome = "missing_row"
	default:
		outcome = "storage"
	}

	metrics.CommitsTotal.WithLabelValues(outcome).Inc()
}
