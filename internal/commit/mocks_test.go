package commit_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/entity"
	"github.com/courtsec/courtsec/internal/models"
)

// memStore is an in-memory record store. Writes made inside a transaction
// become visible only when it commits.
type memStore struct {
	mu    sync.Mutex
	rows  map[string]entity.Entity
	audit []*models.AuditRecord

	beginErr  error
	commitErr error
	auditErr  error
	applyErr  func(w commit.Write) error

	// onApply runs after each successful Apply; tests use it to cancel.
	onApply func()

	begun      int
	commits    int
	rollbacks  int
	applyCalls int
	locks      []commit.LockMode
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]entity.Entity{}}
}

func rowKey(d *entity.Descriptor, e entity.Entity) string {
	return fmt.Sprintf("%s/%s", d.Kind, d.PrimaryKey(e))
}

// seed puts e into committed state without auditing it.
func (s *memStore) seed(d *entity.Descriptor, e entity.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[rowKey(d, e)] = d.Clone(e)
}

func (s *memStore) get(d *entity.Descriptor, key string) (entity.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.rows[fmt.Sprintf("%s/%s", d.Kind, key)]

	return e, ok
}

func (s *memStore) auditRows() []*models.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*models.AuditRecord(nil), s.audit...)
}

func (s *memStore) rowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.rows)
}

func (s *memStore) BeginTx(_ context.Context) (commit.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.begun++
	if s.beginErr != nil {
		return nil, s.beginErr
	}

	rows := make(map[string]entity.Entity, len(s.rows))
	for k, v := range s.rows {
		rows[k] = v
	}

	return &memTx{store: s, rows: rows}, nil
}

type memTx struct {
	store *memStore
	rows  map[string]entity.Entity
	audit []*models.AuditRecord
	done  bool
}

func (tx *memTx) Lock(ctx context.Context, d *entity.Descriptor, e entity.Entity, mode commit.LockMode) (entity.Entity, error) {
	tx.store.mu.Lock()
	tx.store.locks = append(tx.store.locks, mode)
	tx.store.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", commit.ErrStorageUnavailable, err)
	}

	cur, ok := tx.rows[rowKey(d, e)]
	if !ok || isDeleted(d, cur) {
		return nil, commit.ErrMissingRow
	}

	return d.Clone(cur), nil
}

func (tx *memTx) Children(ctx context.Context, d *entity.Descriptor, column string, parentKey any) ([]entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", commit.ErrStorageUnavailable, err)
	}

	f, ok := d.FieldNamed(column)
	if !ok {
		return nil, commit.ErrInvalidEntry
	}

	var out []entity.Entity

	for _, row := range tx.rows {
		if row.EntityKind() != d.Kind || isDeleted(d, row) || f.Value(row) != parentKey {
			continue
		}

		out = append(out, d.Clone(row))
	}

	sort.Slice(out, func(i, j int) bool { return d.PrimaryKey(out[i]) < d.PrimaryKey(out[j]) })

	return out, nil
}

func (tx *memTx) Apply(ctx context.Context, w commit.Write) (entity.Entity, error) {
	tx.store.mu.Lock()
	tx.store.applyCalls++
	applyErr, onApply := tx.store.applyErr, tx.store.onApply
	tx.store.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", commit.ErrStorageUnavailable, err)
	}

	if applyErr != nil {
		if err := applyErr(w); err != nil {
			return nil, err
		}
	}

	d := w.Descriptor
	stored := d.Clone(w.Entity)

	switch w.Op {
	case commit.Added:
		generate(d, stored)
		tx.rows[rowKey(d, stored)] = stored
	case commit.Modified:
		cur, ok := tx.rows[rowKey(d, stored)]
		if !ok || isDeleted(d, cur) {
			return nil, commit.ErrMissingRow
		}

		// Only the listed columns are written, like an UPDATE ... SET.
		merged := d.Clone(cur)
		for _, col := range w.Columns {
			f, ok := d.FieldNamed(col)
			if !ok {
				return nil, commit.ErrInvalidEntry
			}

			f.Copy(merged, w.Entity)
		}

		tx.rows[rowKey(d, stored)] = merged
		stored = merged
	case commit.Deleted:
		if _, ok := tx.rows[rowKey(d, stored)]; !ok {
			return nil, commit.ErrMissingRow
		}

		delete(tx.rows, rowKey(d, stored))
		stored = nil
	}

	if onApply != nil {
		onApply()
	}

	if stored == nil {
		return nil, nil
	}

	return d.Clone(stored), nil
}

func (tx *memTx) InsertAudit(_ context.Context, rec *models.AuditRecord) error {
	if tx.store.auditErr != nil {
		return tx.store.auditErr
	}

	tx.audit = append(tx.audit, rec)

	return nil
}

func (tx *memTx) Commit(ctx context.Context) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	if tx.done {
		return fmt.Errorf("%w: transaction closed", commit.ErrStorageUnavailable)
	}

	tx.done = true

	if tx.store.commitErr != nil {
		return tx.store.commitErr
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", commit.ErrStorageUnavailable, err)
	}

	tx.store.rows = tx.rows
	tx.store.audit = append(tx.store.audit, tx.audit...)
	tx.store.commits++

	return nil
}

func (tx *memTx) Rollback(_ context.Context) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	tx.store.rollbacks++
	tx.done = true

	return nil
}

// generate fills pending generated fields the way column defaults would.
func generate(d *entity.Descriptor, e entity.Entity) {
	for _, f := range d.Fields {
		if !f.Pending(e) {
			continue
		}

		switch dst := f.Dest(e).(type) {
		case *uuid.UUID:
			*dst = uuid.New()
		case *time.Time:
			*dst = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		}
	}
}

func isDeleted(d *entity.Descriptor, e entity.Entity) bool {
	col := d.DeletedColumn()
	if col == "" {
		return false
	}

	for _, f := range d.Fields {
		if f.Name == col {
			return f.Value(e) == true
		}
	}

	return false
}
