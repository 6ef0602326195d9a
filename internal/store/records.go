package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/entity"
	"github.com/courtsec/courtsec/internal/models"
)

// RecordStore is the write side of the database, used by the commit
// coordinator as its transaction boundary.
type RecordStore struct {
	Base
}

// NewRecordStore creates a RecordStore.
func NewRecordStore(base Base) *RecordStore {
	return &RecordStore{Base: base}
}

// BeginTx implements commit.RecordStore.
func (s *RecordStore) BeginTx(ctx context.Context) (commit.Tx, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, classify(err)
	}

	return &recordTx{tx: tx}, nil
}

// recordTx adapts a pgx transaction to commit.Tx.
type recordTx struct {
	tx pgx.Tx
}

// Apply implements commit.Tx.
func (t *recordTx) Apply(ctx context.Context, w commit.Write) (entity.Entity, error) {
	d := w.Descriptor
	if d.Kind == models.KindAuditLog {
		return nil, fmt.Errorf("%w: audit rows are written with InsertAudit", commit.ErrInvalidEntry)
	}

	var (
		query string
		args  []any
		err   error
	)

	switch w.Op {
	case commit.Added:
		query, args = insertSQL(d, w.Entity)
	case commit.Modified:
		query, args, err = updateSQL(d, w.Entity, w.Columns)
	case commit.Deleted:
		return nil, t.delete(ctx, d, w.Entity)
	default:
		return nil, fmt.Errorf("%w: cannot apply %s", commit.ErrInvalidEntry, w.Op)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", commit.ErrInvalidEntry, err)
	}

	stored := d.New()
	if err := t.tx.QueryRow(ctx, query, args...).Scan(d.Dests(stored)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %s", commit.ErrMissingRow, d.Kind, d.PrimaryKey(w.Entity))
		}

		return nil, classify(err)
	}

	return stored, nil
}

// Lock implements commit.Tx.
func (t *recordTx) Lock(
	ctx context.Context, d *entity.Descriptor, e entity.Entity, mode commit.LockMode,
) (entity.Entity, error) {
	query, args, err := lockSQL(d, e, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", commit.ErrInvalidEntry, err)
	}

	current := d.New()
	if err := t.tx.QueryRow(ctx, query, args...).Scan(d.Dests(current)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %s", commit.ErrMissingRow, d.Kind, d.PrimaryKey(e))
		}

		return nil, classify(err)
	}

	return current, nil
}

// Children implements commit.Tx.
func (t *recordTx) Children(
	ctx context.Context, d *entity.Descriptor, column string, parentKey any,
) ([]entity.Entity, error) {
	query, err := childrenSQL(d, column)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", commit.ErrInvalidEntry, err)
	}

	rows, err := t.tx.Query(ctx, query, parentKey)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []entity.Entity

	for rows.Next() {
		row := d.New()
		if err := rows.Scan(d.Dests(row)...); err != nil {
			return nil, classify(err)
		}

		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return out, nil
}

func (t *recordTx) delete(ctx context.Context, d *entity.Descriptor, e entity.Entity) error {
	query, args, err := deleteSQL(d, e)
	if err != nil {
		return fmt.Errorf("%w: %w", commit.ErrInvalidEntry, err)
	}

	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return classify(err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", commit.ErrMissingRow, d.Kind, d.PrimaryKey(e))
	}

	return nil
}

// InsertAudit implements commit.Tx.
func (t *recordTx) InsertAudit(ctx context.Context, rec *models.AuditRecord) error {
	query, args := insertSQL(models.AuditFields, rec)

	if _, err := t.tx.Exec(ctx, query, args...); err != nil {
		return classify(err)
	}

	return nil
}

// Commit implements commit.Tx.
func (t *recordTx) Commit(ctx context.Context) error {
	return classify(t.tx.Commit(ctx))
}

// Rollback implements commit.Tx. Rolling back a finished transaction is a no-op.
func (t *recordTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rolling back: %w", err)
	}

	return nil
}
