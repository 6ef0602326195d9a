package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/courtsec/courtsec/internal/entity"
)

// readScope selects whether soft-deleted rows are visible to a read.
type readScope int

const (
	visibleOnly readScope = iota
	includeDeleted
)

// selectSQL builds a SELECT of every column of d. For kinds with a deleted
// flag the visibleOnly scope adds deleted = false ahead of conds.
func selectSQL(d *entity.Descriptor, scope readScope, conds ...string) string {
	where := make([]string, 0, len(conds)+1)

	if col := d.DeletedColumn(); col != "" && scope == visibleOnly {
		where = append(where, ident(col)+" = false")
	}

	where = append(where, conds...)

	q := "SELECT " + columnList(d) + " FROM " + table(d)
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	return q
}

// queryEntities runs query and scans every row through d's field table.
func queryEntities[T any, PT interface {
	*T
	entity.Entity
}](ctx context.Context, tx pgx.Tx, d *entity.Descriptor, query string, args ...any) ([]T, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", d.Kind, err)
	}
	defer rows.Close()

	out := make([]T, 0, 16)

	for rows.Next() {
		var v T
		if err := rows.Scan(d.Dests(PT(&v))...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", d.Kind, err)
		}

		out = append(out, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", d.Kind, err)
	}

	return out, nil
}

// queryEntity scans a single row. A missing row matches pgx.ErrNoRows.
func queryEntity[T any, PT interface {
	*T
	entity.Entity
}](ctx context.Context, tx pgx.Tx, d *entity.Descriptor, query string, args ...any) (*T, error) {
	var v T
	if err := tx.QueryRow(ctx, query, args...).Scan(d.Dests(PT(&v))...); err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.Kind, err)
	}

	return &v, nil
}
