// Package store provides PostgreSQL data access for courtsec.
//
// Writes go through RecordStore, the transaction boundary used by the commit
// coordinator; nothing else in this package mutates entity rows. The read
// stores (incidents, attachments, courthouses, audit) apply the soft-delete
// read filter on every query unless an entry point is explicitly named
// IncludingDeleted.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/dbpool"
)

const defaultQueryTimeout = 30 * time.Second

// maxListLimit is a defense-in-depth cap on limit values for list queries.
const maxListLimit = 1000

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// beginReadTx starts a read-only transaction.
func (b *Base) beginReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}

	return tx, nil
}

// clampPage normalises limit and offset for list queries.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}

	if limit > maxListLimit {
		limit = maxListLimit
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// classify maps a pgx error onto the commit sentinels. Constraint failures
// (SQLSTATE class 23) become ErrConstraintViolation; connection, resource and
// cancellation failures become ErrStorageUnavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		class := pgErr.Code
		if len(class) >= 2 {
			class = class[:2]
		}

		switch class {
		case "23":
			return fmt.Errorf("%w: %s on %s: %w", commit.ErrConstraintViolation, pgErr.ConstraintName, pgErr.TableName, err)
		case "08", "40", "53", "57", "58":
			return fmt.Errorf("%w: %w", commit.ErrStorageUnavailable, err)
		default:
			return err
		}
	}

	return fmt.Errorf("%w: %w", commit.ErrStorageUnavailable, err)
}
