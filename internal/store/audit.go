package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/courtsec/courtsec/internal/models"
)

// AuditStore reads the audit log. Audit rows are only ever written by the
// commit coordinator through RecordStore; there is no update or delete path.
type AuditStore struct {
	Base
}

// NewAuditStore creates an AuditStore.
func NewAuditStore(base Base) *AuditStore {
	return &AuditStore{Base: base}
}

// buildAuditFilter builds the filter conditions and args from AuditQueryOpts.
func buildAuditFilter(opts models.AuditQueryOpts) (conds []string, args []any) {
	if opts.TableName != "" {
		args = append(args, opts.TableName)
		conds = append(conds, "table_name = $"+strconv.Itoa(len(args)))
	}

	if opts.PrimaryKey != "" {
		args = append(args, opts.PrimaryKey)
		conds = append(conds, "primary_key = $"+strconv.Itoa(len(args)))
	}

	if opts.Action != "" {
		args = append(args, opts.Action)
		conds = append(conds, "action = $"+strconv.Itoa(len(args)))
	}

	if opts.Since != nil {
		args = append(args, opts.Since.UTC())
		conds = append(conds, `"timestamp" >= $`+strconv.Itoa(len(args)))
	}

	return conds, args
}

// QueryAudit returns audit records matching the given filters, newest first.
// Returns records, hasMore flag, and any error.
func (s *AuditStore) QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditRecord, bool, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("querying audit log: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	conds, args := buildAuditFilter(opts)

	query := selectSQL(models.AuditFields, visibleOnly, conds...)
	query += fmt.Sprintf(` ORDER BY "timestamp" DESC, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit+1, offset)

	records, err := queryEntities[models.AuditRecord](ctx, tx, models.AuditFields, query, args...)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(records) > limit
	if hasMore {
		records = records[:limit]
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("committing audit query: %w", err)
	}

	return records, hasMore, nil
}
