package commit

import (
	"context"

	"github.com/courtsec/courtsec/internal/entity"
	"github.com/courtsec/courtsec/internal/models"
)

// Write is one entity write inside a transaction. For Added and Modified,
// Entity is the state to persist; for Deleted it is the row to remove.
//
// A Modified write sets only Columns. The row is matched by primary key and
// must not be soft-deleted.
type Write struct {
	Op         Op
	Descriptor *entity.Descriptor
	Entity     entity.Entity
	Columns    []string
}

// LockMode selects the row lock taken by Tx.Lock.
type LockMode int

// Row lock modes.
const (
	// LockUpdate blocks every other writer of the row until commit.
	LockUpdate LockMode = iota
	// LockShare keeps the row from being changed or deleted until commit
	// while letting other readers lock it too.
	LockShare
)

func (m LockMode) String() string {
	if m == LockShare {
		return "share"
	}

	return "update"
}

// RecordStore opens write transactions.
type RecordStore interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is a write transaction. Implementations classify failures into the
// sentinel errors of this package.
type Tx interface {
	// Lock locks the live row with e's primary key and returns its current
	// state. A missing or soft-deleted row returns ErrMissingRow.
	Lock(ctx context.Context, d *entity.Descriptor, e entity.Entity, mode LockMode) (entity.Entity, error)
	// Children locks for update and returns the live rows of d whose column
	// equals parentKey.
	Children(ctx context.Context, d *entity.Descriptor, column string, parentKey any) ([]entity.Entity, error)
	// Apply performs w and returns the row as stored, or nil after a
	// physical delete. A write matching no row returns ErrMissingRow.
	Apply(ctx context.Context, w Write) (entity.Entity, error)
	// InsertAudit appends an audit record.
	InsertAudit(ctx context.Context, rec *models.AuditRecord) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
