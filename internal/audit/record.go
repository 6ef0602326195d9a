package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/courtsec/courtsec/internal/entity"
	"github.com/courtsec/courtsec/internal/models"
)

// ErrSerialization indicates a diff could not be encoded for the audit log.
var ErrSerialization = errors.New("audit payload serialization failed")

// Change is one entity mutation as the recorder sees it.
type Change struct {
	Descriptor *entity.Descriptor
	Action     models.AuditAction
	Before     entity.Entity
	After      entity.Entity
}

// Subject returns the state the primary key is read from: the new state when
// there is one, otherwise the prior state.
func (c Change) Subject() entity.Entity {
	if c.After != nil {
		return c.After
	}

	return c.Before
}

// Build diffs the change and returns its audit record attributed to actor at
// ts. Empty value maps are stored as null. An unresolvable primary key is
// recorded as an empty string.
func Build(c Change, actor string, ts time.Time) (*models.AuditRecord, error) {
	oldValues, newValues := Diff(c.Descriptor, c.Action, c.Before, c.After)

	oldJSON, err := encode(oldValues)
	if err != nil {
		return nil, fmt.Errorf("encoding old values of %s: %w", c.Descriptor.Kind, err)
	}

	newJSON, err := encode(newValues)
	if err != nil {
		return nil, fmt.Errorf("encoding new values of %s: %w", c.Descriptor.Kind, err)
	}

	return &models.AuditRecord{
		ID:         uuid.New(),
		TableName:  string(c.Descriptor.Kind),
		PrimaryKey: c.Descriptor.PrimaryKey(c.Subject()),
		Action:     c.Action,
		OldValues:  oldJSON,
		NewValues:  newJSON,
		Timestamp:  ts,
		UserID:     actor,
	}, nil
}

func encode(v Values) (json.RawMessage, error) {
	if len(v) == 0 {
		return nil, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	return b, nil
}
