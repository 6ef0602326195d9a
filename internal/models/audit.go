package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/courtsec/courtsec/internal/entity"
)

// AuditAction labels what a write did to its subject row.
type AuditAction string

// Audit actions. A delete rewritten into a flag update is always labelled
// ActionSoftDelete, never ActionUpdate.
const (
	ActionInsert     AuditAction = "Insert"
	ActionUpdate     AuditAction = "Update"
	ActionSoftDelete AuditAction = "SoftDelete"
	ActionDelete     AuditAction = "Delete"
)

// Valid reports whether a is a known action.
func (a AuditAction) Valid() bool {
	switch a {
	case ActionInsert, ActionUpdate, ActionSoftDelete, ActionDelete:
		return true
	}

	return false
}

// AuditRecord is one immutable audit log row. OldValues and NewValues hold a
// JSON object, or nil when the corresponding side had no values.
type AuditRecord struct {
	ID         uuid.UUID       `json:"id"`
	TableName  string          `json:"table_name"`
	PrimaryKey string          `json:"primary_key"`
	Action     AuditAction     `json:"action"`
	OldValues  json.RawMessage `json:"old_values"`
	NewValues  json.RawMessage `json:"new_values"`
	Timestamp  time.Time       `json:"timestamp"`
	UserID     string          `json:"user_id"`
}

// EntityKind implements entity.Entity.
func (*AuditRecord) EntityKind() entity.Kind { return KindAuditLog }

// AuditQueryOpts holds filters for querying the audit log.
type AuditQueryOpts struct {
	TableName  string
	PrimaryKey string
	Action     AuditAction
	Since      *time.Time
	Limit      int
	Offset     int
}
