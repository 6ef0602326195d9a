package commit

import (
	"errors"

	"github.com/courtsec/courtsec/internal/audit"
)

// Commit failures. Every one of them means nothing was applied.
var (
	// ErrStorageUnavailable means storage could not be reached or the
	// transaction could not be carried to commit, including cancellation.
	ErrStorageUnavailable = errors.New("record store unavailable")

	// ErrConstraintViolation means a write broke a uniqueness, foreign key,
	// not-null or check rule.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrSerialization means an audit payload could not be encoded.
	ErrSerialization = audit.ErrSerialization

	// ErrInvalidEntry means the change set itself is malformed.
	ErrInvalidEntry = errors.New("invalid change set entry")

	// ErrMissingRow means an update or delete matched no live row.
	ErrMissingRow = errors.New("row to change does not exist")
)
