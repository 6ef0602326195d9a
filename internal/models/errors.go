package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation.
var (
	ErrMissingIncidentDate = errors.New("incident_date is required")
	ErrMissingReporter     = errors.New("reporter first and last name are required")
	ErrMissingNarrative    = errors.New("narrative is required")
	ErrInvalidStatus       = errors.New("status is not a known incident status")
	ErrInvalidType         = errors.New("type is not a known incident type")
	ErrMissingFileName     = errors.New("file_name is required")
	ErrMissingStoragePath  = errors.New("storage_path is required")
	ErrNegativeSize        = errors.New("size_in_bytes must not be negative")
	ErrMissingName         = errors.New("name is required")
	ErrInvalidAction       = errors.New("action is not a known audit action")
)

// Sentinel errors for entity lookups.
var (
	ErrIncidentNotFound   = errors.New("incident not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrCourthouseNotFound = errors.New("courthouse not found")
)

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}
