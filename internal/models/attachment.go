package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/courtsec/courtsec/internal/entity"
)

// Attachment is the metadata of a file filed against an incident. The blob
// itself lives in external storage under StoragePath.
type Attachment struct {
	ID          uuid.UUID `json:"id"`
	IncidentID  uuid.UUID `json:"incident_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeInBytes int64     `json:"size_in_bytes"`
	StoragePath string    `json:"storage_path"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UploadedBy  string    `json:"uploaded_by"`
	Deleted     bool      `json:"deleted"`
}

// EntityKind implements entity.Entity.
func (*Attachment) EntityKind() entity.Kind { return KindAttachment }

// CreateAttachmentRequest registers an already-stored file against an incident.
type CreateAttachmentRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeInBytes int64  `json:"size_in_bytes"`
	StoragePath string `json:"storage_path"`
}

// Validate checks CreateAttachmentRequest fields.
func (r *CreateAttachmentRequest) Validate() error {
	if r.FileName == "" {
		return ErrMissingFileName
	}

	if len(r.FileName) > 255 {
		return ErrFieldTooLong("file_name", 255)
	}

	if r.StoragePath == "" {
		return ErrMissingStoragePath
	}

	if len(r.StoragePath) > 1024 {
		return ErrFieldTooLong("storage_path", 1024)
	}

	if r.SizeInBytes < 0 {
		return ErrNegativeSize
	}

	return nil
}

// NewAttachment builds the attachment row for incidentID uploaded by actor.
func (r *CreateAttachmentRequest) NewAttachment(incidentID uuid.UUID, actor string) *Attachment {
	contentType := r.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &Attachment{
		IncidentID:  incidentID,
		FileName:    r.FileName,
		ContentType: contentType,
		SizeInBytes: r.SizeInBytes,
		StoragePath: r.StoragePath,
		UploadedBy:  actor,
	}
}
