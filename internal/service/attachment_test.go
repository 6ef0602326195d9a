package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/identity"
	"github.com/courtsec/courtsec/internal/models"
)

func TestAddAttachment(t *testing.T) {
	incidentID := uuid.New()
	incidents := &mockIncidentStore{getIncident: func(_ context.Context, id uuid.UUID) (*models.Incident, error) {
		if id != incidentID {
			return nil, models.ErrIncidentNotFound
		}
		return liveIncident(id), nil
	}}

	tests := []struct {
		name         string
		who          identity.Provider
		wantUploader string
	}{
		{"authenticated caller", identity.User("deputy.ruiz"), "deputy.ruiz"},
		{"anonymous falls back", identity.Anonymous, "system"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			committer := &mockCommitter{}
			svc := NewAttachmentService(incidents, &mockAttachmentStore{}, committer, "system", quietLogger())

			att, err := svc.AddAttachment(context.Background(), tc.who, incidentID, models.CreateAttachmentRequest{
				FileName:    "hallway.jpg",
				SizeInBytes: 2048,
				StoragePath: "incidents/hallway.jpg",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if att.UploadedBy != tc.wantUploader {
				t.Errorf("uploaded_by = %q, want %q", att.UploadedBy, tc.wantUploader)
			}

			if att.IncidentID != incidentID {
				t.Errorf("attachment not linked to incident")
			}

			if att.ContentType != "application/octet-stream" {
				t.Errorf("default content type not applied: %q", att.ContentType)
			}

			entries := committer.last().Entries()
			if len(entries) != 2 || entries[0].Op != commit.Required || entries[1].Op != commit.Added {
				t.Fatalf("expected Required incident then Added attachment, got %+v", entries)
			}

			if inc, ok := entries[0].Before.(*models.Incident); !ok || inc.ID != incidentID {
				t.Errorf("required entry = %+v, want the parent incident", entries[0].Before)
			}
		})
	}
}

func TestAddAttachment_Errors(t *testing.T) {
	valid := models.CreateAttachmentRequest{FileName: "a.txt", StoragePath: "p/a.txt"}

	tests := []struct {
		name   string
		req    models.CreateAttachmentRequest
		getErr error
		want   error
	}{
		{"missing file name", models.CreateAttachmentRequest{StoragePath: "p"}, nil, models.ErrMissingFileName},
		{"negative size", models.CreateAttachmentRequest{FileName: "a", StoragePath: "p", SizeInBytes: -1}, nil, models.ErrNegativeSize},
		{"incident missing", valid, models.ErrIncidentNotFound, models.ErrIncidentNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			incidents := &mockIncidentStore{getIncident: func(_ context.Context, id uuid.UUID) (*models.Incident, error) {
				if tc.getErr != nil {
					return nil, tc.getErr
				}
				return liveIncident(id), nil
			}}
			committer := &mockCommitter{}
			svc := NewAttachmentService(incidents, &mockAttachmentStore{}, committer, "system", quietLogger())

			_, err := svc.AddAttachment(context.Background(), identity.Anonymous, uuid.New(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}

			if committer.last() != nil {
				t.Error("nothing should be committed")
			}
		})
	}
}

func TestAddAttachment_IncidentDeletedBeforeCommit(t *testing.T) {
	incidents := &mockIncidentStore{getIncident: func(_ context.Context, id uuid.UUID) (*models.Incident, error) {
		return liveIncident(id), nil
	}}
	committer := &mockCommitter{err: commit.ErrMissingRow}
	svc := NewAttachmentService(incidents, &mockAttachmentStore{}, committer, "system", quietLogger())

	_, err := svc.AddAttachment(context.Background(), identity.User("deputy.ruiz"), uuid.New(),
		models.CreateAttachmentRequest{FileName: "a.txt", StoragePath: "p/a.txt"})
	if !errors.Is(err, models.ErrIncidentNotFound) || !errors.Is(err, commit.ErrMissingRow) {
		t.Fatalf("expected ErrIncidentNotFound wrapping ErrMissingRow, got %v", err)
	}
}

func TestDeleteAttachment(t *testing.T) {
	att := &models.Attachment{ID: uuid.New(), IncidentID: uuid.New(), FileName: "a.jpg"}
	attachments := &mockAttachmentStore{getAttachment: func(_ context.Context, id uuid.UUID) (*models.Attachment, error) {
		if id != att.ID {
			return nil, models.ErrAttachmentNotFound
		}
		return att, nil
	}}

	t.Run("stages delete", func(t *testing.T) {
		committer := &mockCommitter{}
		svc := NewAttachmentService(&mockIncidentStore{}, attachments, committer, "system", quietLogger())

		if err := svc.DeleteAttachment(context.Background(), identity.User("sgt.lee"), att.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entries := committer.last().Entries()
		if len(entries) != 1 || entries[0].Op != commit.Deleted || entries[0].Before != att {
			t.Errorf("unexpected entries %+v", entries)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := NewAttachmentService(&mockIncidentStore{}, attachments, &mockCommitter{}, "system", quietLogger())

		err := svc.DeleteAttachment(context.Background(), identity.Anonymous, uuid.New())
		if !errors.Is(err, models.ErrAttachmentNotFound) {
			t.Fatalf("expected ErrAttachmentNotFound, got %v", err)
		}
	})

	t.Run("vanished before commit", func(t *testing.T) {
		committer := &mockCommitter{err: commit.ErrMissingRow}
		svc := NewAttachmentService(&mockIncidentStore{}, attachments, committer, "system", quietLogger())

		err := svc.DeleteAttachment(context.Background(), identity.Anonymous, att.ID)
		if !errors.Is(err, models.ErrAttachmentNotFound) || !errors.Is(err, commit.ErrMissingRow) {
			t.Fatalf("expected both not-found errors, got %v", err)
		}
	})
}
