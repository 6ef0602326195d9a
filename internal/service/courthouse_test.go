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

func TestCreateCourthouse(t *testing.T) {
	committer := &mockCommitter{}
	svc := NewCourthouseService(&mockCourthouseStore{}, committer, quietLogger())

	ch, err := svc.CreateCourthouse(context.Background(), identity.User("admin"), models.CreateCourthouseRequest{
		County: "Pima", Division: "Civil", Name: "Superior Court",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ch.Name != "Superior Court" {
		t.Errorf("unexpected courthouse %+v", ch)
	}

	if _, err := svc.CreateCourthouse(context.Background(), identity.User("admin"), models.CreateCourthouseRequest{}); !errors.Is(err, models.ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
}

func TestDeleteCourthouse(t *testing.T) {
	ch := &models.Courthouse{ID: uuid.New(), County: "Pima", Division: "Civil", Name: "Superior Court"}
	store := &mockCourthouseStore{getCourthouse: func(_ context.Context, id uuid.UUID) (*models.Courthouse, error) {
		if id != ch.ID {
			return nil, models.ErrCourthouseNotFound
		}
		return ch, nil
	}}

	committer := &mockCommitter{}
	svc := NewCourthouseService(store, committer, quietLogger())

	if err := svc.DeleteCourthouse(context.Background(), identity.User("admin"), ch.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entries := committer.last().Entries(); len(entries) != 1 || entries[0].Op != commit.Deleted {
		t.Errorf("expected one Deleted entry, got %+v", entries)
	}

	if err := svc.DeleteCourthouse(context.Background(), identity.User("admin"), uuid.New()); !errors.Is(err, models.ErrCourthouseNotFound) {
		t.Errorf("expected ErrCourthouseNotFound, got %v", err)
	}
}
