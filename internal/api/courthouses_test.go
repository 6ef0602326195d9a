package api_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/courtsec/courtsec/internal/api"
	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/identity"
	"github.com/courtsec/courtsec/internal/models"
)

func TestCourthouseRoutes(t *testing.T) {
	t.Parallel()

	svc := &mockCourthouseService{
		listFn: func(context.Context) ([]models.Courthouse, error) {
			return []models.Courthouse{{ID: uuid.New(), Name: "Superior Court"}}, nil
		},
		createFn: func(_ context.Context, _ identity.Provider, req models.CreateCourthouseRequest) (*models.Courthouse, error) {
			if req.Name == "Duplicate" {
				return nil, fmt.Errorf("creating courthouse: %w", commit.ErrConstraintViolation)
			}

			return &models.Courthouse{ID: uuid.New(), Name: req.Name}, nil
		},
		deleteFn: func(context.Context, identity.Provider, uuid.UUID) error { return nil },
	}

	r := newTestRouter()
	h := api.NewCourthouseHandler(svc, testLogger())
	r.GET("/courthouses", h.List)
	r.POST("/courthouses", h.Create)
	r.DELETE("/courthouses/:id", h.Delete)

	tests := []struct {
		name, method, path, body string
		status                   int
	}{
		{"list", http.MethodGet, "/courthouses", "", http.StatusOK},
		{"create", http.MethodPost, "/courthouses", `{"county":"Pima","division":"Civil","name":"Superior Court"}`, http.StatusCreated},
		{"create duplicate", http.MethodPost, "/courthouses", `{"county":"Pima","division":"Civil","name":"Duplicate"}`, http.StatusConflict},
		{"create invalid", http.MethodPost, "/courthouses", `{"county":"Pima"}`, http.StatusBadRequest},
		{"delete", http.MethodDelete, "/courthouses/" + uuid.NewString(), "", http.StatusNoContent},
		{"delete bad id", http.MethodDelete, "/courthouses/42", "", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(r, tc.method, tc.path, tc.body)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
		})
	}
}
