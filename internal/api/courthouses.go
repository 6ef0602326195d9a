package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/domain"
	"github.com/courtsec/courtsec/internal/middleware"
	"github.com/courtsec/courtsec/internal/models"
)

// CourthouseHandler serves the courthouse directory.
type CourthouseHandler struct {
	svc domain.CourthouseService
	log *logrus.Logger
}

// NewCourthouseHandler creates a CourthouseHandler.
func NewCourthouseHandler(svc domain.CourthouseService, log *logrus.Logger) *CourthouseHandler {
	return &CourthouseHandler{svc: svc, log: log}
}

// List handles GET /api/v1/courthouses.
func (h *CourthouseHandler) List(c *gin.Context) {
	courthouses, err := h.svc.ListCourthouses(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, "listing courthouses", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"courthouses": courthouses})
}

// Create handles POST /api/v1/courthouses.
func (h *CourthouseHandler) Create(c *gin.Context) {
	var req models.CreateCourthouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	ch, err := h.svc.CreateCourthouse(c.Request.Context(), middleware.Principal(c), req)
	if err != nil {
		respondServiceError(c, h.log, "creating courthouse", err)

		return
	}

	c.JSON(http.StatusCreated, ch)
}

// Delete handles DELETE /api/v1/courthouses/:id.
func (h *CourthouseHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteCourthouse(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondServiceError(c, h.log, "deleting courthouse", err)

		return
	}

	c.Status(http.StatusNoContent)
}
