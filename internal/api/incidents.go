package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/domain"
	"github.com/courtsec/courtsec/internal/middleware"
	"github.com/courtsec/courtsec/internal/models"
)

// IncidentHandler serves incident endpoints.
type IncidentHandler struct {
	svc domain.IncidentService
	log *logrus.Logger
}

// NewIncidentHandler creates an IncidentHandler.
func NewIncidentHandler(svc domain.IncidentService, log *logrus.Logger) *IncidentHandler {
	return &IncidentHandler{svc: svc, log: log}
}

func listOpts(c *gin.Context) models.IncidentListOpts {
	return models.IncidentListOpts{
		Status: models.IncidentStatus(c.Query("status")),
		Limit:  parseInt(c.DefaultQuery("limit", "50"), 50),
		Offset: parseOffset(c.DefaultQuery("offset", "0")),
	}
}

// List handles GET /api/v1/incidents.
func (h *IncidentHandler) List(c *gin.Context) {
	incidents, hasMore, err := h.svc.ListIncidents(c.Request.Context(), listOpts(c))
	if err != nil {
		respondServiceError(c, h.log, "listing incidents", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"incidents": incidents, "has_more": hasMore})
}

// Get handles GET /api/v1/incidents/:id.
func (h *IncidentHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	inc, err := h.svc.GetIncident(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, "getting incident", err)

		return
	}

	c.JSON(http.StatusOK, inc)
}

// Create handles POST /api/v1/incidents.
func (h *IncidentHandler) Create(c *gin.Context) {
	var req models.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	inc, err := h.svc.CreateIncident(c.Request.Context(), middleware.Principal(c), req)
	if err != nil {
		respondServiceError(c, h.log, "creating incident", err)

		return
	}

	c.JSON(http.StatusCreated, inc)
}

// Update handles PUT /api/v1/incidents/:id.
func (h *IncidentHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	inc, err := h.svc.UpdateIncident(c.Request.Context(), middleware.Principal(c), id, req)
	if err != nil {
		respondServiceError(c, h.log, "updating incident", err)

		return
	}

	c.JSON(http.StatusOK, inc)
}

// Delete handles DELETE /api/v1/incidents/:id. The incident and its
// attachments are soft-deleted.
func (h *IncidentHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteIncident(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondServiceError(c, h.log, "deleting incident", err)

		return
	}

	c.Status(http.StatusNoContent)
}

// History handles GET /api/v1/incidents/:id/history.
func (h *IncidentHandler) History(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	limit := parseInt(c.DefaultQuery("limit", "50"), 50)
	offset := parseOffset(c.DefaultQuery("offset", "0"))

	records, hasMore, err := h.svc.IncidentHistory(c.Request.Context(), id, limit, offset)
	if err != nil {
		respondServiceError(c, h.log, "reading incident history", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "has_more": hasMore})
}
