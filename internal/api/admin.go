package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/domain"
	"github.com/courtsec/courtsec/internal/middleware"
)

// AdminHandler exposes incidents regardless of their deleted flag. These are
// the only routes that can see soft-deleted rows.
type AdminHandler struct {
	svc domain.IncidentService
	log *logrus.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(svc domain.IncidentService, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

// ListIncidents handles GET /api/v1/admin/incidents.
func (h *AdminHandler) ListIncidents(c *gin.Context) {
	incidents, hasMore, err := h.svc.ListIncidentsIncludingDeleted(c.Request.Context(), listOpts(c))
	if err != nil {
		respondServiceError(c, h.log, "listing incidents including deleted", err)

		return
	}

	middleware.Entry(c, h.log).WithField("count", len(incidents)).Info("admin.incidents.list")

	c.JSON(http.StatusOK, gin.H{"incidents": incidents, "has_more": hasMore})
}

// GetIncident handles GET /api/v1/admin/incidents/:id.
func (h *AdminHandler) GetIncident(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	inc, err := h.svc.GetIncidentIncludingDeleted(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, "getting incident including deleted", err)

		return
	}

	middleware.Entry(c, h.log).WithField("incident_id", id).Info("admin.incidents.get")

	c.JSON(http.StatusOK, inc)
}
