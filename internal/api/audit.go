package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/domain"
	"github.com/courtsec/courtsec/internal/models"
)

// AuditHandler serves the read-only audit log.
type AuditHandler struct {
	svc domain.AuditService
	log *logrus.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(svc domain.AuditService, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{svc: svc, log: log}
}

// Query handles GET /api/v1/audit.
func (h *AuditHandler) Query(c *gin.Context) {
	since, err := parseSince(c.Query("since"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	opts := models.AuditQueryOpts{
		TableName:  c.Query("table"),
		PrimaryKey: c.Query("primary_key"),
		Action:     models.AuditAction(c.Query("action")),
		Since:      since,
		Limit:      parseInt(c.DefaultQuery("limit", "50"), 50),
		Offset:     parseOffset(c.DefaultQuery("offset", "0")),
	}

	records, hasMore, err := h.svc.QueryAudit(c.Request.Context(), opts)
	if err != nil {
		respondServiceError(c, h.log, "querying audit log", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "has_more": hasMore})
}
