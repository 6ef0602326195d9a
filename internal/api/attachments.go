package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/domain"
	"github.com/courtsec/courtsec/internal/middleware"
	"github.com/courtsec/courtsec/internal/models"
)

// AttachmentHandler serves attachment metadata endpoints.
type AttachmentHandler struct {
	svc domain.AttachmentService
	log *logrus.Logger
}

// NewAttachmentHandler creates an AttachmentHandler.
func NewAttachmentHandler(svc domain.AttachmentService, log *logrus.Logger) *AttachmentHandler {
	return &AttachmentHandler{svc: svc, log: log}
}

// Add handles POST /api/v1/incidents/:id/attachments.
func (h *AttachmentHandler) Add(c *gin.Context) {
	incidentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req models.CreateAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	att, err := h.svc.AddAttachment(c.Request.Context(), middleware.Principal(c), incidentID, req)
	if err != nil {
		respondServiceError(c, h.log, "adding attachment", err)

		return
	}

	c.JSON(http.StatusCreated, att)
}

// Delete handles DELETE /api/v1/attachments/:id.
func (h *AttachmentHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteAttachment(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondServiceError(c, h.log, "deleting attachment", err)

		return
	}

	c.Status(http.StatusNoContent)
}
