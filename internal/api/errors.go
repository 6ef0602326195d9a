package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/httputil"
	"github.com/courtsec/courtsec/internal/metrics"
	"github.com/courtsec/courtsec/internal/middleware"
	"github.com/courtsec/courtsec/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeInternalError      = "internal_error"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeValidationError    = "validation_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

var notFoundErrors = []error{
	models.ErrIncidentNotFound,
	models.ErrAttachmentNotFound,
	models.ErrCourthouseNotFound,
}

var validationErrors = []error{
	models.ErrMissingIncidentDate,
	models.ErrMissingReporter,
	models.ErrMissingNarrative,
	models.ErrInvalidStatus,
	models.ErrInvalidType,
	models.ErrMissingFileName,
	models.ErrMissingStoragePath,
	models.ErrNegativeSize,
	models.ErrMissingName,
	models.ErrInvalidAction,
}

// firstMatch returns the first of targets that err wraps, or nil.
func firstMatch(err error, targets []error) error {
	for _, t := range targets {
		if errors.Is(err, t) {
			return t
		}
	}

	return nil
}

// respondServiceError maps a service error onto the error envelope. Anything
// not recognised is logged and reported as a 500 without detail.
func respondServiceError(c *gin.Context, log *logrus.Logger, op string, err error) {
	if nf := firstMatch(err, notFoundErrors); nf != nil {
		respondError(c, http.StatusNotFound, ErrCodeNotFound, nf.Error())

		return
	}

	switch {
	case errors.Is(err, commit.ErrMissingRow):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "record not found")
	case firstMatch(err, validationErrors) != nil:
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	case errors.Is(err, commit.ErrInvalidEntry):
		middleware.Entry(c, log).WithError(err).Warn(op)
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid change")
	case errors.Is(err, commit.ErrConstraintViolation):
		middleware.Entry(c, log).WithError(err).Warn(op)
		respondError(c, http.StatusConflict, ErrCodeConflict, "conflicts with existing data")
	case errors.Is(err, commit.ErrStorageUnavailable):
		middleware.Entry(c, log).WithError(err).Error(op)
		respondError(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "storage unavailable")
	default:
		middleware.Entry(c, log).WithError(err).Error(op)
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
