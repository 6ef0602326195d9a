package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key for the request ID.
	RequestIDKey = "request_id"

	// RequestIDHeader carries the request ID on responses.
	RequestIDHeader = "X-Request-ID"

	// maxClientRequestID bounds what is copied from the client header into logs.
	maxClientRequestID = 128
)

// RequestID assigns every request a time-ordered server UUID. A client's own
// X-Request-ID is kept only as a log field for correlating with its logs.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := newRequestID()

		if clientID := c.GetHeader(RequestIDHeader); clientID != "" {
			if len(clientID) > maxClientRequestID {
				clientID = clientID[:maxClientRequestID]
			}

			c.Set("client_request_id", clientID)
			log.WithFields(logrus.Fields{
				RequestIDKey:        id,
				"client_request_id": clientID,
			}).Debug("client request id recorded")
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}

	return uuid.NewString()
}

// Entry returns a log entry tagged with the request ID and, once
// authenticated, the acting identity.
func Entry(c *gin.Context, log *logrus.Logger) *logrus.Entry {
	fields := logrus.Fields{RequestIDKey: c.GetString(RequestIDKey)}
	if actor := c.GetString(ActorKey); actor != "" {
		fields[ActorKey] = actor
	}

	return log.WithFields(fields)
}
