package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/middleware"
	"github.com/courtsec/courtsec/internal/ws"
)

var errCredentialRejected = errors.New("credential rejected")

// feedHandler upgrades to a WebSocket that streams committed audit records.
// The connection's credential is re-checked periodically.
func feedHandler(
	appCtx context.Context, log *logrus.Logger, hub *ws.Hub, corsOrigins []string,
	lookup middleware.ActorLookup, tokens middleware.TokenVerifier,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := middleware.ExtractBearerToken(c)
		principal := middleware.Principal(c)

		// CORS origins are reused as WebSocket origin patterns.
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns:       corsOrigins,
			CompressionMode:      websocket.CompressionContextTakeover,
			CompressionThreshold: 128,
		})
		if err != nil {
			log.WithError(err).Error("websocket accept failed")
			return
		}

		revalidate := func(ctx context.Context) error {
			if _, ok := middleware.Authenticate(ctx, lookup, tokens, credential); !ok {
				return errCredentialRejected
			}
			return nil
		}

		client := ws.NewClient(hub, conn, principal.ID, revalidate)
		hub.Register(client)

		// Cancel when either the server shuts down or the request ends.
		wsCtx, wsCancel := context.WithCancel(appCtx)
		go func() {
			select {
			case <-c.Request.Context().Done():
				wsCancel()
			case <-wsCtx.Done():
			}
		}()

		go client.WritePump(wsCtx)
		client.ReadPump(wsCtx)
		wsCancel()
	}
}

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid, exists := c.Get(middleware.RequestIDKey); exists {
			fields["request_id"] = rid
		}
		if actor := c.GetString(middleware.ActorKey); actor != "" {
			fields["actor"] = actor
		}
		log.WithFields(fields).Info("request")
	}
}

// maxPaginationLimit caps the maximum number of items per page.
const maxPaginationLimit = 1000

// maxPaginationOffset caps the maximum offset for paginated queries.
const maxPaginationOffset = 100000

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fallback
	}

	if v > maxPaginationLimit {
		return maxPaginationLimit
	}

	return v
}

func parseOffset(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}

	if v > maxPaginationOffset {
		return maxPaginationOffset
	}

	return v
}

var errInvalidID = errors.New("id must be a UUID")

// pathUUID parses the named path parameter, writing a 400 and returning false
// when it is not a UUID.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, errInvalidID.Error())

		return uuid.Nil, false
	}

	return id, true
}

// parseSince reads an RFC 3339 timestamp. An empty string means no bound.
func parseSince(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, errors.New("since must be an RFC 3339 timestamp")
	}

	return &t, nil
}
