package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/identity"
)

// authTimingFloor is the minimum response time for rejected credentials so
// that valid and invalid keys cannot be told apart by latency.
const authTimingFloor = 50 * time.Millisecond

const (
	// ActorKey is the gin context key holding the authenticated actor name.
	ActorKey = "actor"

	// APIKeyPrefix marks opaque API keys. Any other bearer credential is
	// treated as a signed token.
	APIKeyPrefix = "cs_"
)

// ActorLookup resolves an API key to the actor recorded on audit rows.
type ActorLookup interface {
	ActorByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// TokenVerifier validates a signed bearer token.
type TokenVerifier interface {
	Verify(raw string) (identity.Principal, error)
}

// truncateKey returns at most the first 6 characters of key followed by "...".
func truncateKey(key string) string {
	if len(key) > 6 {
		return key[:6] + "..."
	}
	return key
}

func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// AuthMiddleware authenticates requests by Bearer credential and attaches the
// resulting principal to the request context. API keys are resolved through
// lookup; other credentials go to tokens, which may be nil to disable them.
// If a BruteForceGuard is provided, failed attempts are tracked per credential.
func AuthMiddleware(lookup ActorLookup, tokens TokenVerifier, log *logrus.Logger, guards ...*BruteForceGuard) gin.HandlerFunc {
	var guard *BruteForceGuard
	if len(guards) > 0 {
		guard = guards[0]
	}

	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		credential := ExtractBearerToken(c)
		if credential == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		principal, ok := Authenticate(c.Request.Context(), lookup, tokens, credential)
		if !ok {
			logAuthFailure(log, c, credential)

			if guard != nil {
				guard.RecordFailure(credential)
			}

			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		}

		if guard != nil {
			guard.ResetKey(credential)
		}

		c.Set(ActorKey, principal.ID)
		c.Request = c.Request.WithContext(identity.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// Authenticate resolves credential to a principal. Credentials with the API key
// prefix go to lookup; anything else is treated as a signed token.
func Authenticate(ctx context.Context, lookup ActorLookup, tokens TokenVerifier, credential string) (identity.Principal, bool) {
	if strings.HasPrefix(credential, APIKeyPrefix) {
		actor, err := lookup.ActorByAPIKey(ctx, credential)
		if err != nil || actor == "" {
			return identity.Anonymous, false
		}

		return identity.User(actor), true
	}

	if tokens == nil {
		return identity.Anonymous, false
	}

	p, err := tokens.Verify(credential)
	if err != nil || !p.IsAuthenticated() {
		return identity.Anonymous, false
	}

	return p, true
}

// Principal returns the caller attached by AuthMiddleware, or identity.Anonymous.
func Principal(c *gin.Context) identity.Principal {
	return identity.FromContext(c.Request.Context())
}

// ExtractBearerToken extracts the credential from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func logAuthFailure(log *logrus.Logger, c *gin.Context, credential string) {
	log.WithFields(logrus.Fields{
		"client_ip":  c.ClientIP(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"request_id": c.GetString(RequestIDKey),
		"key_prefix": truncateKey(credential),
	}).Warn("authentication failed")
}
