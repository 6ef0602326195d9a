package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/domain"
	"github.com/courtsec/courtsec/internal/middleware"
	"github.com/courtsec/courtsec/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	DB          Database
	Incidents   domain.IncidentService
	Attachments domain.AttachmentService
	Courthouses domain.CourthouseService
	Audit       domain.AuditService

	// ActorLookup resolves API keys. Results are cached in ActorCache, or in
	// process memory when ActorCache is nil.
	ActorLookup middleware.ActorLookup
	ActorCache  middleware.ActorCache

	// Tokens verifies signed bearer tokens; nil accepts API keys only.
	Tokens middleware.TokenVerifier

	// Feed streams committed audit records; nil disables /audit/stream.
	Feed *ws.Hub

	CORSOrigins   []string
	Version       string
	SchemaVersion int
	MaxBodyBytes  int64
}

// Router-level limits.
const (
	defaultMaxBodySize = 1 << 20 // 1 MB
	rateLimit          = 100     // requests per second per IP
	rateBurst          = 200     // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}

	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBody))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.DB, log, deps.Version, deps.SchemaVersion)
	incidents := NewIncidentHandler(deps.Incidents, log)
	attachments := NewAttachmentHandler(deps.Attachments, log)
	courthouses := NewCourthouseHandler(deps.Courthouses, log)
	audit := NewAuditHandler(deps.Audit, log)
	admin := NewAdminHandler(deps.Incidents, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	cache := deps.ActorCache
	if cache == nil {
		cache = middleware.NewMemoryActorCache(ctx)
	}

	// All other API routes require authentication.
	bfGuard := middleware.NewBruteForceGuard(ctx, log)
	api.Use(middleware.BruteForceMiddleware(bfGuard))
	lookup := middleware.NewCachedActorLookup(deps.ActorLookup, cache)
	api.Use(middleware.AuthMiddleware(lookup, deps.Tokens, log, bfGuard))

	// Incidents.
	api.GET("/incidents", incidents.List)
	api.POST("/incidents", incidents.Create)
	api.GET("/incidents/:id", incidents.Get)
	api.PUT("/incidents/:id", incidents.Update)
	api.DELETE("/incidents/:id", incidents.Delete)
	api.GET("/incidents/:id/history", incidents.History)

	// Attachments.
	api.POST("/incidents/:id/attachments", attachments.Add)
	api.DELETE("/attachments/:id", attachments.Delete)

	// Courthouse directory.
	api.GET("/courthouses", courthouses.List)
	api.POST("/courthouses", courthouses.Create)
	api.DELETE("/courthouses/:id", courthouses.Delete)

	// Audit.
	api.GET("/audit", audit.Query)
	if deps.Feed != nil {
		api.GET("/audit/stream", feedHandler(ctx, log, deps.Feed, deps.CORSOrigins, lookup, deps.Tokens))
	}

	// Admin views that include soft-deleted rows.
	api.GET("/admin/incidents", admin.ListIncidents)
	api.GET("/admin/incidents/:id", admin.GetIncident)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}

// NewMetricsRouter serves Prometheus metrics. It is bound to its own listener
// so scrapes never pass the public middleware chain.
func NewMetricsRouter() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
