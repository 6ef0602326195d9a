package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/courtsec/courtsec/internal/api"
	"github.com/courtsec/courtsec/internal/config"
	"github.com/courtsec/courtsec/internal/db"
	"github.com/courtsec/courtsec/internal/db/migrations"
	"github.com/courtsec/courtsec/internal/identity"
	"github.com/courtsec/courtsec/internal/middleware"
	"github.com/courtsec/courtsec/internal/service"
	"github.com/courtsec/courtsec/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and metrics listeners",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply pending migrations at startup")

	return cmd
}

func serve(ctx context.Context, skipMigrations bool) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	log := a.log

	if !skipMigrations {
		if err := db.RunMigrations(ctx, a.pool, log, migrations.FS); err != nil {
			return err
		}
	}

	if err := a.pool.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	// Every committed audit record is also pushed to feed subscribers.
	hub := ws.NewHub(log)
	committer := ws.NewPublisher(a.coordinator, hub)

	deps := &api.RouterDeps{
		Log:         log,
		DB:          a.pool,
		Incidents:   service.NewIncidentService(a.incidents, a.audit, committer, log),
		Attachments: service.NewAttachmentService(a.incidents, a.attachments, committer, a.cfg.SystemIdentity, log),
		Courthouses: service.NewCourthouseService(a.courthouses, committer, log),
		Audit:       service.NewAuditService(a.audit, log),
		ActorLookup: a.apiKeys,
		Feed:        hub,
		CORSOrigins: a.cfg.CORSOrigins,
		Version:     config.Version,

		SchemaVersion: db.SchemaVersion(),
		MaxBodyBytes:  a.cfg.MaxBodyBytes,
	}

	if a.cfg.JWTSecret != "" {
		deps.Tokens = identity.NewTokens(a.cfg.JWTSecret.Value(), a.cfg.JWTIssuer)
	}

	if a.cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, a.cfg.RedisURL.Value())
		if err != nil {
			return err
		}
		defer rdb.Close()

		deps.ActorCache = middleware.NewRedisActorCache(rdb)
		log.Info("api key cache: redis")
	}

	servers := []*http.Server{
		newHTTPServer(a.cfg.Addr(), api.NewRouter(ctx, deps)),
		newHTTPServer(a.cfg.MetricsAddr(), api.NewMetricsRouter()),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	for _, srv := range servers {
		g.Go(func() error {
			log.WithField("addr", srv.Addr).Info("listening")

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listener %s: %w", srv.Addr, err)
			}

			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutting down %s: %w", srv.Addr, err))
			}
		}

		return errors.Join(errs...)
	})

	return g.Wait()
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	// No read or write timeout: they would cut long-lived feed connections.
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close() //nolint:errcheck
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return rdb, nil
}
