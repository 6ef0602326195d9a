package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/config"
	"github.com/courtsec/courtsec/internal/dbpool"
	"github.com/courtsec/courtsec/internal/models"
	"github.com/courtsec/courtsec/internal/store"
)

// app holds the storage layer shared by every command that writes records.
type app struct {
	cfg         *config.Config
	log         *logrus.Logger
	pool        *dbpool.Pool
	coordinator *commit.Coordinator

	incidents   *store.IncidentStore
	attachments *store.AttachmentStore
	courthouses *store.CourthouseStore
	audit       *store.AuditStore
	apiKeys     *store.APIKeyStore
}

// openApp loads configuration, connects to PostgreSQL and builds the commit
// coordinator. Callers must call close.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg.LogLevel)

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	registry, err := models.NewRegistry()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("building entity registry: %w", err)
	}

	base := store.Base{Pool: pool, Log: log}

	coordinator, err := commit.NewCoordinator(
		store.NewRecordStore(base), registry, models.NewSoftDeletePolicy(), log,
		commit.WithFallbackIdentity(cfg.SystemIdentity),
		commit.WithCascades(models.Cascades...),
	)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &app{
		cfg:         cfg,
		log:         log,
		pool:        pool,
		coordinator: coordinator,
		incidents:   store.NewIncidentStore(base),
		attachments: store.NewAttachmentStore(base),
		courthouses: store.NewCourthouseStore(base),
		audit:       store.NewAuditStore(base),
		apiKeys:     store.NewAPIKeyStore(base),
	}, nil
}

func (a *app) close() {
	a.pool.Close()
}
