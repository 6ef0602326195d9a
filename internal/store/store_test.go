package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/db"
	"github.com/courtsec/courtsec/internal/db/migrations"
	"github.com/courtsec/courtsec/internal/dbpool"
	"github.com/courtsec/courtsec/internal/models"
	"github.com/courtsec/courtsec/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, 4)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		t.Fatalf("migrating test DB: %v", err)
	}

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

func setupTestBase(t *testing.T) store.Base {
	t.Helper()

	env := getTestEnv(t)

	return store.Base{Pool: env.pool, Log: env.log}
}

func newTestCoordinator(t *testing.T, base store.Base) *commit.Coordinator {
	t.Helper()

	reg, err := models.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	c, err := commit.NewCoordinator(store.NewRecordStore(base), reg, models.NewSoftDeletePolicy(), base.Log,
		commit.WithCascades(models.Cascades...))
	if err != nil {
		t.Fatal(err)
	}

	return c
}

func testIncident(narrative string) *models.Incident {
	return &models.Incident{
		IncidentDate:             time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond),
		Status:                   models.StatusOpen,
		ReporterFirstName:        "Test",
		ReporterLastName:         "Reporter",
		ReporterEmail:            "test@court.example",
		ReporterJobTitle:         "Bailiff",
		County:                   "Test County",
		Division:                 "Criminal",
		Courthouse:               "Test Courthouse",
		LocationWithinCourthouse: "Courtroom 1",
		Type:                     models.TypeOther,
		Narrative:                narrative,
	}
}
