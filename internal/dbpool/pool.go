// Package dbpool owns the PostgreSQL connection pool shared by the stores,
// the migration runner and the readiness probe.
package dbpool

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxConns is used when no pool size is configured.
const DefaultMaxConns = 20

// Session settings applied to every connection. A commit transaction left
// idle is killed rather than holding row locks on incidents.
var runtimeParams = map[string]string{
	"application_name":                    "courtsec",
	"timezone":                            "UTC",
	"statement_timeout":                   "30000",
	"idle_in_transaction_session_timeout": "60000",
}

// Pool is the process-wide connection pool. The pgxpool is kept unexported
// so stores go through the query methods below.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects and pings the database. A maxConns of zero or less means
// DefaultMaxConns.
func NewPool(ctx context.Context, databaseURL string, maxConns int32) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		// The parse error can echo the password.
		return nil, fmt.Errorf("parsing database URL: invalid connection string")
	}

	for k, v := range runtimeParams {
		cfg.ConnConfig.RuntimeParams[k] = v
	}

	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = min(2, maxConns)
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Exec runs a statement that returns no rows.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}

// QueryRow runs a query that returns at most one row.
func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

// Begin starts a read committed transaction. Commit coordinator writes run
// at this level; concurrent updates of one incident serialize on its row lock.
func (p *Pool) Begin(ctx context.Context) (pgx.Tx, error) {
	return p.pool.Begin(ctx)
}

// BeginTx starts a transaction with the given options.
func (p *Pool) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) { //nolint:gocritic // matching pgxpool.Pool signature.
	return p.pool.BeginTx(ctx, opts)
}

// HealthCheck runs a trivial query to prove a connection can be acquired
// and used.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var one int
	if err := p.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("health check query: %w", err)
	}

	return nil
}

// SQLDB returns a database/sql handle backed by the pool, for libraries that
// need one. Closing it leaves the pool open.
func (p *Pool) SQLDB() *sql.DB {
	return stdlib.OpenDBFromPool(p.pool)
}

// RegisterMetrics exposes connection pool gauges on reg.
func (p *Pool) RegisterMetrics(reg prometheus.Registerer) error {
	gauge := func(name, help string, value func(*pgxpool.Stat) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "courtsec_db_pool_" + name,
			Help: help,
		}, func() float64 { return value(p.pool.Stat()) })
	}

	collectors := []prometheus.Collector{
		gauge("acquired_conns", "Connections currently checked out", func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
		gauge("idle_conns", "Idle connections in the pool", func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
		gauge("total_conns", "Open connections", func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
		gauge("max_conns", "Configured pool size", func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("registering pool metrics: %w", err)
		}
	}

	return nil
}

// Close closes every connection in the pool.
func (p *Pool) Close() {
	p.pool.Close()
}
