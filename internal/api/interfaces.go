package api

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Database is the subset of the connection pool the health checks use.
type Database interface {
	HealthCheck(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
