// Package db provides database connection infrastructure.
// This is part of the platform layer and contains no business logic.
package db

import (
	"context"
	"errors"
	"time"

	"wedding_crm_backend/platform/apperr"
	"wedding_crm_backend/platform/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// NewPool creates a new database connection pool with production-ready settings.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDatabaseURL())
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// PoolAdapter exposes the pool as a health checker.
type PoolAdapter struct {
	pool *pgxpool.Pool
}

// NewPoolAdapter wraps a pool for readiness checks.
func NewPoolAdapter(pool *pgxpool.Pool) *PoolAdapter {
	return &PoolAdapter{pool: pool}
}

// Ping checks database connectivity.
func (a *PoolAdapter) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

// IsNoRows reports whether err is pgx's "no rows in result set".
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// MapError converts a driver error into the apperr taxonomy: missing rows
// become NotFound(notFoundMsg), constraint violations become client errors,
// everything else is a Persistence failure tagged with op.
func MapError(op string, err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if IsNoRows(err) && notFoundMsg != "" {
		return apperr.NotFound(notFoundMsg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return apperr.Wrap(apperr.KindValidation, "referenced record does not exist", err).WithOp(op)
		case pgUniqueViolation:
			return apperr.Wrap(apperr.KindConflict, "record already exists", err).WithOp(op)
		case pgCheckViolation:
			return apperr.Wrap(apperr.KindValidation, "value not allowed", err).WithOp(op)
		}
	}
	return apperr.Persistence(op, err)
}
