// Package postgres persists the run ledger: enriched trade records and run
// summaries. Candle series live in the clickhouse package; this side holds
// the relational, per-run data.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"backtest-lab/internal/observability"
	"backtest-lab/internal/storage"
)

// Pool wraps pgxpool.Pool for dependency injection into TradeStore and
// RunSummaryStore.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new Postgres connection pool.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// observe records latency and failure metrics for one store operation.
// Sentinel outcomes (not found, duplicate, invalid input) are domain
// results, not query errors, and are excluded from the error counter.
func observe(operation string, start time.Time, err *error) {
	e := *err
	if errors.Is(e, storage.ErrNotFound) ||
		errors.Is(e, storage.ErrDuplicateKey) ||
		errors.Is(e, storage.ErrInvalidInput) {
		e = nil
	}
	observability.RecordDBQuery("postgres", operation, time.Since(start).Seconds(), e)
}

// PostgreSQL error codes
const (
	pgErrUniqueViolation = "23505" // unique_violation
)

// isDuplicateKeyError checks if error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	// Use pgconn.PgError for reliable error code detection
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}

	return false
}

// isNotFoundError checks if error indicates no rows found.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
