// Package storage defines the persistence interfaces for backtest inputs
// and outputs. All stores are append-only: completed runs are immutable
// records, never updated in place.
package storage

import (
	"context"

	"backtest-lab/internal/domain"
)

// CandleStore provides access to OHLCV candle storage.
type CandleStore interface {
	// InsertBulk adds multiple candles. Fails entire batch on duplicate (symbol, timestamp_ms).
	InsertBulk(ctx context.Context, candles []*domain.Candle) error

	// GetBySymbol retrieves all candles for a symbol, ordered by timestamp ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.Candle, error)

	// GetByTimeRange retrieves candles for a symbol within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.Candle, error)
}

// TradeStore provides access to enriched trade storage.
type TradeStore interface {
	// InsertBulk adds a run's trades atomically. Fails entire batch on any duplicate trade_id.
	InsertBulk(ctx context.Context, runID string, trades []*domain.EnrichedTrade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.EnrichedTrade, error)

	// GetByRunID retrieves all trades of a run, ordered by entry time ASC, trade_id ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.EnrichedTrade, error)
}

// RunSummaryStore provides access to run summary storage.
type RunSummaryStore interface {
	// Insert adds a new run summary. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunSummary) error

	// GetByID retrieves a run summary by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunSummary, error)

	// List retrieves all run summaries, ordered by created_at ASC, run_id ASC.
	List(ctx context.Context) ([]*domain.RunSummary, error)
}
