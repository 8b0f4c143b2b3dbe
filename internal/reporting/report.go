// Package reporting renders backtest results as CSV and Markdown.
package reporting

import (
	"time"

	"backtest-lab/internal/domain"
)

// Report is a fully assembled view of one persisted backtest run.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	// Run identity
	RunID          string
	Label          string
	Exchange       string
	Symbol         string
	InitialCapital float64
	CreatedAtMs    int64

	// Enriched ledger, ordered by entry timestamp
	Trades []*domain.EnrichedTrade

	// Portfolio statistics
	Summary *domain.PortfolioSummary
}
