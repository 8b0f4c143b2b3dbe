// Package metrics coordinates the per-trade and portfolio metrics engines
// over one closed-trade ledger and reconciles their field naming so the
// ledger, the enriched table, and the summary stay consistent end-to-end.
package metrics

import (
	"backtest-lab/internal/domain"
	"backtest-lab/internal/portfolio"
	"backtest-lab/internal/tradestats"
)

// Coordinator runs the metrics pipeline for one backtest. It is constructed
// fresh per run and shares no state with other coordinators.
type Coordinator struct {
	initialCapital float64
	tradeEngine    *tradestats.Engine
}

// Result is the full metrics output for one run.
type Result struct {
	Trades  []*domain.EnrichedTrade
	Summary *domain.PortfolioSummary
}

// NewCoordinator creates a coordinator over one candle series.
func NewCoordinator(initialCapital float64, candles []*domain.Candle) *Coordinator {
	return &Coordinator{
		initialCapital: initialCapital,
		tradeEngine:    tradestats.NewEngine(initialCapital, candles),
	}
}

// Compute enriches the ledger and aggregates the portfolio summary.
func (c *Coordinator) Compute(trades []*domain.ClosedTrade) (*Result, error) {
	enriched, err := c.tradeEngine.Enrich(trades)
	if err != nil {
		return nil, err
	}

	return &Result{
		Trades:  enriched,
		Summary: portfolio.Summarize(enriched, c.initialCapital),
	}, nil
}
