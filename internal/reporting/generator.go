package reporting

import (
	"context"
	"fmt"
	"time"

	"backtest-lab/internal/storage"
)

// Generator assembles reports from persisted runs.
type Generator struct {
	tradeStore   storage.TradeStore
	summaryStore storage.RunSummaryStore
	now          func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a report generator over the given stores.
func NewGenerator(tradeStore storage.TradeStore, summaryStore storage.RunSummaryStore) *Generator {
	return &Generator{
		tradeStore:   tradeStore,
		summaryStore: summaryStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate assembles the report for one persisted run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.summaryStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("loading run summary: %w", err)
	}

	trades, err := g.tradeStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("loading trades: %w", err)
	}

	return &Report{
		GeneratedAt:    g.now(),
		RunID:          run.RunID,
		Label:          run.Label,
		Exchange:       run.Exchange,
		Symbol:         run.Symbol,
		InitialCapital: run.InitialCapital,
		CreatedAtMs:    run.CreatedAtMs,
		Trades:         trades,
		Summary:        &run.Summary,
	}, nil
}
