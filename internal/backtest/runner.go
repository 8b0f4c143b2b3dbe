// Package backtest runs the full pipeline for one parameter set: signal
// execution, per-trade enrichment and portfolio aggregation.
package backtest

import (
	"fmt"

	"backtest-lab/internal/domain"
	"backtest-lab/internal/engine"
	"backtest-lab/internal/metrics"
)

// Config is one run's full parameter set. Candles and signals are shared
// read-only inputs; everything else is scalar, so a Config can be copied
// freely between workers.
type Config struct {
	Friction       domain.FrictionModel
	InitialCapital float64
	Candles        []*domain.Candle
	Signals        []*domain.Signal
}

// Results holds one completed run's output.
type Results struct {
	Trades  []*domain.EnrichedTrade
	Summary *domain.PortfolioSummary
}

// Run executes one backtest from scratch. A fresh execution engine and
// metrics coordinator are constructed per call, so concurrent Run calls
// never share mutable state. The run either completes fully or fails with
// no partial results.
func Run(cfg Config) (*Results, error) {
	eng, err := engine.New(cfg.Friction, cfg.InitialCapital)
	if err != nil {
		return nil, fmt.Errorf("constructing engine: %w", err)
	}

	trades, err := eng.Run(cfg.Signals)
	if err != nil {
		return nil, fmt.Errorf("executing signals: %w", err)
	}

	result, err := metrics.NewCoordinator(cfg.InitialCapital, cfg.Candles).Compute(trades)
	if err != nil {
		return nil, fmt.Errorf("computing metrics: %w", err)
	}

	return &Results{
		Trades:  result.Trades,
		Summary: result.Summary,
	}, nil
}
