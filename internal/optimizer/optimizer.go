// Package optimizer evaluates many backtest parameter combinations in
// parallel. Each combination is an independent run; a failed run is recorded
// as invalid and never stops the sweep.
package optimizer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"backtest-lab/internal/backtest"
)

// Combination is one labeled parameter set to evaluate.
type Combination struct {
	Label  string
	Config backtest.Config
}

// Outcome is the result of one combination. Err is set when the run failed;
// Results is nil in that case.
type Outcome struct {
	Label   string
	Results *backtest.Results
	Err     error
}

// Optimizer fans combinations out over a bounded worker pool.
type Optimizer struct {
	workers int
}

// New creates an optimizer. workers <= 0 defaults to GOMAXPROCS.
func New(workers int) *Optimizer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Optimizer{workers: workers}
}

// Sweep runs every combination and returns outcomes in input order. Run
// failures are isolated per outcome; only context cancellation aborts the
// sweep early, and the error is then recorded on the unfinished outcomes.
func (o *Optimizer) Sweep(ctx context.Context, combos []Combination) []Outcome {
	outcomes := make([]Outcome, len(combos))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, combo := range combos {
		outcomes[i].Label = combo.Label

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			results, err := backtest.Run(combo.Config)
			if err != nil {
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].Results = results
			return nil
		})
	}

	// Workers only report failures through their outcome slot.
	_ = g.Wait()

	return outcomes
}

// Best returns the successful outcome with the highest score. The second
// return is false when every outcome failed.
func Best(outcomes []Outcome, score func(*backtest.Results) float64) (Outcome, bool) {
	var best Outcome
	found := false

	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		if !found || score(o.Results) > score(best.Results) {
			best = o
			found = true
		}
	}

	return best, found
}
