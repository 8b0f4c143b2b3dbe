package domain

// RunSummary is the persisted record of one completed backtest run: the
// inputs that identify it and the portfolio summary it produced. Records
// are append-only; re-running with the same inputs produces the same RunID.
type RunSummary struct {
	RunID          string  // deterministic hash of the run inputs
	Label          string  // human-assigned run name, e.g. "baseline"
	Exchange       string  // friction preset exchange
	Symbol         string  // traded asset
	InitialCapital float64 // starting account balance
	CreatedAtMs    int64   // persistence time (ms)

	Summary PortfolioSummary
}
