package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"backtest-lab/internal/domain"
	"backtest-lab/internal/storage"
)

// RunSummaryStore implements storage.RunSummaryStore using PostgreSQL.
// Ratio columns are DOUBLE PRECISION and round-trip NaN for degenerate
// aggregates without special casing.
type RunSummaryStore struct {
	pool *Pool
}

// NewRunSummaryStore creates a new RunSummaryStore.
func NewRunSummaryStore(pool *Pool) *RunSummaryStore {
	return &RunSummaryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunSummaryStore = (*RunSummaryStore)(nil)

const runSummaryColumns = `
	run_id, label, exchange, symbol, initial_capital, created_at_ms,
	gross_profit, net_profit, roi_pct, total_trades, percent_profitable,
	profit_factor, win_loss_ratio, expectancy,
	avg_trade_net_profit, avg_winning_trade, avg_losing_trade,
	largest_winning_trade, largest_losing_trade,
	max_consecutive_wins, max_consecutive_losses, std_profit,
	max_drawdown, max_drawdown_pct, drawdown_duration, avg_drawdown,
	backtest_duration_ms, time_in_market_pct, trades_per_day,
	avg_trade_duration_bars, avg_trade_duration_min,
	avg_winning_duration_min, avg_losing_duration_min,
	sharpe_ratio, sortino_ratio, recovery_factor,
	total_fees, total_slippage, avg_fee_per_trade, costs_pct_of_gross_profit
`

// Insert adds a new run summary. Returns ErrDuplicateKey if run_id exists.
func (s *RunSummaryStore) Insert(ctx context.Context, r *domain.RunSummary) (err error) {
	defer observe("run_summaries.insert", time.Now(), &err)

	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO run_summaries (` + runSummaryColumns + `) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14,
			$15, $16, $17,
			$18, $19,
			$20, $21, $22,
			$23, $24, $25, $26,
			$27, $28, $29,
			$30, $31,
			$32, $33,
			$34, $35, $36,
			$37, $38, $39, $40
		)
	`

	p := &r.Summary
	_, err = s.pool.Exec(ctx, query,
		r.RunID, r.Label, r.Exchange, r.Symbol, r.InitialCapital, r.CreatedAtMs,
		p.GrossProfit, p.NetProfit, p.ROIPct, p.TotalTrades, p.PercentProfitable,
		p.ProfitFactor, p.WinLossRatio, p.Expectancy,
		p.AvgTradeNetProfit, p.AvgWinningTrade, p.AvgLosingTrade,
		p.LargestWinningTrade, p.LargestLosingTrade,
		p.MaxConsecutiveWins, p.MaxConsecutiveLosses, p.StdProfit,
		p.MaxDrawdown, p.MaxDrawdownPct, p.DrawdownDuration, p.AvgDrawdown,
		p.BacktestDurationMs, p.TimeInMarketPct, p.TradesPerDay,
		p.AvgTradeDurationBars, p.AvgTradeDurationMin,
		p.AvgWinningDurationMin, p.AvgLosingDurationMin,
		p.SharpeRatio, p.SortinoRatio, p.RecoveryFactor,
		p.TotalFees, p.TotalSlippage, p.AvgFeePerTrade, p.CostsPctOfGrossProfit,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run summary: %w", err)
	}
	return nil
}

// GetByID retrieves a run summary by its ID. Returns ErrNotFound if not exists.
func (s *RunSummaryStore) GetByID(ctx context.Context, runID string) (_ *domain.RunSummary, err error) {
	defer observe("run_summaries.get_by_id", time.Now(), &err)

	query := `SELECT ` + runSummaryColumns + ` FROM run_summaries WHERE run_id = $1`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanRunSummary(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run summary by id: %w", err)
	}
	return r, nil
}

// List retrieves all run summaries, ordered by created_at ASC, run_id ASC.
func (s *RunSummaryStore) List(ctx context.Context) (_ []*domain.RunSummary, err error) {
	defer observe("run_summaries.list", time.Now(), &err)

	query := `
		SELECT ` + runSummaryColumns + `
		FROM run_summaries
		ORDER BY created_at_ms ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list run summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.RunSummary
	for rows.Next() {
		r, err := scanRunSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run summary row: %w", err)
		}
		summaries = append(summaries, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run summary rows: %w", err)
	}

	return summaries, nil
}

// scanRunSummary scans a single row into a RunSummary.
func scanRunSummary(row pgx.Row) (*domain.RunSummary, error) {
	var r domain.RunSummary
	p := &r.Summary

	err := row.Scan(
		&r.RunID, &r.Label, &r.Exchange, &r.Symbol, &r.InitialCapital, &r.CreatedAtMs,
		&p.GrossProfit, &p.NetProfit, &p.ROIPct, &p.TotalTrades, &p.PercentProfitable,
		&p.ProfitFactor, &p.WinLossRatio, &p.Expectancy,
		&p.AvgTradeNetProfit, &p.AvgWinningTrade, &p.AvgLosingTrade,
		&p.LargestWinningTrade, &p.LargestLosingTrade,
		&p.MaxConsecutiveWins, &p.MaxConsecutiveLosses, &p.StdProfit,
		&p.MaxDrawdown, &p.MaxDrawdownPct, &p.DrawdownDuration, &p.AvgDrawdown,
		&p.BacktestDurationMs, &p.TimeInMarketPct, &p.TradesPerDay,
		&p.AvgTradeDurationBars, &p.AvgTradeDurationMin,
		&p.AvgWinningDurationMin, &p.AvgLosingDurationMin,
		&p.SharpeRatio, &p.SortinoRatio, &p.RecoveryFactor,
		&p.TotalFees, &p.TotalSlippage, &p.AvgFeePerTrade, &p.CostsPctOfGrossProfit,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}
