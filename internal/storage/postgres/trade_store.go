package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"backtest-lab/internal/domain"
	"backtest-lab/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	trade_id, run_id, symbol, entry_timestamp, exit_timestamp, num_entries,
	entry_price, exit_price, usdt_amount, exit_value,
	entry_fees, exit_fee, total_fees, entry_slippage, exit_slippage, total_slippage,
	gross_pnl, net_profit_loss, capital_after, pnl_pct,
	duration_bars, bars_in_profit, bars_in_loss, mae, mfe,
	trade_volatility_pct, profit_efficiency_pct, trade_drawdown_pct, risk_reward_ratio,
	capital_at_risk_pct, return_on_capital_pct, cumulative_capital
`

const insertTradeQuery = `
	INSERT INTO trade_records (` + tradeColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20,
		$21, $22, $23, $24, $25,
		$26, $27, $28, $29,
		$30, $31, $32
	)
`

// InsertBulk adds a run's trades atomically. Fails entire batch on any duplicate trade_id.
func (s *TradeStore) InsertBulk(ctx context.Context, runID string, trades []*domain.EnrichedTrade) (err error) {
	defer observe("trades.insert_bulk", time.Now(), &err)

	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}

		_, err := tx.Exec(ctx, insertTradeQuery,
			t.TradeID, runID, t.Symbol, t.EntryTimeMs, t.ExitTimeMs, t.NumEntries,
			t.AvgEntryPrice, t.ExitPrice, t.TotalCost, t.ExitValue,
			t.EntryFees, t.ExitFee, t.TotalFees, t.EntrySlippage, t.ExitSlippage, t.TotalSlippage,
			t.GrossPnL, t.NetPnL, t.CapitalAfter, t.PnLPct,
			t.Metrics.DurationBars, t.Metrics.BarsInProfit, t.Metrics.BarsInLoss, t.Metrics.MAE, t.Metrics.MFE,
			t.Metrics.TradeVolatilityPct, t.Metrics.ProfitEfficiencyPct, t.Metrics.TradeDrawdownPct, t.Metrics.RiskRewardRatio,
			t.Metrics.CapitalAtRiskPct, t.Metrics.ReturnOnCapitalPct, t.Metrics.CumulativeCapital,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (_ *domain.EnrichedTrade, err error) {
	defer observe("trades.get_by_id", time.Now(), &err)

	query := `SELECT ` + tradeColumns + ` FROM trade_records WHERE trade_id = $1`

	row := s.pool.QueryRow(ctx, query, tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return t, nil
}

// GetByRunID retrieves all trades of a run, ordered by entry time ASC, trade_id ASC.
func (s *TradeStore) GetByRunID(ctx context.Context, runID string) (_ []*domain.EnrichedTrade, err error) {
	defer observe("trades.get_by_run_id", time.Now(), &err)

	query := `
		SELECT ` + tradeColumns + `
		FROM trade_records
		WHERE run_id = $1
		ORDER BY entry_timestamp ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get trades by run id: %w", err)
	}
	defer rows.Close()

	var trades []*domain.EnrichedTrade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}

// scanTrade scans a single row into an EnrichedTrade. The run_id column is
// read and discarded; runs are addressed through GetByRunID.
func scanTrade(row pgx.Row) (*domain.EnrichedTrade, error) {
	var t domain.EnrichedTrade
	var runID string

	err := row.Scan(
		&t.TradeID, &runID, &t.Symbol, &t.EntryTimeMs, &t.ExitTimeMs, &t.NumEntries,
		&t.AvgEntryPrice, &t.ExitPrice, &t.TotalCost, &t.ExitValue,
		&t.EntryFees, &t.ExitFee, &t.TotalFees, &t.EntrySlippage, &t.ExitSlippage, &t.TotalSlippage,
		&t.GrossPnL, &t.NetPnL, &t.CapitalAfter, &t.PnLPct,
		&t.Metrics.DurationBars, &t.Metrics.BarsInProfit, &t.Metrics.BarsInLoss, &t.Metrics.MAE, &t.Metrics.MFE,
		&t.Metrics.TradeVolatilityPct, &t.Metrics.ProfitEfficiencyPct, &t.Metrics.TradeDrawdownPct, &t.Metrics.RiskRewardRatio,
		&t.Metrics.CapitalAtRiskPct, &t.Metrics.ReturnOnCapitalPct, &t.Metrics.CumulativeCapital,
	)
	if err != nil {
		return nil, err
	}

	t.Metrics.TradeID = t.TradeID
	return &t, nil
}
