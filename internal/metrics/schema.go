package metrics

import "backtest-lab/internal/domain"

// Column names for the ledger and enriched trade tables. Downstream
// consumers key on these exact names; renaming a column here is a breaking
// schema change.
var LedgerColumns = []string{
	"trade_id",
	"symbol",
	"entry_timestamp",
	"exit_timestamp",
	"num_entries",
	"entry_price",
	"exit_price",
	"usdt_amount",
	"exit_value",
	"fees",
	"slippage",
	"gross_pnl",
	"net_profit_loss",
	"capital_after",
	"pnl_pct",
}

// EnrichedColumns extends the ledger columns with the per-trade metrics.
var EnrichedColumns = append(append([]string{}, LedgerColumns...),
	"duration_bars",
	"bars_in_profit",
	"bars_in_loss",
	"mae",
	"mfe",
	"trade_volatility_pct",
	"profit_efficiency_pct",
	"trade_drawdown_pct",
	"risk_reward_ratio",
	"capital_at_risk_pct",
	"return_on_capital_pct",
	"cumulative_capital",
)

// LedgerRow returns one trade's values in LedgerColumns order.
func LedgerRow(t *domain.ClosedTrade) []any {
	return []any{
		t.TradeID,
		t.Symbol,
		t.EntryTimeMs,
		t.ExitTimeMs,
		t.NumEntries,
		t.AvgEntryPrice,
		t.ExitPrice,
		t.TotalCost,
		t.ExitValue,
		t.TotalFees,
		t.TotalSlippage,
		t.GrossPnL,
		t.NetPnL,
		t.CapitalAfter,
		t.PnLPct,
	}
}

// EnrichedRow returns one enriched trade's values in EnrichedColumns order.
func EnrichedRow(t *domain.EnrichedTrade) []any {
	row := LedgerRow(&t.ClosedTrade)
	return append(row,
		t.Metrics.DurationBars,
		t.Metrics.BarsInProfit,
		t.Metrics.BarsInLoss,
		t.Metrics.MAE,
		t.Metrics.MFE,
		t.Metrics.TradeVolatilityPct,
		t.Metrics.ProfitEfficiencyPct,
		t.Metrics.TradeDrawdownPct,
		t.Metrics.RiskRewardRatio,
		t.Metrics.CapitalAtRiskPct,
		t.Metrics.ReturnOnCapitalPct,
		t.Metrics.CumulativeCapital,
	)
}

// SummaryField is one named statistic of the one-row summary view.
type SummaryField struct {
	Name  string
	Value float64
}

// SummaryFields returns every portfolio statistic as an ordered one-row
// view. Integer statistics are widened to float64 so the row is uniform.
func SummaryFields(s *domain.PortfolioSummary) []SummaryField {
	return []SummaryField{
		{"gross_profit", s.GrossProfit},
		{"net_profit", s.NetProfit},
		{"roi_pct", s.ROIPct},
		{"total_trades", float64(s.TotalTrades)},
		{"percent_profitable", s.PercentProfitable},
		{"profit_factor", s.ProfitFactor},
		{"win_loss_ratio", s.WinLossRatio},
		{"expectancy", s.Expectancy},
		{"avg_trade_net_profit", s.AvgTradeNetProfit},
		{"avg_winning_trade", s.AvgWinningTrade},
		{"avg_losing_trade", s.AvgLosingTrade},
		{"largest_winning_trade", s.LargestWinningTrade},
		{"largest_losing_trade", s.LargestLosingTrade},
		{"max_consecutive_wins", float64(s.MaxConsecutiveWins)},
		{"max_consecutive_losses", float64(s.MaxConsecutiveLosses)},
		{"std_profit", s.StdProfit},
		{"max_drawdown", s.MaxDrawdown},
		{"max_drawdown_pct", s.MaxDrawdownPct},
		{"drawdown_duration", float64(s.DrawdownDuration)},
		{"avg_drawdown", s.AvgDrawdown},
		{"backtest_duration_ms", float64(s.BacktestDurationMs)},
		{"time_in_market_pct", s.TimeInMarketPct},
		{"trades_per_day", s.TradesPerDay},
		{"avg_trade_duration_bars", s.AvgTradeDurationBars},
		{"avg_trade_duration_min", s.AvgTradeDurationMin},
		{"avg_winning_duration_min", s.AvgWinningDurationMin},
		{"avg_losing_duration_min", s.AvgLosingDurationMin},
		{"sharpe_ratio", s.SharpeRatio},
		{"sortino_ratio", s.SortinoRatio},
		{"recovery_factor", s.RecoveryFactor},
		{"total_fees", s.TotalFees},
		{"total_slippage", s.TotalSlippage},
		{"avg_fee_per_trade", s.AvgFeePerTrade},
		{"costs_pct_of_gross_profit", s.CostsPctOfGrossProfit},
	}
}

// SummaryMap returns the portfolio statistics as a flat name-to-value map.
func SummaryMap(s *domain.PortfolioSummary) map[string]float64 {
	fields := SummaryFields(s)
	m := make(map[string]float64, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Value
	}
	return m
}
