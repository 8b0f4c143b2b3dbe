package domain

// TradeMetrics is the per-trade enrichment computed by re-scanning the price
// series between a trade's entry and exit timestamps (inclusive). Values are
// read-only after computation.
type TradeMetrics struct {
	TradeID string // matches ClosedTrade.TradeID

	DurationBars int // bars in the [entry, exit] window
	BarsInProfit int // bars whose close marks the position above breakeven
	BarsInLoss   int // bars whose close marks the position below breakeven

	MAE float64 // maximum adverse excursion, account currency (<= 0)
	MFE float64 // maximum favorable excursion, account currency (>= 0)

	TradeVolatilityPct  float64 // sample stddev of close-to-close % changes
	ProfitEfficiencyPct float64 // net_pnl / MFE * 100, clamped to [0, 100]
	TradeDrawdownPct    float64 // worst peak-to-trough % decline of marked value
	RiskRewardRatio     float64 // MFE / |MAE|, 0 when MAE == 0

	CapitalAtRiskPct   float64 // total_cost / capital base at entry * 100
	ReturnOnCapitalPct float64 // net_pnl / total_cost * 100
	CumulativeCapital  float64 // account balance after this trade
}

// EnrichedTrade pairs a closed trade with its window metrics.
type EnrichedTrade struct {
	ClosedTrade
	Metrics TradeMetrics
}

// PortfolioSummary aggregates a full enriched ledger into portfolio-level
// statistics. It is recomputed in full on request, never incrementally
// maintained. Ratios resolve to NaN when their denominator is degenerate
// (zero trades, zero variance, zero drawdown).
type PortfolioSummary struct {
	// General
	GrossProfit       float64 // sum of gross_pnl
	NetProfit         float64 // sum of net_pnl
	ROIPct            float64 // net_profit / initial_capital * 100
	TotalTrades       int
	PercentProfitable float64 // winners / total * 100
	ProfitFactor      float64 // gross profit of winners / |gross loss of losers|
	WinLossRatio      float64 // winner count / loser count
	Expectancy        float64 // net_profit / total_trades

	// P&L distribution
	AvgTradeNetProfit    float64
	AvgWinningTrade      float64
	AvgLosingTrade       float64
	LargestWinningTrade  float64
	LargestLosingTrade   float64
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	StdProfit            float64 // sample stddev of net_pnl

	// Drawdown over the cumulative-capital series
	MaxDrawdown      float64 // worst peak-to-trough decline, absolute
	MaxDrawdownPct   float64 // relative to the highest peak
	DrawdownDuration int     // longest consecutive trades spent below a peak
	AvgDrawdown      float64 // mean drawdown across trades

	// Time statistics
	BacktestDurationMs    int64   // first entry to last exit
	TimeInMarketPct       float64 // % of backtest duration with an open position
	TradesPerDay          float64
	AvgTradeDurationBars  float64
	AvgTradeDurationMin   float64
	AvgWinningDurationMin float64
	AvgLosingDurationMin  float64

	// Risk-adjusted ratios
	SharpeRatio    float64 // mean/stddev of net_pnl, annualized by trade frequency
	SortinoRatio   float64 // downside-deviation variant
	RecoveryFactor float64 // net_profit / max_drawdown

	// Operational costs
	TotalFees             float64
	TotalSlippage         float64
	AvgFeePerTrade        float64
	CostsPctOfGrossProfit float64 // fees / |gross_profit| * 100
}
