package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a report as a Markdown string with the summary
// statistics grouped by section.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Backtest Report: %s\n\n", r.Label))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s` | Market: %s/%s | Initial Capital: %.2f\n\n",
		r.RunID, r.Exchange, r.Symbol, r.InitialCapital))

	s := r.Summary

	writeSection(&sb, "General", []statRow{
		{"Gross Profit", f(s.GrossProfit)},
		{"Net Profit", f(s.NetProfit)},
		{"ROI %", f(s.ROIPct)},
		{"Total Trades", d(s.TotalTrades)},
		{"Percent Profitable", f(s.PercentProfitable)},
		{"Profit Factor", f(s.ProfitFactor)},
		{"Win/Loss Ratio", f(s.WinLossRatio)},
		{"Expectancy", f(s.Expectancy)},
	})

	writeSection(&sb, "Profit & Loss Distribution", []statRow{
		{"Avg Trade Net Profit", f(s.AvgTradeNetProfit)},
		{"Avg Winning Trade", f(s.AvgWinningTrade)},
		{"Avg Losing Trade", f(s.AvgLosingTrade)},
		{"Largest Winning Trade", f(s.LargestWinningTrade)},
		{"Largest Losing Trade", f(s.LargestLosingTrade)},
		{"Max Consecutive Wins", d(s.MaxConsecutiveWins)},
		{"Max Consecutive Losses", d(s.MaxConsecutiveLosses)},
		{"Std Dev of Net Profit", f(s.StdProfit)},
	})

	writeSection(&sb, "Drawdown", []statRow{
		{"Max Drawdown", f(s.MaxDrawdown)},
		{"Max Drawdown %", f(s.MaxDrawdownPct)},
		{"Drawdown Duration (trades)", d(s.DrawdownDuration)},
		{"Avg Drawdown", f(s.AvgDrawdown)},
	})

	writeSection(&sb, "Performance Ratios", []statRow{
		{"Sharpe Ratio", f(s.SharpeRatio)},
		{"Sortino Ratio", f(s.SortinoRatio)},
		{"Recovery Factor", f(s.RecoveryFactor)},
	})

	writeSection(&sb, "Time Statistics", []statRow{
		{"Backtest Duration (ms)", fmt.Sprintf("%d", s.BacktestDurationMs)},
		{"Time In Market %", f(s.TimeInMarketPct)},
		{"Trades Per Day", f(s.TradesPerDay)},
		{"Avg Trade Duration (bars)", f(s.AvgTradeDurationBars)},
		{"Avg Trade Duration (min)", f(s.AvgTradeDurationMin)},
		{"Avg Winning Duration (min)", f(s.AvgWinningDurationMin)},
		{"Avg Losing Duration (min)", f(s.AvgLosingDurationMin)},
	})

	writeSection(&sb, "Operational Costs", []statRow{
		{"Total Fees", f(s.TotalFees)},
		{"Total Slippage", f(s.TotalSlippage)},
		{"Avg Fee Per Trade", f(s.AvgFeePerTrade)},
		{"Costs % of Gross Profit", f(s.CostsPctOfGrossProfit)},
	})

	// Trade table, ledger columns only
	sb.WriteString("## Trades\n\n")
	if len(r.Trades) == 0 {
		sb.WriteString("No closed trades.\n")
		return sb.String()
	}
	sb.WriteString("| # | Symbol | Entry (ms) | Exit (ms) | Entries | Net P&L | P&L % | Capital After |\n")
	sb.WriteString("|---|--------|------------|-----------|---------|---------|-------|---------------|\n")
	for i, t := range r.Trades {
		sb.WriteString(fmt.Sprintf("| %d | %s | %d | %d | %d | %.4f | %.4f | %.4f |\n",
			i+1, t.Symbol, t.EntryTimeMs, t.ExitTimeMs, t.NumEntries,
			t.NetPnL, t.PnLPct, t.CapitalAfter))
	}

	return sb.String()
}

type statRow struct {
	Name  string
	Value string
}

func writeSection(sb *strings.Builder, title string, rows []statRow) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	sb.WriteString("| Statistic | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", row.Name, row.Value))
	}
	sb.WriteString("\n")
}

func f(v float64) string { return fmt.Sprintf("%.4f", v) }
func d(v int) string     { return fmt.Sprintf("%d", v) }
