// Package portfolio aggregates an enriched trade ledger into portfolio-level
// statistics. Summarize is a pure function of its inputs; it holds no state
// and can be called concurrently from independent runs.
package portfolio

import (
	"math"

	"backtest-lab/internal/domain"
)

const msPerDay = 24 * 60 * 60 * 1000

// Summarize computes the full portfolio summary over trades in ledger order.
// Zero trades is not an error: counts and sums are zero and every ratio with
// a degenerate denominator resolves to NaN.
func Summarize(trades []*domain.EnrichedTrade, initialCapital float64) *domain.PortfolioSummary {
	s := &domain.PortfolioSummary{
		TotalTrades: len(trades),
	}

	if len(trades) == 0 {
		s.ProfitFactor = math.NaN()
		s.WinLossRatio = math.NaN()
		s.Expectancy = math.NaN()
		s.SharpeRatio = math.NaN()
		s.SortinoRatio = math.NaN()
		s.RecoveryFactor = math.NaN()
		s.MaxDrawdownPct = math.NaN()
		s.CostsPctOfGrossProfit = math.NaN()
		return s
	}

	netPnls := make([]float64, len(trades))

	wins, losses := 0, 0
	sumWins, sumLosses := 0.0, 0.0
	var largestWin, largestLoss float64
	var sumWinDurationMin, sumLossDurationMin float64
	var sumDurationMs int64
	var sumDurationBars int

	for i, t := range trades {
		netPnls[i] = t.NetPnL
		s.GrossProfit += t.GrossPnL
		s.NetProfit += t.NetPnL
		s.TotalFees += t.TotalFees
		s.TotalSlippage += t.TotalSlippage

		durationMin := float64(t.ExitTimeMs-t.EntryTimeMs) / 60000.0
		sumDurationMs += t.ExitTimeMs - t.EntryTimeMs
		sumDurationBars += t.Metrics.DurationBars

		if t.NetPnL > 0 {
			wins++
			sumWins += t.NetPnL
			sumWinDurationMin += durationMin
			if t.NetPnL > largestWin {
				largestWin = t.NetPnL
			}
		} else {
			losses++
			sumLosses += t.NetPnL
			sumLossDurationMin += durationMin
			if t.NetPnL < largestLoss {
				largestLoss = t.NetPnL
			}
		}
	}

	n := float64(len(trades))

	// General
	s.ROIPct = s.NetProfit / initialCapital * 100
	s.PercentProfitable = float64(wins) / n * 100
	s.ProfitFactor = ratioOrNaN(sumWins, math.Abs(sumLosses))
	s.WinLossRatio = ratioOrNaN(float64(wins), float64(losses))
	s.Expectancy = s.NetProfit / n

	// P&L distribution
	s.AvgTradeNetProfit = s.NetProfit / n
	if wins > 0 {
		s.AvgWinningTrade = sumWins / float64(wins)
	}
	if losses > 0 {
		s.AvgLosingTrade = sumLosses / float64(losses)
	}
	s.LargestWinningTrade = largestWin
	s.LargestLosingTrade = largestLoss
	s.MaxConsecutiveWins = computeMaxConsecutiveWins(netPnls)
	s.MaxConsecutiveLosses = computeMaxConsecutiveLosses(netPnls)
	mean := computeMean(netPnls)
	s.StdProfit = computeStddev(netPnls, mean)

	// Drawdown over the cumulative-capital series
	equity := equityCurve(trades, initialCapital)
	s.MaxDrawdown, s.MaxDrawdownPct, s.DrawdownDuration, s.AvgDrawdown = computeDrawdownStats(equity)

	// Time statistics
	firstEntry := trades[0].EntryTimeMs
	lastExit := trades[len(trades)-1].ExitTimeMs
	s.BacktestDurationMs = lastExit - firstEntry
	if s.BacktestDurationMs > 0 {
		s.TimeInMarketPct = float64(sumDurationMs) / float64(s.BacktestDurationMs) * 100
		s.TradesPerDay = n / (float64(s.BacktestDurationMs) / msPerDay)
	}
	s.AvgTradeDurationBars = float64(sumDurationBars) / n
	s.AvgTradeDurationMin = float64(sumDurationMs) / 60000.0 / n
	if wins > 0 {
		s.AvgWinningDurationMin = sumWinDurationMin / float64(wins)
	}
	if losses > 0 {
		s.AvgLosingDurationMin = sumLossDurationMin / float64(losses)
	}

	// Risk-adjusted ratios. Annualization scales by the trade frequency so
	// runs over different horizons stay comparable.
	annualization := 1.0
	if s.TradesPerDay > 0 {
		annualization = math.Sqrt(s.TradesPerDay * 365)
	}
	if s.StdProfit > 0 {
		s.SharpeRatio = mean / s.StdProfit * annualization
	} else {
		s.SharpeRatio = math.NaN()
	}
	downside := computeDownsideDeviation(netPnls)
	if downside > 0 {
		s.SortinoRatio = mean / downside * annualization
	} else {
		s.SortinoRatio = math.NaN()
	}
	s.RecoveryFactor = ratioOrNaN(s.NetProfit, s.MaxDrawdown)

	// Operational costs
	s.AvgFeePerTrade = s.TotalFees / n
	if s.GrossProfit != 0 {
		s.CostsPctOfGrossProfit = s.TotalFees / math.Abs(s.GrossProfit) * 100
	} else {
		s.CostsPctOfGrossProfit = math.NaN()
	}

	return s
}

// equityCurve is the cumulative-capital series the drawdown statistics run
// over: the initial capital followed by each trade's settled balance.
func equityCurve(trades []*domain.EnrichedTrade, initialCapital float64) []float64 {
	equity := make([]float64, 0, len(trades)+1)
	equity = append(equity, initialCapital)
	for _, t := range trades {
		equity = append(equity, t.CapitalAfter)
	}
	return equity
}

// ratioOrNaN divides, resolving a degenerate denominator to NaN.
func ratioOrNaN(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}
