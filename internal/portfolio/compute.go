package portfolio

import "math"

// computeMean calculates the arithmetic mean of the values.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0 // Need at least 2 samples for sample stddev
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computeDownsideDeviation calculates the root mean square of the negative
// values only, over the full sample size.
func computeDownsideDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		if v < 0 {
			sumSq += v * v
		}
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// computeMaxConsecutiveWins finds the longest streak of net P&L > 0.
// Values must be in chronological order.
func computeMaxConsecutiveWins(netPnls []float64) int {
	maxStreak := 0
	currentStreak := 0

	for _, pnl := range netPnls {
		if pnl > 0 {
			currentStreak++
			if currentStreak > maxStreak {
				maxStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxStreak
}

// computeMaxConsecutiveLosses finds the longest streak of net P&L <= 0.
// Values must be in chronological order.
func computeMaxConsecutiveLosses(netPnls []float64) int {
	maxStreak := 0
	currentStreak := 0

	for _, pnl := range netPnls {
		if pnl <= 0 {
			currentStreak++
			if currentStreak > maxStreak {
				maxStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxStreak
}

// computeDrawdownStats walks the equity curve once and returns the worst
// peak-to-trough decline (absolute and as a percent of its peak), the
// longest run of points spent below a peak, and the mean drawdown across
// all points.
func computeDrawdownStats(equity []float64) (maxDD, maxDDPct float64, duration int, avgDD float64) {
	if len(equity) == 0 {
		return 0, 0, 0, 0
	}

	peak := equity[0]
	currentRun := 0
	sumDD := 0.0

	for _, v := range equity {
		if v >= peak {
			peak = v
			currentRun = 0
		} else {
			currentRun++
			if currentRun > duration {
				duration = currentRun
			}
		}

		dd := peak - v
		sumDD += dd
		if dd > maxDD {
			maxDD = dd
			if peak > 0 {
				maxDDPct = dd / peak * 100
			}
		}
	}

	avgDD = sumDD / float64(len(equity))
	return maxDD, maxDDPct, duration, avgDD
}
