package tradestats

import (
	"math"

	"backtest-lab/internal/domain"
)

// computeCloseVolatilityPct calculates the sample standard deviation
// (n-1 denominator) of close-to-close percent changes inside the window.
// Windows with fewer than 3 candles have fewer than 2 changes and return 0.
func computeCloseVolatilityPct(window []*domain.Candle) float64 {
	if len(window) < 3 {
		return 0
	}

	changes := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		prev := window[i-1].Close
		if prev == 0 {
			continue
		}
		changes = append(changes, (window[i].Close-prev)/prev*100)
	}
	if len(changes) < 2 {
		return 0
	}

	mean := 0.0
	for _, c := range changes {
		mean += c
	}
	mean /= float64(len(changes))

	sumSq := 0.0
	for _, c := range changes {
		diff := c - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(changes)-1))
}

// computeCloseDrawdownPct calculates the worst peak-to-trough percent
// decline of the close series inside the window.
// Closes must be in chronological order.
func computeCloseDrawdownPct(window []*domain.Candle) float64 {
	if len(window) == 0 {
		return 0
	}

	peak := window[0].Close
	maxDrawdown := 0.0

	for _, c := range window {
		if c.Close > peak {
			peak = c.Close
		}
		if peak > 0 {
			drawdown := (peak - c.Close) / peak * 100
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}
	return maxDrawdown
}
