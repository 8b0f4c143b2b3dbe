// Package lookup provides timestamp-based access into candle series.
package lookup

import (
	"errors"
	"sort"

	"backtest-lab/internal/domain"
)

// Errors returned by lookup functions.
var (
	ErrNoCandleData = errors.New("no candle data available")
)

// Window returns the candles with timestamps in [startMs, endMs], both ends
// inclusive. The input must be sorted by timestamp ascending; the returned
// slice aliases the input and must not be mutated.
// Returns ErrNoCandleData if the series is empty.
func Window(startMs, endMs int64, candles []*domain.Candle) ([]*domain.Candle, error) {
	if len(candles) == 0 {
		return nil, ErrNoCandleData
	}

	lo := sort.Search(len(candles), func(i int) bool {
		return candles[i].TimestampMs >= startMs
	})
	hi := sort.Search(len(candles), func(i int) bool {
		return candles[i].TimestampMs > endMs
	})

	return candles[lo:hi], nil
}

// CloseAt returns the close of the candle at or before the target timestamp.
// If the target precedes the first candle, the first close is returned.
// Returns ErrNoCandleData if the series is empty.
func CloseAt(target int64, candles []*domain.Candle) (float64, error) {
	if len(candles) == 0 {
		return 0, ErrNoCandleData
	}

	// Find closest candle at or before target
	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].TimestampMs <= target {
			return candles[i].Close, nil
		}
	}

	// If no candle before target, use first available
	return candles[0].Close, nil
}
