package domain

import (
	"errors"
	"fmt"
)

// Side identifies the direction of a trade signal.
type Side string

// Side constants.
const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Signal validation errors.
var (
	ErrNonPositivePrice    = errors.New("reference price must be positive")
	ErrSizeFractionRange   = errors.New("size fraction must be in (0, 1]")
	ErrUnknownSide         = errors.New("side must be BUY or SELL")
	ErrEmptySymbol         = errors.New("symbol must not be empty")
)

// Signal is a single trading decision produced by an external strategy.
// It carries no cost information; fees and slippage are applied by the
// execution engine when the signal is filled.
type Signal struct {
	TimestampMs    int64   // Unix timestamp in milliseconds
	Side           Side    // BUY or SELL
	Symbol         string  // traded asset, e.g. "BTC"
	ReferencePrice float64 // market reference price at signal time
	SizeFraction   float64 // fraction of available capital to commit (0.1 = 10%)
}

// Validate checks the signal fields. SELL signals carry a size fraction for
// schema symmetry but it is never used: a SELL always liquidates the whole
// open position.
func (s *Signal) Validate() error {
	if s.Side != SideBuy && s.Side != SideSell {
		return fmt.Errorf("%w: %q", ErrUnknownSide, s.Side)
	}
	if s.Symbol == "" {
		return ErrEmptySymbol
	}
	if s.ReferencePrice <= 0 {
		return fmt.Errorf("%w: %v", ErrNonPositivePrice, s.ReferencePrice)
	}
	if s.SizeFraction <= 0 || s.SizeFraction > 1 {
		return fmt.Errorf("%w: %v", ErrSizeFractionRange, s.SizeFraction)
	}
	return nil
}
