package domain

import (
	"errors"
	"math"
)

// Friction model validation errors.
var (
	ErrNonPositiveTickSize = errors.New("tick size must be positive")
	ErrNegativeFee         = errors.New("fee must not be negative")
	ErrNegativeSlippage    = errors.New("slippage must not be negative")
)

// FrictionModel describes the execution costs of one market: how the
// reference price slips in the adverse direction, how executed prices round
// to the venue's tick grid, and how fees are charged. Exactly two regimes
// exist, selected explicitly at configuration-load time: proportional
// (crypto-style rates on notional) and fixed (futures-style ticks and
// per-unit fees). The interface is sealed so a single run can never mix
// regimes.
type FrictionModel interface {
	// ExecutedBuyPrice applies adverse slippage upward and rounds to tick.
	ExecutedBuyPrice(referencePrice float64) float64

	// ExecutedSellPrice applies adverse slippage downward and rounds to tick.
	ExecutedSellPrice(referencePrice float64) float64

	// Fee returns the fee charged for a fill of the given notional value
	// and quantity. Proportional models use the notional, fixed models the
	// quantity.
	Fee(notional, quantity float64) float64

	// Validate checks the model parameters.
	Validate() error

	frictionModel()
}

// ProportionalFriction charges fees and slippage as rates on notional value.
type ProportionalFriction struct {
	TickSize       float64 // minimum price increment
	FeeRate        float64 // e.g. 0.001 = 0.1% of notional
	SlippageRate   float64 // e.g. 0.0002 = 0.02% adverse price move
	PricePrecision int     // decimal places the venue quotes at
}

// ExecutedBuyPrice slips the price up by the slippage rate, rounded to tick.
func (f ProportionalFriction) ExecutedBuyPrice(referencePrice float64) float64 {
	return roundToTick(referencePrice*(1+f.SlippageRate), f.TickSize)
}

// ExecutedSellPrice slips the price down by the slippage rate, rounded to tick.
func (f ProportionalFriction) ExecutedSellPrice(referencePrice float64) float64 {
	return roundToTick(referencePrice*(1-f.SlippageRate), f.TickSize)
}

// Fee charges the fee rate on the notional value of the fill.
func (f ProportionalFriction) Fee(notional, _ float64) float64 {
	return notional * f.FeeRate
}

// Validate checks the model parameters.
func (f ProportionalFriction) Validate() error {
	if f.TickSize <= 0 {
		return ErrNonPositiveTickSize
	}
	if f.FeeRate < 0 {
		return ErrNegativeFee
	}
	if f.SlippageRate < 0 {
		return ErrNegativeSlippage
	}
	return nil
}

func (ProportionalFriction) frictionModel() {}

// FixedFriction charges a flat fee per unit traded and slips the price by a
// fixed number of ticks, as on CME-style futures venues.
type FixedFriction struct {
	TickSize        float64 // minimum price increment
	SlippageTicks   int     // adverse slippage expressed in ticks
	FeeFixedPerUnit float64 // flat fee per unit traded
	TickValue       float64 // currency value of one tick per unit
}

// ExecutedBuyPrice slips the price up by the configured ticks, rounded to tick.
func (f FixedFriction) ExecutedBuyPrice(referencePrice float64) float64 {
	return roundToTick(referencePrice+float64(f.SlippageTicks)*f.TickSize, f.TickSize)
}

// ExecutedSellPrice slips the price down by the configured ticks, rounded to tick.
func (f FixedFriction) ExecutedSellPrice(referencePrice float64) float64 {
	return roundToTick(referencePrice-float64(f.SlippageTicks)*f.TickSize, f.TickSize)
}

// Fee charges the flat per-unit fee on the quantity of the fill.
func (f FixedFriction) Fee(_, quantity float64) float64 {
	return f.FeeFixedPerUnit * quantity
}

// Validate checks the model parameters.
func (f FixedFriction) Validate() error {
	if f.TickSize <= 0 {
		return ErrNonPositiveTickSize
	}
	if f.FeeFixedPerUnit < 0 {
		return ErrNegativeFee
	}
	if f.SlippageTicks < 0 {
		return ErrNegativeSlippage
	}
	return nil
}

func (FixedFriction) frictionModel() {}

// roundToTick rounds a price to the nearest multiple of the tick size.
// Identical inputs always produce identical outputs.
func roundToTick(price, tickSize float64) float64 {
	return math.Round(price/tickSize) * tickSize
}

// Compile-time interface checks.
var (
	_ FrictionModel = ProportionalFriction{}
	_ FrictionModel = FixedFriction{}
)
