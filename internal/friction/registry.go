// Package friction holds the static per-market execution cost presets and
// resolves an (exchange, symbol) pair to a concrete friction model. The
// regime is part of the preset, chosen here at configuration time; the
// execution engine never inspects market taxonomy.
package friction

import (
	"errors"
	"fmt"
	"strings"

	"backtest-lab/internal/domain"
)

// ErrUnknownMarket is returned when no preset exists for the requested
// exchange/symbol pair.
var ErrUnknownMarket = errors.New("no friction configuration for market")

// presets keys friction models by exchange, then symbol. All values are
// immutable after init.
var presets = map[string]map[string]domain.FrictionModel{
	"binance": {
		"BTC": domain.ProportionalFriction{TickSize: 0.01, FeeRate: 0.001, SlippageRate: 0.0002, PricePrecision: 2},
		"ETH": domain.ProportionalFriction{TickSize: 0.01, FeeRate: 0.001, SlippageRate: 0.0002, PricePrecision: 2},
	},
	"kucoin": {
		"BTC": domain.ProportionalFriction{TickSize: 0.0001, FeeRate: 0.0008, SlippageRate: 0.0003, PricePrecision: 4},
		"ETH": domain.ProportionalFriction{TickSize: 0.0001, FeeRate: 0.0008, SlippageRate: 0.0003, PricePrecision: 4},
	},
	"cme": {
		"ES": domain.FixedFriction{TickSize: 0.25, SlippageTicks: 1, FeeFixedPerUnit: 1.39, TickValue: 12.50},
		"NQ": domain.FixedFriction{TickSize: 0.25, SlippageTicks: 1, FeeFixedPerUnit: 1.39, TickValue: 5.00},
		"GC": domain.FixedFriction{TickSize: 0.10, SlippageTicks: 1, FeeFixedPerUnit: 1.60, TickValue: 10.00},
		"CL": domain.FixedFriction{TickSize: 0.01, SlippageTicks: 2, FeeFixedPerUnit: 1.50, TickValue: 10.00},
	},
}

// Lookup resolves the friction model for an exchange/symbol pair. The
// exchange name is matched case-insensitively; symbols are exact.
func Lookup(exchange, symbol string) (domain.FrictionModel, error) {
	markets, ok := presets[strings.ToLower(exchange)]
	if !ok {
		return nil, fmt.Errorf("%w: exchange %q", ErrUnknownMarket, exchange)
	}
	model, ok := markets[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %q on %q", ErrUnknownMarket, symbol, exchange)
	}
	return model, nil
}

// Exchanges returns the configured exchange keys.
func Exchanges() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
