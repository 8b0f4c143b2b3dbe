// Package tradestats enriches closed trades with price-path metrics computed
// by re-scanning the candle series between each trade's entry and exit.
package tradestats

import (
	"errors"
	"fmt"

	"backtest-lab/internal/domain"
	"backtest-lab/internal/lookup"
)

// ErrNoCandleCoverage is returned when a trade's [entry, exit] window
// contains no candles. Metrics computed from a partial window would be
// silently wrong, so the whole enrichment fails instead.
var ErrNoCandleCoverage = errors.New("no candle coverage for trade window")

// Engine computes per-trade metrics against one candle series. Candles must
// be sorted by timestamp ascending and are treated as read-only.
type Engine struct {
	initialCapital float64
	candles        []*domain.Candle
}

// NewEngine creates a metrics engine over the given candle series.
func NewEngine(initialCapital float64, candles []*domain.Candle) *Engine {
	return &Engine{
		initialCapital: initialCapital,
		candles:        candles,
	}
}

// Enrich computes window metrics for every trade in ledger order. The
// capital base for capital-at-risk accumulates realized net P&L trade by
// trade, starting from the initial capital.
func (e *Engine) Enrich(trades []*domain.ClosedTrade) ([]*domain.EnrichedTrade, error) {
	enriched := make([]*domain.EnrichedTrade, 0, len(trades))
	capitalBase := e.initialCapital

	for _, trade := range trades {
		window, err := lookup.Window(trade.EntryTimeMs, trade.ExitTimeMs, e.candles)
		if err != nil {
			return nil, fmt.Errorf("trade %s: %w", trade.TradeID, err)
		}
		if len(window) == 0 {
			return nil, fmt.Errorf("trade %s [%d, %d]: %w",
				trade.TradeID, trade.EntryTimeMs, trade.ExitTimeMs, ErrNoCandleCoverage)
		}

		m := computeWindowMetrics(trade, window)
		m.TradeID = trade.TradeID
		if capitalBase > 0 {
			m.CapitalAtRiskPct = trade.TotalCost / capitalBase * 100
		}
		m.ReturnOnCapitalPct = trade.PnLPct
		m.CumulativeCapital = trade.CapitalAfter

		enriched = append(enriched, &domain.EnrichedTrade{
			ClosedTrade: *trade,
			Metrics:     m,
		})

		capitalBase += trade.NetPnL
	}

	return enriched, nil
}

// computeWindowMetrics derives the price-path metrics of one trade from its
// candle window. The window is never empty.
func computeWindowMetrics(trade *domain.ClosedTrade, window []*domain.Candle) domain.TradeMetrics {
	quantity := trade.Quantity()
	avgEntry := trade.AvgEntryPrice

	m := domain.TradeMetrics{
		DurationBars: len(window),
	}

	// Excursions and bar counts against the breakeven price.
	worstExcursion := 0.0
	bestExcursion := 0.0
	for _, c := range window {
		adverse := (c.Low - avgEntry) * quantity
		favorable := (c.High - avgEntry) * quantity
		if adverse < worstExcursion {
			worstExcursion = adverse
		}
		if favorable > bestExcursion {
			bestExcursion = favorable
		}

		if c.Close > avgEntry {
			m.BarsInProfit++
		} else if c.Close < avgEntry {
			m.BarsInLoss++
		}
	}
	m.MAE = worstExcursion
	m.MFE = bestExcursion

	m.TradeVolatilityPct = computeCloseVolatilityPct(window)
	m.TradeDrawdownPct = computeCloseDrawdownPct(window)

	if m.MFE > 0 {
		eff := trade.NetPnL / m.MFE * 100
		if eff < 0 {
			eff = 0
		} else if eff > 100 {
			eff = 100
		}
		m.ProfitEfficiencyPct = eff
	}

	if m.MAE < 0 {
		m.RiskRewardRatio = m.MFE / -m.MAE
	}

	return m
}
