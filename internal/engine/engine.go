// Package engine turns an ordered sequence of trade signals into realized
// positions and closed trades under market frictions: fees, slippage, tick
// rounding and multi-entry averaging.
package engine

import (
	"fmt"

	"backtest-lab/internal/domain"
	"backtest-lab/internal/idhash"
)

// Engine processes signals strictly in order and maintains the available
// capital and at most one open position per symbol. An Engine holds no
// process-wide state: construct a fresh one per run, so concurrent runs
// (one engine per worker) are safe as long as the inputs are shared
// read-only.
type Engine struct {
	friction       domain.FrictionModel
	initialCapital float64

	capital float64
	open    map[string]*Position
	trades  []*domain.ClosedTrade
	lastTs  int64
}

// New creates an engine for one run.
func New(friction domain.FrictionModel, initialCapital float64) (*Engine, error) {
	if initialCapital <= 0 {
		return nil, ErrNonPositiveCapital
	}
	if err := friction.Validate(); err != nil {
		return nil, fmt.Errorf("friction model: %w", err)
	}
	return &Engine{
		friction:       friction,
		initialCapital: initialCapital,
		capital:        initialCapital,
		open:           make(map[string]*Position),
	}, nil
}

// Run executes the full signal sequence and returns the closed-trade ledger
// in exit order. Any error aborts the run; the returned ledger is nil in
// that case and must be discarded. Identical inputs always produce an
// identical ledger.
//
// A position still open after the last signal is not included: its P&L is
// unknown until it closes.
func (e *Engine) Run(signals []*domain.Signal) ([]*domain.ClosedTrade, error) {
	for i, sig := range signals {
		if err := sig.Validate(); err != nil {
			return nil, fmt.Errorf("signal %d (%s %s @ %v): %w: %w",
				i, sig.Side, sig.Symbol, sig.ReferencePrice, ErrInvalidSignal, err)
		}
		if sig.TimestampMs < e.lastTs {
			return nil, fmt.Errorf("signal %d at %d after %d: %w",
				i, sig.TimestampMs, e.lastTs, ErrOutOfOrder)
		}
		e.lastTs = sig.TimestampMs

		switch sig.Side {
		case domain.SideBuy:
			e.handleBuy(sig)
		case domain.SideSell:
			if err := e.handleSell(sig); err != nil {
				return nil, fmt.Errorf("signal %d (%s): %w", i, sig.Symbol, err)
			}
		}
	}

	return e.trades, nil
}

// Capital returns the currently available capital.
func (e *Engine) Capital() float64 {
	return e.capital
}

// handleBuy opens a position on the first BUY for a symbol and appends an
// averaged entry on every subsequent BUY while the position stays open.
func (e *Engine) handleBuy(sig *domain.Signal) {
	allocated := e.capital * sig.SizeFraction
	if allocated <= 0 {
		// No capital left to commit; the signal is valid but unfillable.
		return
	}

	executedPrice := e.friction.ExecutedBuyPrice(sig.ReferencePrice)
	fee := e.friction.Fee(allocated, allocated/executedPrice)
	quantity := (allocated - fee) / executedPrice
	slippageCost := (executedPrice - sig.ReferencePrice) * quantity
	if slippageCost < 0 {
		slippageCost = -slippageCost
	}

	pos, ok := e.open[sig.Symbol]
	if !ok {
		pos = newPosition(sig.Symbol, sig.TimestampMs)
		e.open[sig.Symbol] = pos
	}

	pos.addEntry(Entry{
		TimestampMs:      sig.TimestampMs,
		ExecutedPrice:    executedPrice,
		CapitalAllocated: allocated,
		Quantity:         quantity,
		FeePaid:          fee,
		SlippageCost:     slippageCost,
	})

	e.capital -= allocated + fee
}

// handleSell liquidates the entire open position for the signal's symbol.
// The signal's own size fraction is ignored: partial closes are not modeled.
func (e *Engine) handleSell(sig *domain.Signal) error {
	pos, ok := e.open[sig.Symbol]
	if !ok {
		return ErrNoOpenPosition
	}

	executedPrice := e.friction.ExecutedSellPrice(sig.ReferencePrice)
	quantity := pos.TotalQuantity()
	exitValue := quantity * executedPrice
	exitFee := e.friction.Fee(exitValue, quantity)
	exitSlippage := (sig.ReferencePrice - executedPrice) * quantity
	if exitSlippage < 0 {
		exitSlippage = -exitSlippage
	}

	totalCost := pos.TotalCost()
	entryFees := pos.TotalFees()
	entrySlippage := pos.TotalSlippage()
	totalFees := entryFees + exitFee
	totalSlippage := entrySlippage + exitSlippage

	grossPnL := exitValue - totalCost
	netPnL := grossPnL - totalFees - totalSlippage

	e.capital += exitValue - exitFee

	pnlPct := 0.0
	if totalCost > 0 {
		pnlPct = netPnL / totalCost * 100
	}

	trade := &domain.ClosedTrade{
		TradeID:       idhash.ComputeTradeID(sig.Symbol, pos.EntryTimeMs, sig.TimestampMs, len(e.trades)),
		Symbol:        sig.Symbol,
		EntryTimeMs:   pos.EntryTimeMs,
		ExitTimeMs:    sig.TimestampMs,
		NumEntries:    len(pos.Entries),
		AvgEntryPrice: pos.AvgEntryPrice(),
		ExitPrice:     executedPrice,
		TotalCost:     totalCost,
		ExitValue:     exitValue,
		EntryFees:     entryFees,
		ExitFee:       exitFee,
		TotalFees:     totalFees,
		EntrySlippage: entrySlippage,
		ExitSlippage:  exitSlippage,
		TotalSlippage: totalSlippage,
		GrossPnL:      grossPnL,
		NetPnL:        netPnL,
		CapitalAfter:  e.capital,
		PnLPct:        pnlPct,
	}
	e.trades = append(e.trades, trade)

	delete(e.open, sig.Symbol)
	return nil
}
