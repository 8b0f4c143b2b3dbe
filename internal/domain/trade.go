package domain

// ClosedTrade is the immutable record of one completed round trip: one or
// more averaged entries fully liquidated by a single exit. The ordered
// sequence of ClosedTrades is the execution engine's sole output.
type ClosedTrade struct {
	TradeID string // deterministic hash, assigned when the trade closes
	Symbol  string // traded asset

	EntryTimeMs int64 // timestamp of the first entry (ms)
	ExitTimeMs  int64 // timestamp of the liquidating exit (ms)
	NumEntries  int   // accumulated entries in the position

	AvgEntryPrice float64 // total_cost / total_quantity
	ExitPrice     float64 // friction-adjusted exit price
	TotalCost     float64 // sum of capital allocated across entries
	ExitValue     float64 // quantity sold * exit price

	EntryFees     float64 // fees paid across all entries
	ExitFee       float64 // fee paid on the exit
	TotalFees     float64 // entry fees + exit fee
	EntrySlippage float64 // slippage cost across all entries
	ExitSlippage  float64 // slippage cost on the exit
	TotalSlippage float64 // entry + exit slippage cost

	GrossPnL     float64 // exit_value - total_cost
	NetPnL       float64 // gross_pnl - total_fees - total_slippage
	CapitalAfter float64 // available capital after the exit settled
	PnLPct       float64 // net_pnl / total_cost * 100
}

// Quantity returns the units liquidated by the exit, recovered from the
// cost/price aggregates.
func (t *ClosedTrade) Quantity() float64 {
	if t.AvgEntryPrice == 0 {
		return 0
	}
	return t.TotalCost / t.AvgEntryPrice
}
