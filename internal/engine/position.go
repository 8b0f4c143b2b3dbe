package engine

// Entry is one executed fill within a position. Entries are never mutated
// after creation and are owned exclusively by their Position.
type Entry struct {
	TimestampMs      int64   // fill time (ms)
	ExecutedPrice    float64 // friction-adjusted, tick-rounded price
	CapitalAllocated float64 // account currency committed to this fill
	Quantity         float64 // units purchased, net of the entry fee
	FeePaid          float64 // fee charged on this fill
	SlippageCost     float64 // |executed - reference| * quantity
}

// Position is the open exposure for one symbol: an append-only list of
// accumulated entries. Aggregates are recomputed on demand rather than
// cached, so they can never drift from the entry list. A position with zero
// entries never exists; the ledger creates it together with its first entry.
type Position struct {
	Symbol      string
	EntryTimeMs int64 // timestamp of the first entry
	Entries     []Entry
}

// newPosition creates a position opened at the given time.
func newPosition(symbol string, entryTimeMs int64) *Position {
	return &Position{Symbol: symbol, EntryTimeMs: entryTimeMs}
}

// addEntry appends one fill. Called for every BUY while the position is open.
func (p *Position) addEntry(e Entry) {
	p.Entries = append(p.Entries, e)
}

// TotalCost is the capital allocated across all entries.
func (p *Position) TotalCost() float64 {
	sum := 0.0
	for _, e := range p.Entries {
		sum += e.CapitalAllocated
	}
	return sum
}

// TotalQuantity is the units held across all entries.
func (p *Position) TotalQuantity() float64 {
	sum := 0.0
	for _, e := range p.Entries {
		sum += e.Quantity
	}
	return sum
}

// TotalFees is the fees paid across all entries.
func (p *Position) TotalFees() float64 {
	sum := 0.0
	for _, e := range p.Entries {
		sum += e.FeePaid
	}
	return sum
}

// TotalSlippage is the slippage cost across all entries.
func (p *Position) TotalSlippage() float64 {
	sum := 0.0
	for _, e := range p.Entries {
		sum += e.SlippageCost
	}
	return sum
}

// AvgEntryPrice is the quantity-weighted acquisition price.
func (p *Position) AvgEntryPrice() float64 {
	qty := p.TotalQuantity()
	if qty == 0 {
		return 0
	}
	return p.TotalCost() / qty
}
