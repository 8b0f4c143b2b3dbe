package engine

import (
	"errors"
	"math"
	"testing"

	"backtest-lab/internal/domain"
)

func crypto(feeRate, slippageRate float64) domain.ProportionalFriction {
	return domain.ProportionalFriction{
		TickSize:       0.01,
		FeeRate:        feeRate,
		SlippageRate:   slippageRate,
		PricePrecision: 2,
	}
}

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestNew_InvalidInputs(t *testing.T) {
	if _, err := New(crypto(0.001, 0), 0); !errors.Is(err, ErrNonPositiveCapital) {
		t.Errorf("New() with zero capital: error = %v, want ErrNonPositiveCapital", err)
	}
	if _, err := New(crypto(0.001, 0), -100); !errors.Is(err, ErrNonPositiveCapital) {
		t.Errorf("New() with negative capital: error = %v, want ErrNonPositiveCapital", err)
	}
	bad := domain.ProportionalFriction{TickSize: 0, FeeRate: 0.001}
	if _, err := New(bad, 1000); !errors.Is(err, domain.ErrNonPositiveTickSize) {
		t.Errorf("New() with zero tick size: error = %v, want ErrNonPositiveTickSize", err)
	}
}

func TestRun_SingleRoundTrip(t *testing.T) {
	eng, err := New(crypto(0.001, 0), 1000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	signals := []*domain.Signal{
		{TimestampMs: 1000, Side: domain.SideBuy, Symbol: "BTC", ReferencePrice: 100, SizeFraction: 1.0},
		{TimestampMs: 2000, Side: domain.SideSell, Symbol: "BTC", ReferencePrice: 110, SizeFraction: 1.0},
	}

	trades, err := eng.Run(signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("Run() trades = %d, want 1", len(trades))
	}

	tr := trades[0]

	// Entry: alloc=1000, fee=1.0, quantity=(1000-1)/100=9.99.
	if !approxEqual(tr.EntryFees, 1.0, 1e-9) {
		t.Errorf("EntryFees = %v, want 1.0", tr.EntryFees)
	}
	if !approxEqual(tr.Quantity(), 9.99, 1e-9) {
		t.Errorf("Quantity() = %v, want 9.99", tr.Quantity())
	}
	// Average entry is total_cost / total_quantity = 1000 / 9.99. Quantity is
	// net of the entry fee, so the average sits above the executed price 100
	// by the fee drag.
	if !approxEqual(tr.AvgEntryPrice, 1000.0/9.99, 1e-9) {
		t.Errorf("AvgEntryPrice = %v, want %v", tr.AvgEntryPrice, 1000.0/9.99)
	}

	// Exit: 9.99 * 110 = 1098.9, exit fee = 1.0989.
	if !approxEqual(tr.ExitValue, 1098.9, 1e-9) {
		t.Errorf("ExitValue = %v, want 1098.9", tr.ExitValue)
	}
	if !approxEqual(tr.ExitFee, 1.0989, 1e-9) {
		t.Errorf("ExitFee = %v, want 1.0989", tr.ExitFee)
	}
	if !approxEqual(tr.GrossPnL, 98.9, 1e-9) {
		t.Errorf("GrossPnL = %v, want 98.9", tr.GrossPnL)
	}
	if !approxEqual(tr.NetPnL, 96.8011, 1e-9) {
		t.Errorf("NetPnL = %v, want 96.8011", tr.NetPnL)
	}
	if !approxEqual(tr.CapitalAfter, 1096.8011, 1e-9) {
		t.Errorf("CapitalAfter = %v, want 1096.8011", tr.CapitalAfter)
	}
	if !approxEqual(tr.PnLPct, 9.68011, 1e-9) {
		t.Errorf("PnLPct = %v, want 9.68011", tr.PnLPct)
	}
	if tr.NumEntries != 1 {
		t.Errorf("NumEntries = %d, want 1", tr.NumEntries)
	}
	if len(tr.TradeID) != 64 {
		t.Errorf("TradeID length = %d, want 64", len(tr.TradeID))
	}
	if !approxEqual(eng.Capital(), tr.CapitalAfter, 1e-12) {
		t.Errorf("Capital() = %v, want %v", eng.Capital(), tr.CapitalAfter)
	}
}

func TestRun_SellWithoutPosition(t *testing.T) {
	eng, err := New(crypto(0.001, 0), 1000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	signals := []*domain.Signal{
		{TimestampMs: 1000, Side: domain.SideSell, Symbol: "BTC", ReferencePrice: 100, SizeFraction: 1.0},
	}

	trades, err := eng.Run(signals)
	if !errors.Is(err, ErrNoOpenPosition) {
		t.Fatalf("Run() error = %v, want ErrNoOpenPosition", err)
	}
	if trades != nil {
		t.Errorf("Run() trades = %v, want nil on failure", trades)
	}
}

func TestRun_MultiEntryAveraging(t *testing.T) {
	eng, err := New(crypto(0, 0), 1000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// With zero fees: first BUY allocates 500 at price 100 (qty 5), second
	// allocates half the remaining 500 at price 200 (qty 1.25).
	signals := []*domain.Signal{
		{TimestampMs: 1000, Side: domain.SideBuy, Symbol: "ETH", ReferencePrice: 100, SizeFraction: 0.5},
		{TimestampMs: 2000, Side: domain.SideBuy, Symbol: "ETH", ReferencePrice: 200, SizeFraction: 0.5},
		{TimestampMs: 3000, Side: domain.SideSell, Symbol: "ETH", ReferencePrice: 200, SizeFraction: 1.0},
	}

	trades, err := eng.Run(signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("Run() trades = %d, want 1", len(trades))
	}

	tr := trades[0]
	if tr.NumEntries != 2 {
		t.Errorf("NumEntries = %d, want 2", tr.NumEntries)
	}
	if !approxEqual(tr.TotalCost, 750, 1e-9) {
		t.Errorf("TotalCost = %v, want 750", tr.TotalCost)
	}
	// Quantity 6.25, avg entry 750/6.25 = 120.
	if !approxEqual(tr.AvgEntryPrice, 120, 1e-9) {
		t.Errorf("AvgEntryPrice = %v, want 120", tr.AvgEntryPrice)
	}
	if !approxEqual(tr.ExitValue, 1250, 1e-9) {
		t.Errorf("ExitValue = %v, want 1250", tr.ExitValue)
	}
	if !approxEqual(tr.GrossPnL, 500, 1e-9) {
		t.Errorf("GrossPnL = %v, want 500", tr.GrossPnL)
	}
	if tr.EntryTimeMs != 1000 {
		t.Errorf("EntryTimeMs = %d, want 1000 (first entry)", tr.EntryTimeMs)
	}
	if !approxEqual(eng.Capital(), 1500, 1e-9) {
		t.Errorf("Capital() = %v, want 1500", eng.Capital())
	}
}

func TestRun_SellLiquidatesFully(t *testing.T) {
	eng, err := New(crypto(0, 0), 1000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// The SELL's own size fraction must be ignored: the position closes in
	// full and a second SELL finds nothing open.
	signals := []*domain.Signal{
		{TimestampMs: 1000, Side: domain.SideBuy, Symbol: "BTC", ReferencePrice: 100, SizeFraction: 1.0},
		{TimestampMs: 2000, Side: domain.SideSell, Symbol: "BTC", ReferencePrice: 100, SizeFraction: 0.25},
		{TimestampMs: 3000, Side: domain.SideSell, Symbol: "BTC", ReferencePrice: 100, SizeFraction: 0.25},
	}

	_, err = eng.Run(signals)
	if !errors.Is(err, ErrNoOpenPosition) {
		t.Fatalf("Run() error = %v, want ErrNoOpenPosition on second SELL", err)
	}
}

func TestRun_IndependentSymbols(t *testing.T) {
	eng, err := New(crypto(0, 0), 1000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	signals := []*domain.Signal{
		{TimestampMs: 1000, Side: domain.SideBuy, Symbol: "BTC", ReferencePrice: 100, SizeFraction: 0.5},
		{TimestampMs: 2000, Side: domain.SideBuy, Symbol: "ETH", ReferencePrice: 50, SizeFraction: 0.5},
		{TimestampMs: 3000, Side: domain.SideSell, Symbol: "BTC", ReferencePrice: 110, SizeFraction: 1.0},
		{TimestampMs: 4000, Side: domain.SideSell, Symbol: "ETH", ReferencePrice: 55, SizeFraction: 1.0},
	}

	trades, err := eng.Run(signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("Run() trades = %d, want 2", len(trades))
	}
	if trades[0].Symbol != "BTC" || trades[1].Symbol != "ETH" {
		t.Errorf("trade symbols = %s, %s; want BTC, ETH (exit order)", trades[0].Symbol, trades[1].Symbol)
	}
}

func TestRun_OpenPositionExcluded(t *testing.T) {
	eng, err := New(crypto(0.001, 0), 1000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	signals := []*domain.Signal{
		{TimestampMs: 1000, Side: domain.SideBuy, Symbol: "BTC", ReferencePrice: 100, SizeFraction: 0.5},
	}

	trades, err := eng.Run(signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("Run() trades = %d, want 0 (position still open)", len(trades))
	}
}

func TestRun_OutOfOrderRejected(t *testing.T) {
	eng, err := New(crypto(0.001, 0), 1000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	signals := []*domain.Signal{
		{TimestampMs: 2000, Side: domain.SideBuy, Symbol: "BTC", ReferencePrice: 100, SizeFraction: 0.5},
		{TimestampMs: 1000, Side: domain.SideBuy, Symbol: "BTC", ReferencePrice: 100, SizeFraction: 0.5},
	}

	if _, err := eng.Run(signals); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("Run() error = %v, want ErrOutOfOrder", err)
	}
}

func TestRun_InvalidSignalRejected(t *testing.T) {
	tests := []struct {
		name   string
		signal *domain.Signal
	}{
		{
			name:   "zero price",
			signal: &domain.Signal{TimestampMs: 1000, Side: domain.SideBuy, Symbol: "BTC", ReferencePrice: 0, SizeFraction: 0.5},
		},
		{
			name:   "size fraction above one",
			signal: &domain.Signal{TimestampMs: 1000, Side: domain.SideBuy, Symbol: "BTC", ReferencePrice: 100, SizeFraction: 1.5},
		},
		{
			name:   "unknown side",
			signal: &domain.Signal{TimestampMs: 1000, Side: "HOLD", Symbol: "BTC", ReferencePrice: 100, SizeFraction: 0.5},
		},
		{
			name:   "empty symbol",
			signal: &domain.Signal{TimestampMs: 1000, Side: domain.SideBuy, Symbol: "", ReferencePrice: 100, SizeFraction: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := New(crypto(0.001, 0), 1000)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if _, err := eng.Run([]*domain.Signal{tt.signal}); !errors.Is(err, ErrInvalidSignal) {
				t.Errorf("Run() error = %v, want ErrInvalidSignal", err)
			}
		})
	}
}

func TestRun_ProportionalSlippage(t *testing.T) {
	eng, err := New(crypto(0, 0.001), 1000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	signals := []*domain.Signal{
		{TimestampMs: 1000, Side: domain.SideBuy, Symbol: "BTC", ReferencePrice: 100, SizeFraction: 1.0},
		{TimestampMs: 2000, Side: domain.SideSell, Symbol: "BTC", ReferencePrice: 100, SizeFraction: 1.0},
	}

	trades, err := eng.Run(signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	tr := trades[0]

	// BUY slips up to 100.1, SELL slips down to 99.9. Both costs are
	// positive and the net result is worse than gross by their sum.
	if !approxEqual(tr.AvgEntryPrice, 100.1, 1e-9) {
		t.Errorf("AvgEntryPrice = %v, want 100.1", tr.AvgEntryPrice)
	}
	if !approxEqual(tr.ExitPrice, 99.9, 1e-9) {
		t.Errorf("ExitPrice = %v, want 99.9", tr.ExitPrice)
	}
	if tr.EntrySlippage <= 0 || tr.ExitSlippage <= 0 {
		t.Errorf("slippage costs = %v, %v; want both positive", tr.EntrySlippage, tr.ExitSlippage)
	}
	if !approxEqual(tr.NetPnL, tr.GrossPnL-tr.TotalSlippage, 1e-9) {
		t.Errorf("NetPnL = %v, want gross %v minus slippage %v", tr.NetPnL, tr.GrossPnL, tr.TotalSlippage)
	}
}

func TestRun_FixedFrictionTicks(t *testing.T) {
	// ES-style market: 0.25 tick, 1 tick adverse slippage, flat fee per unit.
	friction := domain.FixedFriction{
		TickSize:        0.25,
		SlippageTicks:   1,
		FeeFixedPerUnit: 2.25,
		TickValue:       12.5,
	}
	eng, err := New(friction, 100000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	signals := []*domain.Signal{
		{TimestampMs: 1000, Side: domain.SideBuy, Symbol: "ES", ReferencePrice: 5000, SizeFraction: 0.1},
		{TimestampMs: 2000, Side: domain.SideSell, Symbol: "ES", ReferencePrice: 5100, SizeFraction: 1.0},
	}

	trades, err := eng.Run(signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	tr := trades[0]

	// Executed buy price is one tick up: 5000.25. The per-unit fee is taken
	// out of the allocation before the quantity is sized, so the average
	// entry (total_cost / total_quantity) lands above 5000.25 by the fee
	// drag, not on the executed price itself.
	execPrice := 5000.25
	alloc := 100000 * 0.1
	entryFee := 2.25 * (alloc / execPrice)
	wantQty := (alloc - entryFee) / execPrice
	if !approxEqual(tr.Quantity(), wantQty, 1e-9) {
		t.Errorf("Quantity() = %v, want %v", tr.Quantity(), wantQty)
	}
	if !approxEqual(tr.AvgEntryPrice, alloc/wantQty, 1e-9) {
		t.Errorf("AvgEntryPrice = %v, want %v", tr.AvgEntryPrice, alloc/wantQty)
	}
	if !approxEqual(tr.ExitPrice, 5099.75, 1e-9) {
		t.Errorf("ExitPrice = %v, want 5099.75 (one tick down)", tr.ExitPrice)
	}

	qty := tr.Quantity()
	if !approxEqual(tr.ExitFee, 2.25*qty, 1e-9) {
		t.Errorf("ExitFee = %v, want %v (flat per unit)", tr.ExitFee, 2.25*qty)
	}
}

func TestRun_Deterministic(t *testing.T) {
	signals := []*domain.Signal{
		{TimestampMs: 1000, Side: domain.SideBuy, Symbol: "BTC", ReferencePrice: 100.37, SizeFraction: 0.5},
		{TimestampMs: 2000, Side: domain.SideBuy, Symbol: "BTC", ReferencePrice: 98.12, SizeFraction: 0.5},
		{TimestampMs: 3000, Side: domain.SideSell, Symbol: "BTC", ReferencePrice: 104.55, SizeFraction: 1.0},
	}

	run := func() []*domain.ClosedTrade {
		eng, err := New(crypto(0.001, 0.0005), 2500)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		trades, err := eng.Run(signals)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return trades
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("ledger lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if *first[i] != *second[i] {
			t.Errorf("trade %d differs between identical runs:\n%+v\n%+v", i, *first[i], *second[i])
		}
	}
}
