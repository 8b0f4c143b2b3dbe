package metrics

import (
	"errors"
	"testing"

	"backtest-lab/internal/domain"
	"backtest-lab/internal/tradestats"
)

func testCandles() []*domain.Candle {
	return []*domain.Candle{
		{TimestampMs: 1000, Open: 100, High: 102, Low: 99, Close: 101},
		{TimestampMs: 2000, Open: 101, High: 106, Low: 100, Close: 105},
		{TimestampMs: 3000, Open: 105, High: 112, Low: 104, Close: 110},
	}
}

func testTrade() *domain.ClosedTrade {
	return &domain.ClosedTrade{
		TradeID:       "t1",
		Symbol:        "BTC",
		EntryTimeMs:   1000,
		ExitTimeMs:    3000,
		NumEntries:    1,
		AvgEntryPrice: 100,
		ExitPrice:     110,
		TotalCost:     1000,
		ExitValue:     1100,
		TotalFees:     2,
		GrossPnL:      100,
		NetPnL:        98,
		CapitalAfter:  1098,
		PnLPct:        9.8,
	}
}

func TestCompute_EnrichesAndSummarizes(t *testing.T) {
	coord := NewCoordinator(1000, testCandles())

	result, err := coord.Compute([]*domain.ClosedTrade{testTrade()})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if len(result.Trades) != 1 {
		t.Fatalf("Compute() trades = %d, want 1", len(result.Trades))
	}
	if result.Trades[0].Metrics.DurationBars != 3 {
		t.Errorf("DurationBars = %d, want 3", result.Trades[0].Metrics.DurationBars)
	}
	if result.Summary.TotalTrades != 1 {
		t.Errorf("Summary.TotalTrades = %d, want 1", result.Summary.TotalTrades)
	}
	if result.Summary.NetProfit != 98 {
		t.Errorf("Summary.NetProfit = %v, want 98", result.Summary.NetProfit)
	}
}

func TestCompute_EmptyLedger(t *testing.T) {
	coord := NewCoordinator(1000, testCandles())

	result, err := coord.Compute(nil)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if result.Summary.TotalTrades != 0 {
		t.Errorf("Summary.TotalTrades = %d, want 0", result.Summary.TotalTrades)
	}
}

func TestCompute_CoverageGapFails(t *testing.T) {
	coord := NewCoordinator(1000, testCandles())

	trade := testTrade()
	trade.EntryTimeMs = 500000
	trade.ExitTimeMs = 600000

	if _, err := coord.Compute([]*domain.ClosedTrade{trade}); !errors.Is(err, tradestats.ErrNoCandleCoverage) {
		t.Fatalf("Compute() error = %v, want ErrNoCandleCoverage", err)
	}
}

func TestLedgerRow_MatchesColumns(t *testing.T) {
	row := LedgerRow(testTrade())
	if len(row) != len(LedgerColumns) {
		t.Fatalf("LedgerRow length = %d, columns = %d", len(row), len(LedgerColumns))
	}
	if row[0] != "t1" || row[1] != "BTC" {
		t.Errorf("row head = %v, %v; want t1, BTC", row[0], row[1])
	}
}

func TestEnrichedRow_MatchesColumns(t *testing.T) {
	enriched := &domain.EnrichedTrade{
		ClosedTrade: *testTrade(),
		Metrics:     domain.TradeMetrics{TradeID: "t1", DurationBars: 3},
	}
	row := EnrichedRow(enriched)
	if len(row) != len(EnrichedColumns) {
		t.Fatalf("EnrichedRow length = %d, columns = %d", len(row), len(EnrichedColumns))
	}
}

func TestSummaryFields_CoverSummaryMap(t *testing.T) {
	summary := &domain.PortfolioSummary{TotalTrades: 3, NetProfit: 80}

	fields := SummaryFields(summary)
	m := SummaryMap(summary)

	if len(fields) != len(m) {
		t.Fatalf("SummaryFields = %d entries, SummaryMap = %d; names must be unique", len(fields), len(m))
	}
	if m["total_trades"] != 3 {
		t.Errorf("total_trades = %v, want 3", m["total_trades"])
	}
	if m["net_profit"] != 80 {
		t.Errorf("net_profit = %v, want 80", m["net_profit"])
	}
}
