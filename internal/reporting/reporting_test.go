package reporting

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"backtest-lab/internal/domain"
	"backtest-lab/internal/metrics"
	"backtest-lab/internal/storage"
	"backtest-lab/internal/storage/memory"
)

func sampleTrade(tradeID string, entryMs int64, netPnl float64) *domain.EnrichedTrade {
	return &domain.EnrichedTrade{
		ClosedTrade: domain.ClosedTrade{
			TradeID:       tradeID,
			Symbol:        "BTC",
			EntryTimeMs:   entryMs,
			ExitTimeMs:    entryMs + 60000,
			NumEntries:    1,
			AvgEntryPrice: 100,
			ExitPrice:     110,
			TotalCost:     1000,
			ExitValue:     1000 + netPnl,
			GrossPnL:      netPnl,
			NetPnL:        netPnl,
			CapitalAfter:  1000 + netPnl,
			PnLPct:        netPnl / 10,
		},
		Metrics: domain.TradeMetrics{
			TradeID:      tradeID,
			DurationBars: 3,
			MFE:          netPnl + 10,
		},
	}
}

func sampleSummary() *domain.PortfolioSummary {
	return &domain.PortfolioSummary{
		GrossProfit:       100,
		NetProfit:         95,
		ROIPct:            9.5,
		TotalTrades:       1,
		PercentProfitable: 100,
		ProfitFactor:      math.NaN(),
		TotalFees:         5,
	}
}

func TestRenderLedgerCSV(t *testing.T) {
	trade := sampleTrade("t1", 1000, 100)
	out := RenderLedgerCSV([]*domain.ClosedTrade{&trade.ClosedTrade})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0] != strings.Join(metrics.LedgerColumns, ",") {
		t.Errorf("header = %q", lines[0])
	}
	cells := strings.Split(lines[1], ",")
	if len(cells) != len(metrics.LedgerColumns) {
		t.Fatalf("cells = %d, want %d", len(cells), len(metrics.LedgerColumns))
	}
	if cells[0] != "t1" || cells[1] != "BTC" || cells[2] != "1000" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestRenderEnrichedCSV(t *testing.T) {
	out := RenderEnrichedCSV([]*domain.EnrichedTrade{sampleTrade("t1", 1000, 100)})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != strings.Join(metrics.EnrichedColumns, ",") {
		t.Errorf("header = %q", lines[0])
	}
	cells := strings.Split(lines[1], ",")
	if len(cells) != len(metrics.EnrichedColumns) {
		t.Fatalf("cells = %d, want %d", len(cells), len(metrics.EnrichedColumns))
	}
}

func TestRenderSummaryCSV_NaNCell(t *testing.T) {
	out := RenderSummaryCSV(sampleSummary())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	header := strings.Split(lines[0], ",")
	values := strings.Split(lines[1], ",")
	if len(header) != len(values) {
		t.Fatalf("header %d cells, values %d", len(header), len(values))
	}
	if header[0] != "gross_profit" || values[0] != "100.000000" {
		t.Errorf("first cell = %s=%s", header[0], values[0])
	}
	for i, name := range header {
		if name == "profit_factor" {
			if values[i] != "NaN" {
				t.Errorf("profit_factor = %q, want NaN", values[i])
			}
			return
		}
	}
	t.Fatal("profit_factor column missing")
}

func TestRenderMarkdown_Sections(t *testing.T) {
	r := &Report{
		GeneratedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		RunID:          "run-1",
		Label:          "baseline",
		Exchange:       "binance",
		Symbol:         "BTC",
		InitialCapital: 1000,
		Trades:         []*domain.EnrichedTrade{sampleTrade("t1", 1000, 95)},
		Summary:        sampleSummary(),
	}

	out := RenderMarkdown(r)
	for _, want := range []string{
		"# Backtest Report: baseline",
		"## General",
		"## Profit & Loss Distribution",
		"## Drawdown",
		"## Performance Ratios",
		"## Time Statistics",
		"## Operational Costs",
		"## Trades",
		"binance/BTC",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_NoTrades(t *testing.T) {
	r := &Report{
		GeneratedAt: time.Now(),
		Summary:     sampleSummary(),
	}
	if !strings.Contains(RenderMarkdown(r), "No closed trades.") {
		t.Error("empty ledger note missing")
	}
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	tradeStore := memory.NewTradeStore()
	summaryStore := memory.NewRunSummaryStore()

	run := &domain.RunSummary{
		RunID:          "run-1",
		Label:          "baseline",
		Exchange:       "binance",
		Symbol:         "BTC",
		InitialCapital: 1000,
		CreatedAtMs:    1704067200000,
		Summary:        *sampleSummary(),
	}
	if err := summaryStore.Insert(ctx, run); err != nil {
		t.Fatalf("seeding summary: %v", err)
	}
	if err := tradeStore.InsertBulk(ctx, "run-1", []*domain.EnrichedTrade{
		sampleTrade("t1", 1000, 95),
	}); err != nil {
		t.Fatalf("seeding trades: %v", err)
	}

	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator(tradeStore, summaryStore).WithClock(func() time.Time { return fixed })

	report, err := gen.Generate(ctx, "run-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.GeneratedAt != fixed {
		t.Errorf("GeneratedAt = %v, want %v", report.GeneratedAt, fixed)
	}
	if report.Label != "baseline" || report.RunID != "run-1" {
		t.Errorf("report metadata = %+v", report)
	}
	if len(report.Trades) != 1 || report.Trades[0].TradeID != "t1" {
		t.Errorf("trades = %+v", report.Trades)
	}
	if report.Summary.NetProfit != 95 {
		t.Errorf("summary net profit = %v", report.Summary.NetProfit)
	}
}

func TestGenerator_UnknownRun(t *testing.T) {
	gen := NewGenerator(memory.NewTradeStore(), memory.NewRunSummaryStore())

	_, err := gen.Generate(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
