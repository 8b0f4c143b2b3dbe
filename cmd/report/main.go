package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"backtest-lab/internal/observability"
	"backtest-lab/internal/reporting"
	pgstore "backtest-lab/internal/storage/postgres"
)

func main() {
	runID := flag.String("run-id", "", "Run ID to render (omit with --list)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (required)")
	format := flag.String("format", "markdown", "Output format: markdown, csv, summary-csv")
	outputPath := flag.String("output", "", "Write output to this file instead of stdout")
	list := flag.Bool("list", false, "List persisted runs and exit")

	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	tradeStore := pgstore.NewTradeStore(pool)
	summaryStore := pgstore.NewRunSummaryStore(pool)

	if *list {
		runs, err := summaryStore.List(ctx)
		if err != nil {
			logger.Fatalf("list runs: %v", err)
		}
		fmt.Printf("%-64s %-16s %-10s %-6s %8s\n", "run_id", "label", "exchange", "symbol", "trades")
		for _, r := range runs {
			fmt.Printf("%-64s %-16s %-10s %-6s %8d\n",
				r.RunID, r.Label, r.Exchange, r.Symbol, r.Summary.TotalTrades)
		}
		return
	}

	if *runID == "" {
		logger.Fatal("--run-id is required (or use --list)")
	}

	report, err := reporting.NewGenerator(tradeStore, summaryStore).Generate(ctx, *runID)
	if err != nil {
		logger.Fatalf("generate report: %v", err)
	}

	var rendered string
	switch *format {
	case "markdown":
		rendered = reporting.RenderMarkdown(report)
	case "csv":
		rendered = reporting.RenderEnrichedCSV(report.Trades)
	case "summary-csv":
		rendered = reporting.RenderSummaryCSV(report.Summary)
	default:
		logger.Fatalf("unknown format: %s (markdown, csv, summary-csv)", *format)
	}
	observability.RecordReport()

	if *outputPath != "" {
		if err := os.WriteFile(*outputPath, []byte(rendered), 0o644); err != nil {
			logger.Fatalf("write output: %v", err)
		}
		logger.Printf("Wrote %s report to %s", *format, *outputPath)
		return
	}
	fmt.Print(rendered)
}
