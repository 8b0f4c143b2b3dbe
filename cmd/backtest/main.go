package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"backtest-lab/internal/backtest"
	"backtest-lab/internal/domain"
	"backtest-lab/internal/friction"
	"backtest-lab/internal/idhash"
	"backtest-lab/internal/marketdata"
	"backtest-lab/internal/metrics"
	"backtest-lab/internal/observability"
	"backtest-lab/internal/reporting"
	chstore "backtest-lab/internal/storage/clickhouse"
	"backtest-lab/internal/storage/migrations"
	pgstore "backtest-lab/internal/storage/postgres"
)

func main() {
	// Inputs
	candlesPath := flag.String("candles", "", "OHLCV CSV file (required unless --clickhouse-dsn)")
	signalsPath := flag.String("signals", "", "Signal file, .csv or .json (required)")
	symbol := flag.String("symbol", "BTC", "Traded symbol")
	exchange := flag.String("exchange", "binance", "Exchange for friction config: binance, kucoin, cme")
	initialCapital := flag.Float64("initial-capital", 10000, "Starting account balance")
	label := flag.String("label", "backtest", "Run label used in reports and persistence")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (trades, run summaries)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (candle series)")
	persistResult := flag.Bool("persist", false, "Persist enriched trades and run summary to PostgreSQL")

	// Output
	outputJSON := flag.Bool("json", false, "Output results as JSON")
	outputDir := flag.String("output-dir", "", "Write enriched ledger and summary CSVs to this directory")

	flag.Parse()

	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	if *signalsPath == "" {
		logger.Fatal("--signals is required")
	}
	if *candlesPath == "" && *clickhouseDSN == "" {
		logger.Fatal("--candles or --clickhouse-dsn is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Friction preset for the market
	frictionModel, err := friction.Lookup(*exchange, *symbol)
	if err != nil {
		logger.Fatalf("friction config: %v (exchanges: %s)", err, strings.Join(friction.Exchanges(), ", "))
	}

	// Load inputs
	signals, err := loadSignals(*signalsPath)
	if err != nil {
		logger.Fatalf("load signals: %v", err)
	}

	candles, err := loadCandles(ctx, *candlesPath, *clickhouseDSN, *symbol)
	if err != nil {
		logger.Fatalf("load candles: %v", err)
	}

	logger.Printf("Running backtest: label=%s market=%s/%s signals=%d candles=%d capital=%.2f",
		*label, *exchange, *symbol, len(signals), len(candles), *initialCapital)

	started := time.Now()
	results, err := backtest.Run(backtest.Config{
		Friction:       frictionModel,
		InitialCapital: *initialCapital,
		Candles:        candles,
		Signals:        signals,
	})
	if err != nil {
		observability.RecordRun("failed", time.Since(started).Seconds())
		logger.Fatalf("backtest failed: %v", err)
	}
	observability.RecordRun("ok", time.Since(started).Seconds())
	observability.RecordExecution(len(signals), len(results.Trades))

	runID := idhash.ComputeRunID(*label, *exchange, *symbol, *initialCapital, len(signals))

	if *persistResult {
		if err := persist(ctx, *postgresDSN, runID, *label, *exchange, *symbol, *initialCapital, results); err != nil {
			logger.Fatalf("persist results: %v", err)
		}
		logger.Printf("Persisted run %s (%d trades)", runID, len(results.Trades))
	}

	if *outputDir != "" {
		if err := writeCSVs(*outputDir, results); err != nil {
			logger.Fatalf("write output files: %v", err)
		}
		logger.Printf("Wrote CSV results to %s", *outputDir)
	}

	if *outputJSON {
		output, _ := json.MarshalIndent(map[string]any{
			"run_id":  runID,
			"trades":  results.Trades,
			"summary": metrics.SummaryMap(results.Summary),
		}, "", "  ")
		fmt.Println(string(output))
	} else {
		printSummary(runID, results)
	}
}

// loadSignals picks the loader from the file extension.
func loadSignals(path string) ([]*domain.Signal, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return marketdata.LoadSignalsJSON(path)
	}
	return marketdata.LoadSignalsCSV(path)
}

// loadCandles reads the series from a CSV file or, when a DSN is given,
// from the ClickHouse candle store.
func loadCandles(ctx context.Context, path, clickhouseDSN, symbol string) ([]*domain.Candle, error) {
	if path != "" {
		return marketdata.LoadCandlesCSV(path, symbol)
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	defer conn.Close()

	return chstore.NewCandleStore(conn).GetBySymbol(ctx, symbol)
}

// persist stores the enriched ledger and the run summary in PostgreSQL.
func persist(
	ctx context.Context,
	dsn, runID, label, exchange, symbol string,
	initialCapital float64,
	results *backtest.Results,
) error {
	if dsn == "" {
		return fmt.Errorf("--postgres-dsn is required with --persist")
	}

	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if err := pgstore.NewTradeStore(pool).InsertBulk(ctx, runID, results.Trades); err != nil {
		return fmt.Errorf("insert trades: %w", err)
	}

	run := &domain.RunSummary{
		RunID:          runID,
		Label:          label,
		Exchange:       exchange,
		Symbol:         symbol,
		InitialCapital: initialCapital,
		CreatedAtMs:    time.Now().UnixMilli(),
		Summary:        *results.Summary,
	}
	if err := pgstore.NewRunSummaryStore(pool).Insert(ctx, run); err != nil {
		return fmt.Errorf("insert run summary: %w", err)
	}
	return nil
}

// writeCSVs exports the enriched ledger and the one-row summary.
func writeCSVs(dir string, results *backtest.Results) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	enriched := reporting.RenderEnrichedCSV(results.Trades)
	if err := os.WriteFile(filepath.Join(dir, "trade_metrics.csv"), []byte(enriched), 0o644); err != nil {
		return err
	}

	summary := reporting.RenderSummaryCSV(results.Summary)
	return os.WriteFile(filepath.Join(dir, "portfolio_summary.csv"), []byte(summary), 0o644)
}

// printSummary outputs a human-readable result grouped like the report.
func printSummary(runID string, results *backtest.Results) {
	s := results.Summary

	fmt.Println()
	fmt.Println("=== Backtest Result ===")
	fmt.Printf("Run ID:              %s\n", runID)
	fmt.Printf("Closed Trades:       %d\n", s.TotalTrades)
	fmt.Println()

	fmt.Println("General:")
	fmt.Printf("  Gross Profit:      %.4f\n", s.GrossProfit)
	fmt.Printf("  Net Profit:        %.4f\n", s.NetProfit)
	fmt.Printf("  ROI:               %.4f%%\n", s.ROIPct)
	fmt.Printf("  Profitable:        %.2f%%\n", s.PercentProfitable)
	fmt.Printf("  Profit Factor:     %.4f\n", s.ProfitFactor)
	fmt.Printf("  Expectancy:        %.4f\n", s.Expectancy)
	fmt.Println()

	fmt.Println("Drawdown:")
	fmt.Printf("  Max Drawdown:      %.4f (%.4f%%)\n", s.MaxDrawdown, s.MaxDrawdownPct)
	fmt.Printf("  Duration:          %d trades\n", s.DrawdownDuration)
	fmt.Println()

	fmt.Println("Ratios:")
	fmt.Printf("  Sharpe:            %.4f\n", s.SharpeRatio)
	fmt.Printf("  Sortino:           %.4f\n", s.SortinoRatio)
	fmt.Printf("  Recovery Factor:   %.4f\n", s.RecoveryFactor)
	fmt.Println()

	fmt.Println("Costs:")
	fmt.Printf("  Total Fees:        %.4f\n", s.TotalFees)
	fmt.Printf("  Total Slippage:    %.4f\n", s.TotalSlippage)
	fmt.Printf("  Costs vs Gross:    %.2f%%\n", s.CostsPctOfGrossProfit)
}
