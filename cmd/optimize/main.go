package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"backtest-lab/internal/backtest"
	"backtest-lab/internal/domain"
	"backtest-lab/internal/friction"
	"backtest-lab/internal/marketdata"
	"backtest-lab/internal/observability"
	"backtest-lab/internal/optimizer"
)

func main() {
	// Inputs
	candlesPath := flag.String("candles", "", "OHLCV CSV file (required)")
	signalsPath := flag.String("signals", "", "Signal file, .csv or .json (required)")
	symbol := flag.String("symbol", "BTC", "Traded symbol")
	exchanges := flag.String("exchanges", "binance", "Comma-separated exchanges to sweep friction configs over")
	initialCapital := flag.Float64("initial-capital", 10000, "Starting account balance")
	fractions := flag.String("fractions", "0.1,0.25,0.5,1.0", "Comma-separated size fractions applied to BUY signals")

	// Execution
	workers := flag.Int("workers", 0, "Concurrent runs (0 = GOMAXPROCS)")
	metricsAddr := flag.String("metrics-addr", "", "Expose Prometheus /metrics on this address, e.g. :9090")

	// Output
	outputJSON := flag.Bool("json", false, "Output outcomes as JSON")

	flag.Parse()

	logger := log.New(os.Stderr, "[optimize] ", log.LstdFlags)

	if *candlesPath == "" {
		logger.Fatal("--candles is required")
	}
	if *signalsPath == "" {
		logger.Fatal("--signals is required")
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

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		go func() {
			logger.Printf("Serving metrics on %s/metrics", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Printf("metrics server: %v", err)
			}
		}()
	}

	// Load shared inputs once; every combination reuses them read-only.
	signals, err := loadSignals(*signalsPath)
	if err != nil {
		logger.Fatalf("load signals: %v", err)
	}
	candles, err := marketdata.LoadCandlesCSV(*candlesPath, *symbol)
	if err != nil {
		logger.Fatalf("load candles: %v", err)
	}

	sizeFractions, err := parseFractions(*fractions)
	if err != nil {
		logger.Fatalf("parse fractions: %v", err)
	}

	combos, err := buildCombinations(strings.Split(*exchanges, ","), *symbol, sizeFractions,
		*initialCapital, candles, signals)
	if err != nil {
		logger.Fatalf("build combinations: %v", err)
	}

	logger.Printf("Sweeping %d combinations over %d signals with %d workers",
		len(combos), len(signals), *workers)

	started := time.Now()
	outcomes := optimizer.New(*workers).Sweep(ctx, combos)
	elapsed := time.Since(started)

	failures := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failures++
		}
	}
	observability.RecordSweep(len(outcomes), failures)

	logger.Printf("Sweep finished in %v (%d failed)", elapsed, failures)

	if *outputJSON {
		printJSON(outcomes)
	} else {
		printTable(outcomes)
	}

	if best, ok := optimizer.Best(outcomes, func(r *backtest.Results) float64 {
		return r.Summary.NetProfit
	}); ok {
		fmt.Printf("\nBest by net profit: %s (%.4f)\n", best.Label, best.Results.Summary.NetProfit)
	} else {
		logger.Print("No combination completed successfully")
		os.Exit(1)
	}
}

func loadSignals(path string) ([]*domain.Signal, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return marketdata.LoadSignalsJSON(path)
	}
	return marketdata.LoadSignalsCSV(path)
}

func parseFractions(s string) ([]float64, error) {
	var fractions []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid fraction %q: %w", part, err)
		}
		if v <= 0 || v > 1 {
			return nil, fmt.Errorf("fraction %v outside (0, 1]", v)
		}
		fractions = append(fractions, v)
	}
	if len(fractions) == 0 {
		return nil, fmt.Errorf("no fractions given")
	}
	return fractions, nil
}

// buildCombinations crosses every exchange's friction config with every size
// fraction. Signals are copied per combination so the fraction override never
// leaks between runs.
func buildCombinations(
	exchanges []string,
	symbol string,
	fractions []float64,
	initialCapital float64,
	candles []*domain.Candle,
	signals []*domain.Signal,
) ([]optimizer.Combination, error) {
	var combos []optimizer.Combination

	for _, exchange := range exchanges {
		exchange = strings.TrimSpace(exchange)
		frictionModel, err := friction.Lookup(exchange, symbol)
		if err != nil {
			return nil, err
		}

		for _, fraction := range fractions {
			combos = append(combos, optimizer.Combination{
				Label: fmt.Sprintf("%s/%s f=%g", exchange, symbol, fraction),
				Config: backtest.Config{
					Friction:       frictionModel,
					InitialCapital: initialCapital,
					Candles:        candles,
					Signals:        overrideBuyFraction(signals, fraction),
				},
			})
		}
	}

	return combos, nil
}

func overrideBuyFraction(signals []*domain.Signal, fraction float64) []*domain.Signal {
	out := make([]*domain.Signal, len(signals))
	for i, sig := range signals {
		s := *sig
		if s.Side == domain.SideBuy {
			s.SizeFraction = fraction
		}
		out[i] = &s
	}
	return out
}

func printJSON(outcomes []optimizer.Outcome) {
	type row struct {
		Label     string   `json:"label"`
		Error     string   `json:"error,omitempty"`
		NetProfit *float64 `json:"net_profit,omitempty"`
		ROIPct    *float64 `json:"roi_pct,omitempty"`
		Sharpe    *float64 `json:"sharpe_ratio,omitempty"`
		Trades    *int     `json:"total_trades,omitempty"`
	}

	rows := make([]row, len(outcomes))
	for i, o := range outcomes {
		rows[i].Label = o.Label
		if o.Err != nil {
			rows[i].Error = o.Err.Error()
			continue
		}
		s := o.Results.Summary
		rows[i].NetProfit = &s.NetProfit
		rows[i].ROIPct = &s.ROIPct
		rows[i].Sharpe = &s.SharpeRatio
		rows[i].Trades = &s.TotalTrades
	}

	output, _ := json.MarshalIndent(rows, "", "  ")
	fmt.Println(string(output))
}

func printTable(outcomes []optimizer.Outcome) {
	fmt.Println()
	fmt.Printf("%-28s %12s %10s %10s %8s\n", "combination", "net_profit", "roi_pct", "sharpe", "trades")
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Printf("%-28s FAILED: %v\n", o.Label, o.Err)
			continue
		}
		s := o.Results.Summary
		fmt.Printf("%-28s %12.4f %10.4f %10.4f %8d\n",
			o.Label, s.NetProfit, s.ROIPct, s.SharpeRatio, s.TotalTrades)
	}
}
