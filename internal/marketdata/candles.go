// Package marketdata loads candle series and signal sequences from files.
// It is a collaborator surface for the CLIs; the core pipeline never reads
// files itself.
package marketdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"backtest-lab/internal/domain"
)

// Loader errors.
var (
	ErrEmptyFile     = errors.New("file contains no data rows")
	ErrMissingColumn = errors.New("required column missing from header")
)

// Candle CSV columns. The OHLCV names are case-sensitive per the upstream
// data contract; the timestamp column accepts either spelling seen in
// exported data.
var candleColumns = []string{"Open", "High", "Low", "Close", "Volume"}

// LoadCandlesCSV reads an OHLCV series from a CSV file. The header must
// contain a timestamp column ("timestamp" or "Time", Unix milliseconds) and
// the columns Open, High, Low, Close, Volume. Column order is free. Rows
// are returned in file order; callers that need time ordering sort or rely
// on the exporter.
func LoadCandlesCSV(path, symbol string) ([]*domain.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening candle file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
		}
		return nil, fmt.Errorf("reading candle header: %w", err)
	}

	idx := indexColumns(header)
	tsCol, ok := idx["timestamp"]
	if !ok {
		tsCol, ok = idx["Time"]
	}
	if !ok {
		return nil, fmt.Errorf("%w: timestamp", ErrMissingColumn)
	}
	for _, name := range candleColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var candles []*domain.Candle
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading candle row %d: %w", line, err)
		}

		ts, err := strconv.ParseInt(record[tsCol], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing timestamp: %w", line, err)
		}
		c := &domain.Candle{Symbol: symbol, TimestampMs: ts}
		for name, dst := range map[string]*float64{
			"Open":   &c.Open,
			"High":   &c.High,
			"Low":    &c.Low,
			"Close":  &c.Close,
			"Volume": &c.Volume,
		} {
			v, err := strconv.ParseFloat(record[idx[name]], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: parsing %s: %w", line, name, err)
			}
			*dst = v
		}
		candles = append(candles, c)
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	return candles, nil
}

func indexColumns(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}
