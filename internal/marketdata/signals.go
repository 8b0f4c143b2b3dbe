package marketdata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"backtest-lab/internal/domain"
)

// Signal CSV columns, in the order they are written by exporters.
var signalColumns = []string{"timestamp", "side", "symbol", "reference_price", "size_fraction"}

// signalRecord is the JSON wire form of a signal.
type signalRecord struct {
	Timestamp      int64   `json:"timestamp"`
	Side           string  `json:"side"`
	Symbol         string  `json:"symbol"`
	ReferencePrice float64 `json:"reference_price"`
	SizeFraction   float64 `json:"size_fraction"`
}

// LoadSignalsCSV reads a signal sequence from a CSV file with columns
// timestamp, side, symbol, reference_price, size_fraction. Each signal is
// validated; an invalid row fails the whole load naming the line.
func LoadSignalsCSV(path string) ([]*domain.Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening signal file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
		}
		return nil, fmt.Errorf("reading signal header: %w", err)
	}

	idx := indexColumns(header)
	for _, name := range signalColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var signals []*domain.Signal
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading signal row %d: %w", line, err)
		}

		ts, err := strconv.ParseInt(record[idx["timestamp"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing timestamp: %w", line, err)
		}
		price, err := strconv.ParseFloat(record[idx["reference_price"]], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing reference_price: %w", line, err)
		}
		fraction, err := strconv.ParseFloat(record[idx["size_fraction"]], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing size_fraction: %w", line, err)
		}

		sig := &domain.Signal{
			TimestampMs:    ts,
			Side:           domain.Side(record[idx["side"]]),
			Symbol:         record[idx["symbol"]],
			ReferencePrice: price,
			SizeFraction:   fraction,
		}
		if err := sig.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		signals = append(signals, sig)
	}

	if len(signals) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	return signals, nil
}

// LoadSignalsJSON reads a signal sequence from a JSON array file. Each
// element carries the same fields as the CSV form.
func LoadSignalsJSON(path string) ([]*domain.Signal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening signal file: %w", err)
	}

	var records []signalRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding signal file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	signals := make([]*domain.Signal, 0, len(records))
	for i, rec := range records {
		sig := &domain.Signal{
			TimestampMs:    rec.Timestamp,
			Side:           domain.Side(rec.Side),
			Symbol:         rec.Symbol,
			ReferencePrice: rec.ReferencePrice,
			SizeFraction:   rec.SizeFraction,
		}
		if err := sig.Validate(); err != nil {
			return nil, fmt.Errorf("signal %d: %w", i, err)
		}
		signals = append(signals, sig)
	}
	return signals, nil
}
