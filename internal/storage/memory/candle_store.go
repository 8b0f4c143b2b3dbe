package memory

import (
	"context"
	"sort"
	"sync"

	"backtest-lab/internal/domain"
	"backtest-lab/internal/storage"
)

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.Candle // keyed by symbol, sorted by timestamp ASC
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{
		data: make(map[string][]*domain.Candle),
	}
}

// InsertBulk adds multiple candles. Fails entire batch on duplicate (symbol, timestamp_ms).
func (s *CandleStore) InsertBulk(_ context.Context, candles []*domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		symbol      string
		timestampMs int64
	}

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[key]struct{}, len(candles))
	for _, c := range candles {
		if c == nil || c.Symbol == "" {
			return storage.ErrInvalidInput
		}

		k := key{c.Symbol, c.TimestampMs}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}

		for _, existing := range s.data[c.Symbol] {
			if existing.TimestampMs == c.TimestampMs {
				return storage.ErrDuplicateKey
			}
		}
	}

	// Second pass: insert all, keeping each series sorted
	touched := make(map[string]struct{})
	for _, c := range candles {
		copy := *c
		s.data[c.Symbol] = append(s.data[c.Symbol], &copy)
		touched[c.Symbol] = struct{}{}
	}
	for symbol := range touched {
		series := s.data[symbol]
		sort.Slice(series, func(i, j int) bool {
			return series[i].TimestampMs < series[j].TimestampMs
		})
	}

	return nil
}

// GetBySymbol retrieves all candles for a symbol, ordered by timestamp ASC.
func (s *CandleStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.data[symbol]
	result := make([]*domain.Candle, 0, len(series))
	for _, c := range series {
		copy := *c
		result = append(result, &copy)
	}
	return result, nil
}

// GetByTimeRange retrieves candles for a symbol within [start, end] (inclusive).
func (s *CandleStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Candle
	for _, c := range s.data[symbol] {
		if c.TimestampMs >= start && c.TimestampMs <= end {
			copy := *c
			result = append(result, &copy)
		}
	}
	return result, nil
}

var _ storage.CandleStore = (*CandleStore)(nil)
