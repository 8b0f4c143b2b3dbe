package memory

import (
	"context"
	"sort"
	"sync"

	"backtest-lab/internal/domain"
	"backtest-lab/internal/storage"
)

// tradeRow pairs a stored trade with the run that produced it.
type tradeRow struct {
	runID string
	trade domain.EnrichedTrade
}

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]tradeRow // keyed by trade_id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]tradeRow),
	}
}

// InsertBulk adds a run's trades atomically. Fails entire batch on any duplicate trade_id.
func (s *TradeStore) InsertBulk(_ context.Context, runID string, trades []*domain.EnrichedTrade) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(trades) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[t.TradeID] = struct{}{}
	}

	// Second pass: insert all
	for _, t := range trades {
		s.data[t.TradeID] = tradeRow{runID: runID, trade: *t}
	}

	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(_ context.Context, tradeID string) (*domain.EnrichedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, exists := s.data[tradeID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := row.trade
	return &copy, nil
}

// GetByRunID retrieves all trades of a run, ordered by entry time ASC, trade_id ASC.
func (s *TradeStore) GetByRunID(_ context.Context, runID string) ([]*domain.EnrichedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.EnrichedTrade
	for _, row := range s.data {
		if row.runID == runID {
			copy := row.trade
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].EntryTimeMs != result[j].EntryTimeMs {
			return result[i].EntryTimeMs < result[j].EntryTimeMs
		}
		return result[i].TradeID < result[j].TradeID
	})

	return result, nil
}

var _ storage.TradeStore = (*TradeStore)(nil)
