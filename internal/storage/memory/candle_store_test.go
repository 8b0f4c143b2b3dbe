package memory

import (
	"context"
	"errors"
	"testing"

	"backtest-lab/internal/domain"
	"backtest-lab/internal/storage"
)

func TestCandleStore_InsertBulkAndGet(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	candles := []*domain.Candle{
		{Symbol: "BTC", TimestampMs: 2000, Open: 101, High: 103, Low: 100, Close: 102, Volume: 5},
		{Symbol: "BTC", TimestampMs: 1000, Open: 100, High: 102, Low: 99, Close: 101, Volume: 4},
		{Symbol: "ETH", TimestampMs: 1000, Open: 50, High: 51, Low: 49, Close: 50, Volume: 9},
	}
	if err := store.InsertBulk(ctx, candles); err != nil {
		t.Fatalf("InsertBulk() error = %v", err)
	}

	got, err := store.GetBySymbol(ctx, "BTC")
	if err != nil {
		t.Fatalf("GetBySymbol() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetBySymbol() returned %d candles, want 2", len(got))
	}
	if got[0].TimestampMs != 1000 || got[1].TimestampMs != 2000 {
		t.Errorf("candles not sorted: [%d, %d]", got[0].TimestampMs, got[1].TimestampMs)
	}
}

func TestCandleStore_DuplicateKey(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	first := []*domain.Candle{{Symbol: "BTC", TimestampMs: 1000, Close: 100}}
	if err := store.InsertBulk(ctx, first); err != nil {
		t.Fatalf("InsertBulk() error = %v", err)
	}

	// Existing duplicate
	err := store.InsertBulk(ctx, []*domain.Candle{{Symbol: "BTC", TimestampMs: 1000, Close: 101}})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("existing duplicate: error = %v, want ErrDuplicateKey", err)
	}

	// Intra-batch duplicate
	err = store.InsertBulk(ctx, []*domain.Candle{
		{Symbol: "ETH", TimestampMs: 1000, Close: 50},
		{Symbol: "ETH", TimestampMs: 1000, Close: 51},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("intra-batch duplicate: error = %v, want ErrDuplicateKey", err)
	}

	// Failed batch must not be partially applied
	got, err := store.GetBySymbol(ctx, "ETH")
	if err != nil {
		t.Fatalf("GetBySymbol() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("failed batch left %d candles behind", len(got))
	}
}

func TestCandleStore_GetByTimeRange(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	candles := []*domain.Candle{
		{Symbol: "BTC", TimestampMs: 1000, Close: 100},
		{Symbol: "BTC", TimestampMs: 2000, Close: 101},
		{Symbol: "BTC", TimestampMs: 3000, Close: 102},
	}
	if err := store.InsertBulk(ctx, candles); err != nil {
		t.Fatalf("InsertBulk() error = %v", err)
	}

	got, err := store.GetByTimeRange(ctx, "BTC", 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("GetByTimeRange() returned %d candles, want 2 (inclusive bounds)", len(got))
	}
}

func TestCandleStore_CopyOnRead(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.Candle{{Symbol: "BTC", TimestampMs: 1000, Close: 100}}); err != nil {
		t.Fatalf("InsertBulk() error = %v", err)
	}

	got, _ := store.GetBySymbol(ctx, "BTC")
	got[0].Close = 999

	again, _ := store.GetBySymbol(ctx, "BTC")
	if again[0].Close != 100 {
		t.Errorf("mutating a returned candle leaked into the store: Close = %v", again[0].Close)
	}
}
