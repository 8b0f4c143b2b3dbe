package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(symbol|entry_time|exit_time|ledger_index)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(
	symbol string,
	entryTimeMs int64,
	exitTimeMs int64,
	ledgerIndex int,
) string {
	data := fmt.Sprintf("%s|%d|%d|%d",
		symbol,
		entryTimeMs,
		exitTimeMs,
		ledgerIndex,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
