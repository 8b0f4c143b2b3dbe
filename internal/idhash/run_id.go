package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(label|exchange|symbol|initial_capital|signal_count)
// Returns hex-encoded hash (64 characters).
func ComputeRunID(
	label string,
	exchange string,
	symbol string,
	initialCapital float64,
	signalCount int,
) string {
	data := fmt.Sprintf("%s|%s|%s|%g|%d",
		label,
		exchange,
		symbol,
		initialCapital,
		signalCount,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
