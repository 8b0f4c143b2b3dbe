package engine

import "errors"

// Engine errors. All of them abort the run; a partial trade ledger from a
// failed run must not be treated as valid.
var (
	// ErrInvalidSignal is returned when a signal fails validation at the
	// point of processing.
	ErrInvalidSignal = errors.New("invalid signal")

	// ErrNoOpenPosition is returned for a SELL with no open position for
	// the signal's symbol.
	ErrNoOpenPosition = errors.New("sell with no open position")

	// ErrOutOfOrder is returned when a signal's timestamp precedes the
	// previous signal's. Callers must supply signals in non-decreasing
	// timestamp order; the engine never re-sorts.
	ErrOutOfOrder = errors.New("signals out of chronological order")

	// ErrNonPositiveCapital is returned when the engine is constructed
	// with a non-positive initial capital.
	ErrNonPositiveCapital = errors.New("initial capital must be positive")
)
