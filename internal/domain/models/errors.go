package models

import "errors"

// Error taxonomy for the trading cycle. Every failure degrades the cycle to
// "no action"; none of these should ever crash a run.
var (
	// ErrDataUnavailable means the market-data source returned empty or
	// partial history, too short for a full rolling window.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrDegenerateStats means a rolling window produced an undefined
	// statistic (zero variance) and no feature row could be derived.
	ErrDegenerateStats = errors.New("degenerate rolling statistics")

	// ErrOrderRejected means the broker refused an order submission.
	ErrOrderRejected = errors.New("order rejected")

	// ErrPositionUnknown means the position query failed, so the true open
	// state is unknown and no new position may be opened.
	ErrPositionUnknown = errors.New("open position state unknown")

	// ErrInconsistentPosition means exactly one leg is reported open;
	// recovery is manual.
	ErrInconsistentPosition = errors.New("inconsistent pair position")
)
