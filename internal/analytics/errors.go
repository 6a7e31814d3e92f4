package analytics

import "errors"

// Sentinel errors for the engine's failure taxonomy. InsufficientRange is
// deliberately NOT an error: a window comparison that cannot be formed is a
// valid empty result with a reason flag, so sibling aggregates keep working.
var (
	// ErrInvalidRange is returned when a filter's start date is after its end date.
	ErrInvalidRange = errors.New("invalid date range: start_date is after end_date")

	// ErrUpstreamUnavailable wraps record store failures for a single
	// sub-computation. Other sub-computations in the same request proceed.
	ErrUpstreamUnavailable = errors.New("record store unavailable")
)
