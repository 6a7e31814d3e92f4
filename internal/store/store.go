// Package store provides read access to materialized grievance datasets.
// Each dataset is an immutable snapshot keyed by a source identifier; binding
// a request to one source guarantees the record set cannot change
// mid-computation.
package store

import (
	"context"

	"civic-insight/internal/record"
)

// RecordStore exposes filtered, snapshot-bound reads over grievance records.
type RecordStore interface {
	// Snapshot returns the full record set for a source. The returned slice
	// is owned by the caller; implementations must not hand out shared
	// mutable state.
	Snapshot(ctx context.Context, source string) ([]record.Grievance, error)

	// Sources lists the known dataset identifiers, sorted.
	Sources(ctx context.Context) ([]string, error)
}
