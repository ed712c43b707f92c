// Package cache holds the session cache of normalized case records.
//
// Reads within the ttl of the last load are served from the cache; writes invalidate it.
// A stale view is acceptable for display, never for updates: the update path always re-reads the store.
package cache

import (
	"context"
	"time"

	"expedientes/internal/model"
)

// Loader produces a fresh set of records, typically by reading the backing store.
type Loader func(ctx context.Context) ([]model.CaseRecord, error)

// Cache is the session cache contract.
type Cache interface {
	// GetOrLoad returns the cached records if they were loaded less than ttl ago,
	// otherwise calls load and caches its result. Loader errors are returned and not cached.
	// A non-positive ttl disables caching.
	GetOrLoad(ctx context.Context, ttl time.Duration, load Loader) ([]model.CaseRecord, error)

	// Invalidate drops the cached records so the next read goes to the store.
	Invalidate(ctx context.Context) error
}

func clone(records []model.CaseRecord) []model.CaseRecord {
	if records == nil {
		return nil
	}
	out := make([]model.CaseRecord, len(records))
	copy(out, records)
	return out
}
