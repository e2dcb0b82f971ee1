package redis

import (
	"context"
	"time"
)

// SweepMarker claims per-date sweep markers in Redis so two workers
// running the nightly expiry never sweep the same day twice.
type SweepMarker struct {
	cache *Cache
}

// NewSweepMarker creates a Redis-backed sweep marker.
func NewSweepMarker(cache *Cache) *SweepMarker {
	return &SweepMarker{cache: cache}
}

// Claim tries to set the marker for the given date. Returns true when
// this caller set it first.
func (m *SweepMarker) Claim(ctx context.Context, date string, ttl time.Duration) (bool, error) {
	return m.cache.SetNX(ctx, SweepMarkerKey(date), time.Now().Format(time.RFC3339), ttl)
}
