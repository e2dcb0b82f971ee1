package mission

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the persistence port for missions. Implementations
// live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the persistence operations for missions.
type Repository interface {
	// Create persists a new mission.
	// Returns ErrMissionAlreadyExists on a duplicate active mission.
	Create(ctx context.Context, m *Mission) error

	// GetByID returns a mission by ID.
	// Returns ErrMissionNotFound if the mission does not exist.
	GetByID(ctx context.Context, id string) (*Mission, error)

	// Update persists a changed mission using optimistic versioning:
	// the write only succeeds if the stored version still matches
	// m.Version, and bumps the version on success. A stale write returns
	// shared.ErrOptimisticLock and the caller decides whether to re-read
	// and retry.
	Update(ctx context.Context, m *Mission) error

	// FindOverdue returns all missions still in PhaseInProgress whose
	// period end date lies strictly before the given date. Used by the
	// nightly expiry sweep.
	FindOverdue(ctx context.Context, today time.Time) ([]*Mission, error)

	// FindByFamilyRelation returns the missions of a family relation,
	// optionally filtered by phase (empty phase means all).
	FindByFamilyRelation(ctx context.Context, familyRelationID string, phase Phase) ([]*Mission, error)

	// ExistsActive reports whether the family relation already has an
	// open mission in the given category. Used by the request workflow
	// to reject duplicates.
	ExistsActive(ctx context.Context, familyRelationID, categoryID string) (bool, error)

	// CountByStatus returns how many missions are in each status.
	// Used for operational reporting.
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

// Cache defines the optional read-through cache for missions.
// Implementations are expected to be best-effort: a cache error never
// fails the business operation.
type Cache interface {
	// Get returns a cached mission or ErrCacheMiss-style error.
	Get(ctx context.Context, missionID string) (*Mission, error)

	// Set stores a mission with a TTL.
	Set(ctx context.Context, m *Mission, ttl time.Duration) error

	// Invalidate removes a mission from the cache after a write.
	Invalidate(ctx context.Context, missionID string) error
}
