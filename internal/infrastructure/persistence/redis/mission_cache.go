package redis

import (
	"context"
	"time"

	"github.com/seedling-app/seedling-backend/internal/domain/mission"
)

// MissionCache implements mission.Cache on top of the generic Cache.
// It is best-effort by contract: callers treat every error here as a miss
// and fall through to PostgreSQL.
type MissionCache struct {
	cache *Cache
}

// NewMissionCache creates a new MissionCache.
func NewMissionCache(cache *Cache) *MissionCache {
	return &MissionCache{cache: cache}
}

// Get returns a cached mission. Returns ErrCacheMiss when the key is absent.
func (c *MissionCache) Get(ctx context.Context, missionID string) (*mission.Mission, error) {
	var m mission.Mission
	if err := c.cache.Get(ctx, MissionKey(missionID), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Set stores a mission with a TTL.
func (c *MissionCache) Set(ctx context.Context, m *mission.Mission, ttl time.Duration) error {
	if m == nil {
		return nil
	}
	return c.cache.Set(ctx, MissionKey(m.ID), m, ttl)
}

// Invalidate removes a mission from the cache after a write.
func (c *MissionCache) Invalidate(ctx context.Context, missionID string) error {
	return c.cache.Delete(ctx, MissionKey(missionID))
}

// InvalidateRelation drops the cached mission list of a family relation.
func (c *MissionCache) InvalidateRelation(ctx context.Context, familyRelationID string) error {
	return c.cache.Delete(ctx, RelationMissionsKey(familyRelationID))
}
