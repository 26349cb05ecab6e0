package permission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type cacheKey struct {
	userID    uuid.UUID
	projectID uuid.UUID
}

// Cache is an optional short-TTL layer over the fact source, keyed by
// (user, project). The engine itself never caches across authorization
// contexts; this wrapper trades a bounded staleness window (the TTL) for
// not re-resolving memberships on every request. Any mutation of
// memberships or grants must call one of the Invalidate methods, which
// bounds staleness to the TTL only for changes made outside this process.
type Cache struct {
	source FactSource
	lru    *expirable.LRU[cacheKey, *PermissionsData]
}

// NewCache creates a Cache holding at most size entries for at most ttl.
func NewCache(source FactSource, size int, ttl time.Duration) *Cache {
	return &Cache{
		source: source,
		lru:    expirable.NewLRU[cacheKey, *PermissionsData](size, nil, ttl),
	}
}

// Load returns the cached PermissionsData for the pair, computing and
// storing it on a miss. Cached values are shared between callers and must
// be treated as read-only.
func (c *Cache) Load(ctx context.Context, userID, projectID uuid.UUID) (*PermissionsData, error) {
	key := cacheKey{userID: userID, projectID: projectID}

	if data, ok := c.lru.Get(key); ok {
		return data, nil
	}

	data, err := NewChecker(c.source).Load(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	c.lru.Add(key, data)
	return data, nil
}

// Invalidate drops the entry for one (user, project) pair.
func (c *Cache) Invalidate(userID, projectID uuid.UUID) {
	c.lru.Remove(cacheKey{userID: userID, projectID: projectID})
}

// InvalidateProject drops every entry for a project. Called when the
// project's grants change or the project itself is mutated.
func (c *Cache) InvalidateProject(projectID uuid.UUID) {
	for _, key := range c.lru.Keys() {
		if key.projectID == projectID {
			c.lru.Remove(key)
		}
	}
}

// InvalidateUser drops every entry for a user. Called when the user's
// team memberships change.
func (c *Cache) InvalidateUser(userID uuid.UUID) {
	for _, key := range c.lru.Keys() {
		if key.userID == userID {
			c.lru.Remove(key)
		}
	}
}
