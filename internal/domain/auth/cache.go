package auth

import (
	"sync"
	"time"
)

// permissionCache is a read-mostly cache of resolved permission key sets,
// keyed by org+user. Role mutations invalidate explicitly; the TTL is a
// backstop against out-of-band role edits.
type permissionCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	keys    map[string]struct{}
	expires time.Time
}

func newPermissionCache(ttl time.Duration) *permissionCache {
	return &permissionCache{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]cacheEntry{},
	}
}

func cacheKey(orgID, userID string) string {
	return orgID + "|" + userID
}

func (c *permissionCache) Get(orgID, userID string) (map[string]struct{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(orgID, userID)]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.keys, true
}

func (c *permissionCache) Set(orgID, userID string, keys map[string]struct{}) {
	c.mu.Lock()
	c.entries[cacheKey(orgID, userID)] = cacheEntry{keys: keys, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *permissionCache) Invalidate(orgID, userID string) {
	c.mu.Lock()
	delete(c.entries, cacheKey(orgID, userID))
	c.mu.Unlock()
}
