package auth

import (
	"testing"
	"time"
)

func keySet(keys ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		out[key] = struct{}{}
	}
	return out
}

func TestPermissionCacheHitAndExpiry(t *testing.T) {
	current := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	cache := newPermissionCache(30 * time.Second)
	cache.now = func() time.Time { return current }

	cache.Set("org-1", "user-1", keySet(PermLeaveRead))

	keys, ok := cache.Get("org-1", "user-1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if _, granted := keys[PermLeaveRead]; !granted {
		t.Fatal("expected cached key to be present")
	}

	current = current.Add(31 * time.Second)
	if _, ok := cache.Get("org-1", "user-1"); ok {
		t.Fatal("expected entry to expire after TTL")
	}
}

func TestPermissionCacheInvalidate(t *testing.T) {
	cache := newPermissionCache(time.Minute)
	cache.Set("org-1", "user-1", keySet(PermLeaveRead))
	cache.Invalidate("org-1", "user-1")

	if _, ok := cache.Get("org-1", "user-1"); ok {
		t.Fatal("expected invalidated entry to miss")
	}
}

func TestPermissionCacheInvalidateLeavesOthers(t *testing.T) {
	cache := newPermissionCache(time.Minute)
	cache.Set("org-1", "user-1", keySet(PermLeaveRead))
	cache.Set("org-1", "user-2", keySet(PermLeaveRead))

	cache.Invalidate("org-1", "user-1")

	if _, ok := cache.Get("org-1", "user-1"); ok {
		t.Fatal("expected invalidated entry to be dropped")
	}
	if _, ok := cache.Get("org-1", "user-2"); !ok {
		t.Fatal("expected the other user's entry to survive")
	}
}

func TestPermissionCacheIsolatesOrgs(t *testing.T) {
	cache := newPermissionCache(time.Minute)
	cache.Set("org-1", "user-1", keySet(PermOrgAdmin))

	if _, ok := cache.Get("org-2", "user-1"); ok {
		t.Fatal("expected no hit for a different org")
	}
}
