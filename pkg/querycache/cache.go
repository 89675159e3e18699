// Package querycache is the client-side query and mutation cache. Queries are
// keyed by (entity, organization, scope); mutations follow an explicit
// Pending -> Committed | RolledBack lifecycle with snapshot-based rollback.
package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"org-dashboard-backend/pkg/invalidation"
)

type entry struct {
	data      any
	stale     bool
	fetchedAt time.Time
	// version changes on every write to the entry
	version uint64
}

// Cache stores query results. It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*entry
	now     func() time.Time
	seq     uint64
}

// New creates an empty cache
func New() *Cache {
	return &Cache{entries: make(map[Key]*entry), now: time.Now}
}

// Fetch returns the cached value for key when it is fresh; otherwise it calls
// fetch once and stores the result. Failures are returned as-is and not cached.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := fresh[T](c, key); ok {
		return v, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	Set(c, key, v)
	return v, nil
}

// Refetch ignores any cached value
func Refetch[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	c.Invalidate(key)
	return Fetch(ctx, c, key, fetch)
}

func fresh[T any](c *Cache, key Key) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	e, ok := c.entries[key]
	if !ok || e.stale {
		return zero, false
	}
	v, ok := e.data.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Get returns the cached value for key, stale or not
func Get[T any](c *Cache, key Key) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	v, ok := e.data.(T)
	return v, ok
}

// Set stores v as the fresh value for key
func Set[T any](c *Cache, key Key, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{data: v, fetchedAt: c.now(), version: c.nextVersion()}
}

// Update rewrites the cached value for key with fn. It reports false when
// nothing of type T is cached. Staleness is preserved. fn must return a new
// value instead of mutating its argument, which a Snapshot may share.
func Update[T any](c *Cache, key Key, fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	v, ok := e.data.(T)
	if !ok {
		return false
	}
	e.data = fn(v)
	e.version = c.nextVersion()
	return true
}

// nextVersion must be called with mu held
func (c *Cache) nextVersion() uint64 {
	c.seq++
	return c.seq
}

// Invalidate marks keys stale so the next Fetch goes to the server
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		if e, ok := c.entries[k]; ok {
			e.stale = true
			e.version = c.nextVersion()
		}
	}
}

// InvalidateEntity marks every view of entity in orgID stale
func (c *Cache) InvalidateEntity(entity, orgID string) {
	c.invalidateWhere(func(k Key) bool {
		return k.Entity == entity && k.OrgID == orgID
	})
}

// InvalidateFiltered marks the filtered list views of entity stale and leaves the plain list alone
func (c *Cache) InvalidateFiltered(entity, orgID string) {
	c.invalidateWhere(func(k Key) bool {
		return k.Entity == entity && k.OrgID == orgID && k.Scope != "" && !k.IsDetail()
	})
}

// InvalidateCollections marks every list view (plain and filtered) of entity stale
func (c *Cache) InvalidateCollections(entity, orgID string) {
	c.invalidateWhere(func(k Key) bool {
		return k.Entity == entity && k.OrgID == orgID && !k.IsDetail()
	})
}

func (c *Cache) invalidateWhere(match func(Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if match(k) {
			e.stale = true
			e.version = c.nextVersion()
		}
	}
}

// IsStale reports whether key is cached but marked stale
func (c *Cache) IsStale(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return ok && e.stale
}

// Has reports whether anything is cached for key
func (c *Cache) Has(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Remove drops keys entirely
func (c *Cache) Remove(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
}

// Apply marks the views named by a server invalidation event stale
func (c *Cache) Apply(event invalidation.Event) {
	for _, k := range event.Keys {
		if k.ID == "" {
			c.InvalidateCollections(k.Entity, event.OrgID)
			continue
		}
		c.Invalidate(DetailKey(k.Entity, event.OrgID, k.ID))
	}
}

// Listen applies every event published for orgID until cancel is called.
// Each onApplied callback runs after the event has been applied, on the same
// delivery, so a refetch it triggers never sees the pre-event entries.
func (c *Cache) Listen(sub invalidation.Subscriber, orgID string, onApplied ...func(invalidation.Event)) (cancel func(), err error) {
	cancel, err = sub.Subscribe(orgID, func(event invalidation.Event) {
		c.Apply(event)
		for _, fn := range onApplied {
			fn(event)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("listen for invalidations: %w", err)
	}
	return cancel, nil
}

// Snapshot captures the exact state of keys for a later Restore
type Snapshot struct {
	entries map[Key]*entry
}

// Snapshot copies the current entries for keys; absent keys are remembered as absent
func (c *Cache) Snapshot(keys ...Key) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Snapshot{entries: make(map[Key]*entry, len(keys))}
	for _, k := range keys {
		if e, ok := c.entries[k]; ok {
			cp := *e
			s.entries[k] = &cp
		} else {
			s.entries[k] = nil
		}
	}
	return s
}

// Restore puts every snapshotted key back as it was
func (c *Cache) Restore(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range s.entries {
		c.restore(k, e)
	}
}

// Rollback undoes an optimistic write. Keys still in the state captured by
// applied are restored from before; keys written since then by anyone else
// (another optimistic run, an invalidation, a refetch) are marked stale
// instead, so a later read goes to the server.
func (c *Cache) Rollback(before, applied Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range before.entries {
		cur := c.entries[k]
		mark := applied.entries[k]
		if (cur == nil && mark == nil) || (cur != nil && mark != nil && cur.version == mark.version) {
			c.restore(k, e)
			continue
		}
		if cur != nil {
			cur.stale = true
			cur.version = c.nextVersion()
		}
	}
}

// restore must be called with mu held; the snapshot's version is kept
func (c *Cache) restore(k Key, e *entry) {
	if e == nil {
		delete(c.entries, k)
		return
	}
	cp := *e
	c.entries[k] = &cp
}
