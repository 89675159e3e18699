package querycache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-dashboard-backend/pkg/invalidation"
)

func TestFetchCachesUntilInvalidated(t *testing.T) {
	t.Parallel()
	c := New()
	key := ListKey("posts", "org-1")
	calls := 0
	fetch := func(context.Context) ([]string, error) {
		calls++
		return []string{"p1"}, nil
	}

	v, err := Fetch(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, v)
	_, err = Fetch(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	c.Invalidate(key)
	assert.True(t, c.IsStale(key))
	_, err = Fetch(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.False(t, c.IsStale(key))
}

func TestFetchDoesNotCacheFailures(t *testing.T) {
	t.Parallel()
	c := New()
	key := ListKey("tasks", "org-1")
	boom := errors.New("boom")

	_, err := Fetch(context.Background(), c, key, func(context.Context) ([]string, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Has(key))
}

func TestKeysAreOrganizationScoped(t *testing.T) {
	t.Parallel()
	c := New()
	Set(c, ListKey("tasks", "org-1"), []string{"a"})
	Set(c, ListKey("tasks", "org-2"), []string{"b"})

	c.InvalidateEntity("tasks", "org-1")
	assert.True(t, c.IsStale(ListKey("tasks", "org-1")))
	assert.False(t, c.IsStale(ListKey("tasks", "org-2")))
}

func TestApplyEvent(t *testing.T) {
	t.Parallel()
	c := New()
	list := ListKey("tasks", "org-1")
	byStatus := FilterKey("tasks", "org-1", "status", "DONE")
	t1 := DetailKey("tasks", "org-1", "t1")
	t2 := DetailKey("tasks", "org-1", "t2")
	for _, k := range []Key{list, byStatus, t1, t2} {
		Set(c, k, "cached")
	}

	c.Apply(invalidation.Event{OrgID: "org-1", Keys: []invalidation.Key{
		{Entity: "tasks"},
		{Entity: "tasks", ID: "t1"},
	}})

	assert.True(t, c.IsStale(list))
	assert.True(t, c.IsStale(byStatus))
	assert.True(t, c.IsStale(t1))
	assert.False(t, c.IsStale(t2))
	assert.Equal(t, "t1", t1.ID())
}

func TestListenAppliesBusEvents(t *testing.T) {
	t.Parallel()
	c := New()
	bus := invalidation.NewLocalBus()
	key := ListKey("columns", "org-1")
	Set(c, key, []string{"c1"})

	cancel, err := c.Listen(bus, "org-1")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, bus.Publish(context.Background(), invalidation.Event{
		OrgID: "org-1",
		Keys:  []invalidation.Key{{Entity: "columns"}},
	}))
	assert.True(t, c.IsStale(key))
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()
	c := New()
	present := ListKey("tasks", "org-1")
	absent := DetailKey("tasks", "org-1", "new")
	Set(c, present, []string{"a"})

	snap := c.Snapshot(present, absent)
	Update(c, present, func(v []string) []string { return append(append([]string(nil), v...), "b") })
	Set(c, absent, "optimistic")

	c.Restore(snap)
	v, ok := Get[[]string](c, present)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, v)
	assert.False(t, c.Has(absent))
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()
	c := New()
	key := ListKey("posts", "org-1")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = Fetch(context.Background(), c, key, func(context.Context) (int, error) { return i, nil })
			c.Invalidate(key)
			Update(c, key, func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()
	assert.True(t, c.Has(key))
}

func TestInvalidateFilteredSparesPlainList(t *testing.T) {
	t.Parallel()
	c := New()
	list := ListKey("tasks", "org-1")
	byStatus := FilterKey("tasks", "org-1", "status", "TODO")
	detail := DetailKey("tasks", "org-1", "t1")
	for _, k := range []Key{list, byStatus, detail} {
		Set(c, k, "v")
	}

	c.InvalidateFiltered("tasks", "org-1")
	assert.False(t, c.IsStale(list))
	assert.True(t, c.IsStale(byStatus))
	assert.False(t, c.IsStale(detail))
}

func TestListenCallbackSeesAppliedEvent(t *testing.T) {
	t.Parallel()
	c := New()
	bus := invalidation.NewLocalBus()
	key := ListKey("tasks", "org-1")
	Set(c, key, []string{"t1"})

	var staleWhenNotified bool
	cancel, err := c.Listen(bus, "org-1", func(invalidation.Event) {
		staleWhenNotified = c.IsStale(key)
	})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, bus.Publish(context.Background(), invalidation.Event{
		OrgID: "org-1",
		Keys:  []invalidation.Key{{Entity: "tasks"}},
	}))
	assert.True(t, staleWhenNotified)
}
