package querycache

import (
	"context"
	"sync"
)

// MutationState is the lifecycle phase of a mutation
type MutationState int

const (
	Idle MutationState = iota
	Pending
	Committed
	RolledBack
)

func (s MutationState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// MutationOptions describes how a mutation touches the cache
type MutationOptions[In, Out any] struct {
	// Affected lists the keys snapshotted before Optimistic runs
	Affected func(in In) []Key
	// Optimistic applies the expected result before the server answers
	Optimistic func(c *Cache, in In)
	// OnSuccess reconciles the cache with the committed result
	OnSuccess func(c *Cache, in In, out Out)
}

// Mutation runs a server call against the cache. Several runs may be in flight;
// there is no coalescing and no retry.
type Mutation[In, Out any] struct {
	cache *Cache
	call  func(ctx context.Context, in In) (Out, error)
	opts  MutationOptions[In, Out]

	mu       sync.Mutex
	state    MutationState
	inFlight int
	lastErr  error
}

// NewMutation binds call to the cache
func NewMutation[In, Out any](c *Cache, call func(ctx context.Context, in In) (Out, error), opts MutationOptions[In, Out]) *Mutation[In, Out] {
	return &Mutation[In, Out]{cache: c, call: call, opts: opts}
}

// Run snapshots, applies the optimistic update, calls the server, then either
// rolls the snapshot back (RolledBack) or reconciles (Committed). With
// overlapping runs a rollback only restores keys nobody wrote in the meantime.
func (m *Mutation[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	m.mu.Lock()
	m.inFlight++
	m.state = Pending
	m.mu.Unlock()

	var before, applied Snapshot
	optimistic := m.opts.Optimistic != nil
	if optimistic {
		var keys []Key
		if m.opts.Affected != nil {
			keys = m.opts.Affected(in)
		}
		before = m.cache.Snapshot(keys...)
		m.opts.Optimistic(m.cache, in)
		applied = m.cache.Snapshot(keys...)
	}

	out, err := m.call(ctx, in)
	if err != nil {
		if optimistic {
			m.cache.Rollback(before, applied)
		}
		m.finish(RolledBack, err)
		var zero Out
		return zero, err
	}

	if m.opts.OnSuccess != nil {
		m.opts.OnSuccess(m.cache, in, out)
	}
	m.finish(Committed, nil)
	return out, nil
}

func (m *Mutation[In, Out]) finish(state MutationState, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
	m.lastErr = err
	if m.inFlight == 0 {
		m.state = state
	}
}

// IsPending reports whether any run is in flight
func (m *Mutation[In, Out]) IsPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight > 0
}

// State returns the current phase; with overlapping runs it stays Pending
// until the last one settles.
func (m *Mutation[In, Out]) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the error of the most recently settled run
func (m *Mutation[In, Out]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}
