// Package invalidation carries "these views are stale" notifications from the
// action layer to client caches, in process or over NATS.
package invalidation

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Entity names shared by events and cache keys
const (
	EntityPosts    = "posts"
	EntityProducts = "products"
	EntityTasks    = "tasks"
	EntityColumns  = "columns"
)

// Key names a group of cached views. An empty ID covers every collection view
// of the entity (lists and filtered lists); a non-empty ID covers that record's detail view.
type Key struct {
	Entity string `json:"entity"`
	ID     string `json:"id,omitempty"`
}

// Event announces that the given keys of one organization changed
type Event struct {
	OrgID string    `json:"org_id"`
	Keys  []Key     `json:"keys"`
	At    time.Time `json:"at"`
}

// Publisher sends invalidation events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Handler receives events for a subscribed organization
type Handler func(Event)

// Subscriber delivers events for one organization until the returned cancel func is called
type Subscriber interface {
	Subscribe(orgID string, handler Handler) (cancel func(), err error)
}

// Bus is a Publisher that can also be subscribed to
type Bus interface {
	Publisher
	Subscriber
	Close() error
}

// LocalBus delivers events synchronously to in-process subscribers
type LocalBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
}

// NewLocalBus creates an empty in-process bus
func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[string]map[int]Handler)}
}

// Publish calls every handler subscribed to the event's organization
func (b *LocalBus) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[event.OrgID]))
	for _, h := range b.subs[event.OrgID] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
	return nil
}

// Subscribe registers handler for orgID
func (b *LocalBus) Subscribe(orgID string, handler Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.subs[orgID] == nil {
		b.subs[orgID] = make(map[int]Handler)
	}
	b.subs[orgID][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[orgID], id)
			if len(b.subs[orgID]) == 0 {
				delete(b.subs, orgID)
			}
		})
	}, nil
}

// Close drops every subscription
func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string]map[int]Handler)
	return nil
}

// Multi fans an event out to several publishers, collecting every failure
type Multi []Publisher

// Publish sends event to all publishers
func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events
type Nop struct{}

// Publish does nothing
func (Nop) Publish(context.Context, Event) error { return nil }
