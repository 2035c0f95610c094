// Package memory provides in-memory cache and source implementations for
// unit testing and ephemeral use.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	huddlestore "github.com/xraph/huddle/store"
)

// compile-time interface check.
var _ huddlestore.Local = (*Cache)(nil)

// Cache is an in-memory store.Local. Events are copied on the way in and on
// the way out, so callers never share state with the cache.
type Cache struct {
	mu     sync.RWMutex
	events map[string]*event.Event // keyed by ID string
	closed bool
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{events: make(map[string]*event.Event)}
}

// Migrate is a no-op for the in-memory cache.
func (c *Cache) Migrate(_ context.Context) error { return nil }

// Ping reports ErrStoreClosed after Close.
func (c *Cache) Ping(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return huddle.ErrStoreClosed
	}
	return nil
}

// Close marks the cache as closed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// GetCachedEvent returns a copy of the cached event.
func (c *Cache) GetCachedEvent(_ context.Context, evtID id.ID) (*event.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.events[evtID.String()]
	if !ok {
		return nil, huddle.ErrEventNotCached
	}
	return e.Clone(), nil
}

// ListCachedEvents returns copies of every cached event, oldest first.
func (c *Cache) ListCachedEvents(_ context.Context) ([]*event.Event, error) {
	c.mu.RLock()
	out := make([]*event.Event, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Clone())
	}
	c.mu.RUnlock()

	event.SortByDate(out)
	return out, nil
}

// UpsertEvent inserts or replaces one event.
func (c *Cache) UpsertEvent(_ context.Context, evt *event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[evt.ID.String()] = evt.Clone()
	return nil
}

// UpsertEvents inserts or replaces a batch under a single lock.
func (c *Cache) UpsertEvents(_ context.Context, evts []*event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range evts {
		c.events[e.ID.String()] = e.Clone()
	}
	return nil
}

// DeleteCachedEvent evicts an event.
func (c *Cache) DeleteCachedEvent(_ context.Context, evtID id.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.events, evtID.String())
	return nil
}

// Len returns the number of cached events.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}
