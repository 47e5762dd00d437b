// Package cache is a small concurrent in-memory cache whose eviction rule
// is supplied by the caller. Expired entries are dropped lazily on read.
package cache

import (
	"sync"
	"time"
)

// Policy decides whether an entry inserted at insertedAt is stale at now.
type Policy interface {
	Expired(insertedAt, now time.Time) bool
}

// TTL expires entries once they are older than the duration.
type TTL time.Duration

func (t TTL) Expired(insertedAt, now time.Time) bool {
	return now.Sub(insertedAt) >= time.Duration(t)
}

// NoExpiry keeps entries until they are replaced or deleted.
type NoExpiry struct{}

func (NoExpiry) Expired(time.Time, time.Time) bool { return false }

// Entry is a cached value with its insertion time.
type Entry[V any] struct {
	Value      V
	InsertedAt time.Time
}

type Cache[K comparable, V any] struct {
	mu     sync.RWMutex
	items  map[K]Entry[V]
	policy Policy
	now    func() time.Time
}

type Option[K comparable, V any] func(*Cache[K, V])

// WithClock overrides time.Now, for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) { c.now = now }
}

func New[K comparable, V any](policy Policy, opts ...Option[K, V]) *Cache[K, V] {
	if policy == nil {
		policy = NoExpiry{}
	}
	c := &Cache[K, V]{
		items:  make(map[K]Entry[V]),
		policy: policy,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the live value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if c.policy.Expired(e.InsertedAt, c.now()) {
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed it
		if cur, still := c.items[key]; still && cur.InsertedAt.Equal(e.InsertedAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.items[key] = Entry[V]{Value: value, InsertedAt: c.now()}
	c.mu.Unlock()
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	c.items = make(map[K]Entry[V])
	c.mu.Unlock()
}

// Len counts stored entries, including ones not yet evicted.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
