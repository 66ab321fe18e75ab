// Package cache is a small in-memory TTL store for probe and analysis results.
package cache

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL maps string keys to values that expire a fixed duration after Set.
type TTL[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	entries map[string]entry[V]
}

// New returns a cache whose entries live for ttl.
func New[V any](ttl time.Duration) *TTL[V] {
	return NewWithClock[V](ttl, realClock{})
}

// NewWithClock is New with an injected clock.
func NewWithClock[V any](ttl time.Duration, clock Clock) *TTL[V] {
	return &TTL[V]{ttl: ttl, clock: clock, entries: make(map[string]entry[V])}
}

// Get returns the live value for key. Expired entries are removed.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if e.expiresAt.Before(c.clock.Now()) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.clock.Now().Add(c.ttl)}
}

// Purge drops every expired entry and returns how many were removed.
func (c *TTL[V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	n := 0
	for k, e := range c.entries {
		if e.expiresAt.Before(now) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len counts stored entries, expired ones included until read or purged.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
