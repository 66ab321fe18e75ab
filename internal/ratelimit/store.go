// Package ratelimit keeps one token bucket per client key.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// Store hands out per-key token buckets that share one rate and burst.
// Buckets idle for longer than the TTL are evicted.
type Store struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// New creates a store allowing perSecond requests per key with the given
// burst. A non-positive ttl means ten minutes.
func New(perSecond float64, burst int, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if burst < 1 {
		burst = 1
	}
	return &Store{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// Start runs eviction every TTL until Stop is called.
func (s *Store) Start() {
	go func() {
		ticker := time.NewTicker(s.ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Evict()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop terminates the eviction goroutine. It is safe to call more than once.
func (s *Store) Stop() {
	s.once.Do(func() { close(s.stop) })
}

// Allow reports whether key may make a request now.
func (s *Store) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[key] = b
	}
	b.lastUsed = now
	return b.limiter.AllowN(now, 1)
}

// Evict removes buckets idle for longer than the TTL and returns how many
// were dropped.
func (s *Store) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	n := 0
	for key, b := range s.buckets {
		if b.lastUsed.Before(cutoff) {
			delete(s.buckets, key)
			n++
		}
	}
	return n
}

// Len returns the number of live buckets.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
