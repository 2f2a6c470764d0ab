// Package cache provides LRU caches with hit/miss accounting. Each
// Store tracks its own counters; Stats feed the health endpoint's hit
// rates and never influence eviction.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is used when a non-positive capacity is requested.
const DefaultSize = 1000

// Stats is a snapshot of one cache class's counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// HitRate returns the hit percentage in [0,100]. A class with zero
// lookups reports 0 rather than dividing by zero.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Store is an LRU cache that counts hits and misses. Safe for
// concurrent use; counters live for the process lifetime and reset
// only on restart.
type Store[K comparable, V any] struct {
	lru    *lru.Cache[K, V]
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Store with the given capacity.
func New[K comparable, V any](size int) *Store[K, V] {
	if size <= 0 {
		size = DefaultSize
	}
	// lru.New only fails on non-positive size, which is handled above
	c, _ := lru.New[K, V](size)
	return &Store[K, V]{lru: c}
}

// Get returns the cached value for key, recording a hit or miss.
func (s *Store[K, V]) Get(key K) (V, bool) {
	v, ok := s.lru.Get(key)
	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	return v, ok
}

// Peek returns the value without updating recency or counters.
func (s *Store[K, V]) Peek(key K) (V, bool) {
	return s.lru.Peek(key)
}

// Set stores a value, evicting the least recently used entry if full.
func (s *Store[K, V]) Set(key K, value V) {
	s.lru.Add(key, value)
}

// Remove deletes a key if present.
func (s *Store[K, V]) Remove(key K) {
	s.lru.Remove(key)
}

// Len returns the number of cached entries.
func (s *Store[K, V]) Len() int {
	return s.lru.Len()
}

// Purge drops all entries. Counters are kept.
func (s *Store[K, V]) Purge() {
	s.lru.Purge()
}

// Stats returns a snapshot of the counters.
func (s *Store[K, V]) Stats() Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}
}
