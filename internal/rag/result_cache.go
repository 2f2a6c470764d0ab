package rag

import (
	"github.com/shikshalabs/prashna/internal/cache"
)

// DefaultResultCacheSize bounds the per-process result cache.
const DefaultResultCacheSize = 500

// LRUResultCache memoizes assembled responses keyed by the optimized
// query and collection, so repeated questions skip the whole pipeline.
type LRUResultCache struct {
	store *cache.Store[string, *Response]
}

var _ ResultCache = (*LRUResultCache)(nil)

// NewLRUResultCache creates a result cache holding up to size entries.
func NewLRUResultCache(size int) *LRUResultCache {
	if size <= 0 {
		size = DefaultResultCacheSize
	}
	return &LRUResultCache{store: cache.New[string, *Response](size)}
}

// resultKey joins the pair with NUL, which the sanitizer strips from
// query text, so no (query, collection) pair can alias another.
func resultKey(optimizedQuery, collectionID string) string {
	return optimizedQuery + "\x00" + collectionID
}

// GetQueryResult returns the cached response for the key, if any.
func (c *LRUResultCache) GetQueryResult(optimizedQuery, collectionID string) (*Response, bool) {
	return c.store.Get(resultKey(optimizedQuery, collectionID))
}

// SetQueryResult stores resp under the key.
func (c *LRUResultCache) SetQueryResult(optimizedQuery, collectionID string, resp *Response) {
	c.store.Set(resultKey(optimizedQuery, collectionID), resp)
}

// Stats snapshots the cache counters.
func (c *LRUResultCache) Stats() cache.Stats {
	return c.store.Stats()
}
