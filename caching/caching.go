// Package caching holds short-lived in-process counters on top of go-cache.
package caching

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache counts hits per key; a key's count expires ttl after its first hit.
type Cache struct {
	memoryCache *cache.Cache
	ttl         time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		memoryCache: cache.New(ttl, ttl),
		ttl:         ttl,
	}
}

// Hit increments the counter of key and returns the new count.
func (s *Cache) Hit(key string) int {
	if err := s.memoryCache.Add(key, 1, s.ttl); err == nil {
		return 1
	}
	n, err := s.memoryCache.IncrementInt(key, 1)
	if err != nil {
		// expired between Add and Increment
		s.memoryCache.Set(key, 1, s.ttl)
		return 1
	}
	return n
}

// Count returns the current counter of key.
func (s *Cache) Count(key string) int {
	if v, ok := s.memoryCache.Get(key); ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return 0
}

// Expires returns when the counter of key resets, or the zero time.
func (s *Cache) Expires(key string) time.Time {
	_, exp, ok := s.memoryCache.GetWithExpiration(key)
	if !ok {
		return time.Time{}
	}
	return exp
}

func (s *Cache) Forget(key string) {
	s.memoryCache.Delete(key)
}

func (s *Cache) Flush() {
	s.memoryCache.Flush()
}
