// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package cache provides a small generic LRU cache with a soft limit,
// used to memoize compiled shader bytecode.
package cache

import "sync"

// Cache is a generic thread-safe cache with approximate LRU eviction.
// When the entry count exceeds the soft limit, the oldest quarter of the
// entries is evicted.
//
// Cache must not be copied after creation.
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*entry[V]
	softLimit int
	tick      int64
}

type entry[V any] struct {
	value V
	atime int64
}

// New creates a cache with the given soft limit. Zero means unlimited.
func New[K comparable, V any](softLimit int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*entry[V]),
		softLimit: softLimit,
	}
}

// Get retrieves a value, refreshing its access time.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.tick++
	e.atime = c.tick
	return e.value, true
}

// Set stores a value, evicting old entries past the soft limit.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	c.entries[key] = &entry[V]{value: value, atime: c.tick}
	c.evict()
}

// GetOrCreate returns the cached value, calling create under the lock on a
// miss so concurrent callers never build the same value twice.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.tick++
		e.atime = c.tick
		return e.value, nil
	}

	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.tick++
	c.entries[key] = &entry[V]{value: value, atime: c.tick}
	c.evict()
	return value, nil
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*entry[V])
}

// evict removes the oldest quarter of entries when over the soft limit.
// Caller holds the lock.
func (c *Cache[K, V]) evict() {
	if c.softLimit <= 0 || len(c.entries) <= c.softLimit {
		return
	}
	target := len(c.entries) - c.softLimit + c.softLimit/4
	for i := 0; i < target; i++ {
		var oldestKey K
		var oldestTime int64 = -1
		for k, e := range c.entries {
			if oldestTime < 0 || e.atime < oldestTime {
				oldestKey = k
				oldestTime = e.atime
			}
		}
		if oldestTime < 0 {
			return
		}
		delete(c.entries, oldestKey)
	}
}
