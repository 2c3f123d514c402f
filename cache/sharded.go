// Package cache provides a thread-safe sharded map for GPU object caching.
//
// Unlike a general-purpose LRU, entries are never evicted: cached GPU
// objects (pipelines, depth-stencil configurations) stay valid for the
// lifetime of the device that created them, and handing out an evicted
// pipeline would be a use-after-free. Callers enumerate entries with
// Range at shutdown to release the underlying resources.
package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// ShardCount is the number of shards for reduced lock contention.
// Must be a power of 2 for fast modulo via bitwise AND.
const ShardCount = 16

const shardMask = ShardCount - 1

// Hasher computes a hash for a key, used for shard selection.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// BytesHasher computes the FNV-1a hash of a byte-slice key.
func BytesHasher(b []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}

// Uint64Hasher returns the key itself as the hash (identity hash).
func Uint64Hasher(u uint64) uint64 {
	return u
}

// Sharded is a thread-safe, append-only sharded map.
//
// Features:
//   - 16 shards for reduced lock contention
//   - No eviction: entries live until Clear
//   - Atomic hit/miss statistics
//   - Zero allocations on cache hit
type Sharded[K comparable, V any] struct {
	shards [ShardCount]*shard[K, V]
	hasher Hasher[K]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// shard is a single shard of the map with its own lock.
type shard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// NewSharded creates an empty sharded map.
// The hasher selects the shard for each key; use StringHasher,
// BytesHasher, or Uint64Hasher for common key types, or supply a
// key-specific function.
func NewSharded[K comparable, V any](hasher Hasher[K]) *Sharded[K, V] {
	c := &Sharded[K, V]{hasher: hasher}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{entries: make(map[K]V)}
	}
	return c
}

func (c *Sharded[K, V]) getShard(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get retrieves a value by key.
// Returns (value, true) if present, (zero, false) otherwise.
func (c *Sharded[K, V]) Get(key K) (V, bool) {
	s := c.getShard(key)

	s.mu.RLock()
	value, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return value, true
}

// Set stores a value. An existing entry for the key is replaced.
//
// The value is stored as-is (not copied). Callers should not modify it
// after caching.
func (c *Sharded[K, V]) Set(key K, value V) {
	s := c.getShard(key)

	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
}

// GetOrCreate returns the cached value for key, creating it with create
// on first access. Concurrent callers for the same key observe a single
// create call.
//
// The create function runs with the shard lock held to prevent
// duplicate creation; creates for keys in other shards proceed in
// parallel.
func (c *Sharded[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.getShard(key)

	// Fast path: most frames hit fully warmed caches.
	s.mu.RLock()
	value, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return value
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check after acquiring the write lock.
	if value, ok := s.entries[key]; ok {
		c.hits.Add(1)
		return value
	}

	c.misses.Add(1)
	value = create()
	s.entries[key] = value
	return value
}

// GetOrCreateErr is GetOrCreate for fallible constructors.
// On error nothing is cached and the error is returned; a later call
// with the same key retries create.
func (c *Sharded[K, V]) GetOrCreateErr(key K, create func() (V, error)) (V, error) {
	s := c.getShard(key)

	s.mu.RLock()
	value, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return value, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.entries[key]; ok {
		c.hits.Add(1)
		return value, nil
	}

	c.misses.Add(1)
	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	s.entries[key] = value
	return value, nil
}

// Range calls f for every entry until f returns false.
// The shard lock is held during each call; f must not call back into
// the same Sharded.
func (c *Sharded[K, V]) Range(f func(key K, value V) bool) {
	for _, s := range c.shards {
		s.mu.RLock()
		for k, v := range s.entries {
			if !f(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Clear removes all entries. Statistics are preserved.
// The caller is responsible for releasing resources held by the removed
// values (see Range).
func (c *Sharded[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]V)
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (c *Sharded[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Stats returns current cache statistics.
// This operation is mostly lock-free (atomic counters).
func (c *Sharded[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:     c.Len(),
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
	}
}

// ResetStats resets the hit/miss counters to zero.
func (c *Sharded[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of cache hits.
	Hits uint64
	// Misses is the number of cache misses.
	Misses uint64
	// HitRate is the cache hit rate 0.0 to 1.0.
	HitRate float64
}
