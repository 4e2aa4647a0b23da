// Package resultcache memoizes computed results by the exact bytes of the
// input they were computed from. Entries live for the life of the process.
package resultcache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ContentHash returns the hex SHA-256 of content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Key combines a content hash with the options that shaped the result,
// e.g. Key(hash, "overtime", "2024-03-01..").
func Key(hash string, parts ...string) string {
	return strings.Join(append([]string{hash}, parts...), "|")
}

// Cache is a content-addressed memo table. Concurrent callers asking for the
// same missing key share a single computation. Errors are never cached.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	group   singleflight.Group
}

// New returns an empty Cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]V)}
}

// Do returns the cached value for key, computing and storing it with fn on a
// miss. hit reports whether the value was already cached.
func (c *Cache[V]) Do(key string, fn func() (V, error)) (v V, hit bool, err error) {
	if v, ok := c.get(key); ok {
		return v, true, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.get(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = v
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return res.(V), false, nil
}

// Get returns the cached value for key, if any.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.get(key)
}

// Put replaces the cached value for key.
func (c *Cache[V]) Put(key string, v V) {
	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[V]) get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}
