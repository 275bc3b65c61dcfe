package storage

import (
	"context"
	"time"

	"finboard/internal/cache"
)

// CachedBackend fronts another backend with an LRU cache. Reads are served
// from the cache when possible; writes and deletes go to the inner backend
// first and only then update the cache.
type CachedBackend struct {
	inner Backend
	cache *cache.LRUCache[[]byte]
}

// NewCachedBackend wraps inner with a cache of size entries that expire
// after ttl.
func NewCachedBackend(inner Backend, size int, ttl time.Duration) *CachedBackend {
	return &CachedBackend{
		inner: inner,
		cache: cache.NewLRUCache[[]byte](size, ttl),
	}
}

// Cache exposes the underlying cache so a janitor can sweep it.
func (c *CachedBackend) Cache() *cache.LRUCache[[]byte] {
	return c.cache
}

func (c *CachedBackend) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok := c.cache.Get(key); ok {
		return append([]byte(nil), v...), true, nil
	}
	v, ok, err := c.inner.Read(ctx, key)
	if err != nil || !ok {
		return v, ok, err
	}
	c.cache.Set(key, append([]byte(nil), v...))
	return v, true, nil
}

func (c *CachedBackend) Write(ctx context.Context, key string, value []byte) error {
	if err := c.inner.Write(ctx, key, value); err != nil {
		c.cache.Delete(key)
		return err
	}
	c.cache.Set(key, append([]byte(nil), value...))
	return nil
}

func (c *CachedBackend) Delete(ctx context.Context, key string) error {
	c.cache.Delete(key)
	return c.inner.Delete(ctx, key)
}

// Reload drops every cached entry so the next reads see writes made by
// other processes.
func (c *CachedBackend) Reload(context.Context) {
	c.cache.Clear()
}

func (c *CachedBackend) Close() error {
	return c.inner.Close()
}
