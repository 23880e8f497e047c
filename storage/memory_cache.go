package storage

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"listing-map/models"
)

// MemoryCache keeps geocode entries in process memory. Entries never expire
// on their own; staleness is judged by the caller from the entry timestamp.
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{c: gocache.New(gocache.NoExpiration, 0)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*models.GeocodeCacheEntry, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	entry := v.(models.GeocodeCacheEntry)
	return &entry, nil
}

func (m *MemoryCache) Set(_ context.Context, entry models.GeocodeCacheEntry) error {
	m.c.Set(entry.Address, entry, gocache.NoExpiration)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Len returns the number of cached addresses.
func (m *MemoryCache) Len() int {
	return m.c.ItemCount()
}

func (m *MemoryCache) Close() error {
	m.c.Flush()
	return nil
}
