package storage

import (
	"context"
	"errors"

	"listing-map/models"
)

// ErrCacheMiss is returned by GeocodeCache.Get when no entry exists for a key.
var ErrCacheMiss = errors.New("geocode cache: miss")

// GeocodeCache is the interface any geocode memoization backend must satisfy.
// Keys are normalized addresses. Set replaces any existing entry.
type GeocodeCache interface {
	Get(ctx context.Context, key string) (*models.GeocodeCacheEntry, error)
	Set(ctx context.Context, entry models.GeocodeCacheEntry) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ListingWriter is the interface for exporting loaded listings.
type ListingWriter interface {
	Write(items []*models.ListingItem) error
	Close() error
}
