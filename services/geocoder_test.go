package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-map/models"
	"listing-map/storage"
)

func TestGeocodeCacheSkipsNetworkWithinMaxAge(t *testing.T) {
	lookup := &stubLookup{results: map[string]*models.GeocodeResult{"57 Lenox Ave, NYC": harlem()}}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	svc := NewGeocodeService(lookup, GeocoderOptions{
		Cache:  storage.NewMemoryCache(),
		MaxAge: 30 * 24 * time.Hour,
		Now:    func() time.Time { return now },
	}, newTestLogger())

	ctx := context.Background()
	first, err := svc.Geocode(ctx, "57 Lenox Ave, NYC")
	require.NoError(t, err)
	require.NotNil(t, first)

	// same address after normalization, inside the window
	now = now.Add(29 * 24 * time.Hour)
	second, err := svc.Geocode(ctx, "  57 lenox ave, nyc ")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), lookup.calls.Load())
	assert.Equal(t, int64(1), svc.NetworkCalls())

	// past the window the endpoint is hit again
	now = now.Add(2 * 24 * time.Hour)
	lookup.results["57 LENOX AVE, NYC"] = harlem()
	_, err = svc.Geocode(ctx, "57 LENOX AVE, NYC")
	require.NoError(t, err)
	assert.Equal(t, int64(2), lookup.calls.Load())
}

func TestGeocodeStaleEntryIsReplaced(t *testing.T) {
	cache := storage.NewMemoryCache()
	ctx := context.Background()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, cache.Set(ctx, models.GeocodeCacheEntry{
		Address: "57 lenox ave, nyc", Result: models.GeocodeResult{NhoodCity: "Old"}, Timestamp: old,
	}))

	now := old.Add(31 * 24 * time.Hour)
	lookup := &stubLookup{results: map[string]*models.GeocodeResult{"57 Lenox Ave, NYC": harlem()}}
	svc := NewGeocodeService(lookup, GeocoderOptions{Cache: cache, Now: func() time.Time { return now }}, newTestLogger())

	res, err := svc.Geocode(ctx, "57 Lenox Ave, NYC")
	require.NoError(t, err)
	assert.Equal(t, "Harlem, New York", res.NhoodCity)

	entry, err := cache.Get(ctx, "57 lenox ave, nyc")
	require.NoError(t, err)
	assert.Equal(t, "Harlem, New York", entry.Result.NhoodCity)
	assert.True(t, entry.Timestamp.Equal(now))
}

func TestGeocodeCacheFailureFallsBackToNetwork(t *testing.T) {
	lookup := &stubLookup{results: map[string]*models.GeocodeResult{"57 Lenox Ave, NYC": harlem()}}
	svc := NewGeocodeService(lookup, GeocoderOptions{Cache: failingCache{}}, newTestLogger())

	res, err := svc.Geocode(context.Background(), "57 Lenox Ave, NYC")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, int64(1), lookup.calls.Load())
}

func TestGeocodeMissIsNotCached(t *testing.T) {
	cache := storage.NewMemoryCache()
	lookup := &stubLookup{results: map[string]*models.GeocodeResult{}}
	svc := NewGeocodeService(lookup, GeocoderOptions{Cache: cache}, newTestLogger())

	res, err := svc.Geocode(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, cache.Len())
}

func TestGeocodeEmptyAddressSkipsLookup(t *testing.T) {
	lookup := &stubLookup{}
	svc := NewGeocodeService(lookup, GeocoderOptions{}, newTestLogger())

	res, err := svc.Geocode(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, lookup.calls.Load())
}

func TestGeocodeAllEnrichesAndWaits(t *testing.T) {
	lookup := &stubLookup{results: map[string]*models.GeocodeResult{"57 Lenox Ave, NYC": harlem()}}
	svc := NewGeocodeService(lookup, GeocoderOptions{Concurrency: 4, RouteTarget: RouteGoogle}, newTestLogger())

	items := []*models.ListingItem{
		{ID: "1", Address: "57 Lenox Ave, NYC"},
		{ID: "2", Address: ""},
		{ID: "3", Address: "Unknown Rd"},
	}
	require.NoError(t, svc.GeocodeAll(context.Background(), items))

	require.NotNil(t, items[0].Coordinates)
	assert.Equal(t, "57 Lenox Avenue, New York, New York 10026", items[0].ParsedAddress)
	assert.Equal(t, "Harlem, New York", items[0].NhoodCity)
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=40.8007,-73.9497", items[0].DriveLinkURL)
	assert.Nil(t, items[1].Coordinates)
	assert.Nil(t, items[2].Coordinates)
	assert.Equal(t, int64(2), lookup.calls.Load(), "empty address must not be looked up")
}

func TestGeocodeAllToleratesLookupErrors(t *testing.T) {
	lookup := &stubLookup{err: errors.New("rate limited")}
	svc := NewGeocodeService(lookup, GeocoderOptions{}, newTestLogger())

	items := []*models.ListingItem{{ID: "1", Address: "57 Lenox Ave, NYC"}}
	require.NoError(t, svc.GeocodeAll(context.Background(), items))
	assert.Nil(t, items[0].Coordinates)
}

func TestCountrySuffixStrippedOnce(t *testing.T) {
	item := &models.ListingItem{}
	res := harlem()
	res.FullAddress = "1 United States Ave, Springfield, United States"
	applyGeocode(item, res, RouteApple)

	assert.Equal(t, "1  Ave, Springfield, United States", item.ParsedAddress)
	assert.Equal(t, "http://maps.apple.com/?daddr=40.8007,-73.9497", item.DriveLinkURL)
}

func TestGeocodeAllCachedItemsAreNotThrottled(t *testing.T) {
	cache := storage.NewMemoryCache()
	ctx := context.Background()
	now := time.Now()
	items := make([]*models.ListingItem, 0, 5)
	for _, addr := range []string{"1 A St", "2 B St", "3 C St", "4 D St", "5 E St"} {
		require.NoError(t, cache.Set(ctx, models.GeocodeCacheEntry{Address: CacheKey(addr), Result: *harlem(), Timestamp: now}))
		items = append(items, &models.ListingItem{ID: addr, Address: addr})
	}

	lookup := &stubLookup{}
	svc := NewGeocodeService(lookup, GeocoderOptions{Cache: cache, RateLimitMs: 200, Concurrency: 1}, newTestLogger())

	start := time.Now()
	require.NoError(t, svc.GeocodeAll(ctx, items))
	assert.Less(t, time.Since(start), 200*time.Millisecond, "cache hits must not wait on the rate limit")
	assert.Zero(t, lookup.calls.Load())
	for _, it := range items {
		assert.NotNil(t, it.Coordinates, it.ID)
	}
}

func TestGeocodeAllThrottlesLookups(t *testing.T) {
	lookup := &stubLookup{results: map[string]*models.GeocodeResult{}}
	svc := NewGeocodeService(lookup, GeocoderOptions{RateLimitMs: 50, Concurrency: 4}, newTestLogger())

	items := []*models.ListingItem{{ID: "1", Address: "a"}, {ID: "2", Address: "b"}, {ID: "3", Address: "c"}}
	start := time.Now()
	require.NoError(t, svc.GeocodeAll(context.Background(), items))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, int64(3), lookup.calls.Load())
}

func TestGeocodeAllReportsCancellation(t *testing.T) {
	lookup := &stubLookup{results: map[string]*models.GeocodeResult{"57 Lenox Ave, NYC": harlem()}}
	svc := NewGeocodeService(lookup, GeocoderOptions{}, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []*models.ListingItem{{ID: "1", Address: "57 Lenox Ave, NYC"}}
	err := svc.GeocodeAll(ctx, items)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, items[0].Coordinates)
}
