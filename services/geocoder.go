package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"listing-map/models"
	"listing-map/storage"
	"listing-map/utils"
)

// countrySuffixRegexp strips the country from display addresses.
var countrySuffixRegexp = regexp.MustCompile(`(, )?United States`)

// Lookup resolves one address. A nil result with a nil error means no match.
type Lookup interface {
	Lookup(ctx context.Context, address string) (*models.GeocodeResult, error)
}

// GeocoderOptions tunes a GeocodeService.
type GeocoderOptions struct {
	// Cache is optional; nil disables memoization.
	Cache       storage.GeocodeCache
	MaxAge      time.Duration
	RouteTarget RouteTarget
	Concurrency int
	RateLimitMs int
	// Now is overridable for tests.
	Now func() time.Time
}

// GeocodeService resolves listing addresses, consulting the cache first.
type GeocodeService struct {
	lookup   Lookup
	opts     GeocoderOptions
	logger   *utils.Logger
	throttle *utils.Throttle

	networkCalls atomic.Int64
}

// NewGeocodeService wires a lookup client with optional caching.
func NewGeocodeService(lookup Lookup, opts GeocoderOptions, logger *utils.Logger) *GeocodeService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 30 * 24 * time.Hour
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &GeocodeService{
		lookup:   lookup,
		opts:     opts,
		logger:   logger,
		throttle: utils.NewThrottle(opts.RateLimitMs),
	}
}

// NetworkCalls reports how many lookups reached the geocoding endpoint.
func (g *GeocodeService) NetworkCalls() int64 {
	return g.networkCalls.Load()
}

// Geocode resolves one address. Cache failures degrade to an uncached lookup.
func (g *GeocodeService) Geocode(ctx context.Context, address string) (*models.GeocodeResult, error) {
	key := CacheKey(address)
	if key == "" {
		return nil, nil
	}

	if g.opts.Cache != nil {
		entry, err := g.opts.Cache.Get(ctx, key)
		switch {
		case err == nil && g.opts.Now().Sub(entry.Timestamp) < g.opts.MaxAge:
			g.logger.Debug("[geocoder] Cache hit for %q", key)
			res := entry.Result
			return &res, nil
		case err == nil:
			g.logger.Debug("[geocoder] Cache entry for %q is stale", key)
		case !errors.Is(err, storage.ErrCacheMiss):
			g.logger.Warn("[geocoder] Cache read failed for %q: %v", key, err)
		}
	}

	g.throttle.Wait()
	g.networkCalls.Add(1)
	res, err := g.lookup.Lookup(ctx, address)
	if err != nil || res == nil {
		return res, err
	}

	if g.opts.Cache != nil {
		entry := models.GeocodeCacheEntry{Address: key, Result: *res, Timestamp: g.opts.Now()}
		if err := g.opts.Cache.Set(ctx, entry); err != nil {
			g.logger.Warn("[geocoder] Cache write failed for %q: %v", key, err)
		}
	}
	return res, nil
}

// Invalidate drops the cached result for address.
func (g *GeocodeService) Invalidate(ctx context.Context, address string) error {
	if g.opts.Cache == nil {
		return nil
	}
	return g.opts.Cache.Delete(ctx, CacheKey(address))
}

// GeocodeAll enriches every listing that has an address. It returns only once
// every lookup has finished; failed or empty lookups leave the item unplotted.
// If ctx ends first the results are incomplete and ctx's error is returned.
func (g *GeocodeService) GeocodeAll(ctx context.Context, items []*models.ListingItem) error {
	pool := utils.NewWorkerPool(g.opts.Concurrency, 0)
	var resolved atomic.Int64

	for _, item := range items {
		if item.Address == "" {
			continue
		}
		it := item
		pool.Submit(func() {
			res, err := g.Geocode(ctx, it.Address)
			if err != nil {
				g.logger.Warn("[geocoder] %s (%q): %v", it.ID, it.Address, err)
				return
			}
			if res == nil {
				g.logger.Debug("[geocoder] No match for %q", it.Address)
				return
			}
			applyGeocode(it, res, g.opts.RouteTarget)
			resolved.Add(1)
		})
	}
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("geocoder: %w", err)
	}
	g.logger.Info("[geocoder] Resolved %d of %d items", resolved.Load(), len(items))
	return nil
}

func applyGeocode(item *models.ListingItem, res *models.GeocodeResult, target RouteTarget) {
	coords := res.Coordinates
	item.Coordinates = &coords
	item.ParsedAddress = countrySuffixRegexp.ReplaceAllStringFunc(res.FullAddress, firstOnly())
	item.NhoodCity = res.NhoodCity
	item.DriveLinkURL = DriveLink(coords, target)
}

// firstOnly returns a replacer that removes the first match and keeps the rest.
func firstOnly() func(string) string {
	done := false
	return func(m string) string {
		if done {
			return m
		}
		done = true
		return ""
	}
}
