// Package cache provides a caching decorator for domain.Geocoder with
// in-memory and Redis backends.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
	"github.com/couchcryptid/locationiq-geocoder/internal/observability"
)

// Store holds address collections by key.
type Store interface {
	Get(ctx context.Context, key string) (domain.AddressCollection, bool, error)
	Set(ctx context.Context, key string, addrs domain.AddressCollection) error
}

// CachedGeocoder wraps a Geocoder with a Store. Store failures are logged
// and the lookup falls through to the wrapped geocoder.
type CachedGeocoder struct {
	inner   domain.Geocoder
	store   Store
	metrics *observability.Metrics
	logger  *slog.Logger
}

var _ domain.Geocoder = (*CachedGeocoder)(nil)

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, store Store, metrics *observability.Metrics, logger *slog.Logger) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// Name returns the wrapped provider's name.
func (c *CachedGeocoder) Name() string { return c.inner.Name() }

func (c *CachedGeocoder) Geocode(ctx context.Context, q domain.GeocodeQuery) (domain.AddressCollection, error) {
	return c.lookup(ctx, domain.LookupGeocode, geocodeKey(q), func() (domain.AddressCollection, error) {
		return c.inner.Geocode(ctx, q)
	})
}

func (c *CachedGeocoder) Reverse(ctx context.Context, q domain.ReverseQuery) (domain.AddressCollection, error) {
	return c.lookup(ctx, domain.LookupReverse, reverseKey(q), func() (domain.AddressCollection, error) {
		return c.inner.Reverse(ctx, q)
	})
}

func (c *CachedGeocoder) lookup(ctx context.Context, method, key string, fetch func() (domain.AddressCollection, error)) (domain.AddressCollection, error) {
	addrs, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("geocode cache read failed", "method", method, "error", err)
	}
	if ok {
		c.observe(method, "hit")
		return addrs, nil
	}
	c.observe(method, "miss")

	addrs, err = fetch()
	if err != nil {
		return addrs, err
	}
	// Only cache non-empty results so "not found" answers can be retried.
	if !addrs.IsEmpty() {
		if err := c.store.Set(ctx, key, addrs); err != nil {
			c.logger.Warn("geocode cache write failed", "method", method, "error", err)
		}
	}
	return addrs, nil
}

func (c *CachedGeocoder) observe(method, result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.GeocodeCache.WithLabelValues(method, result).Inc()
}

func geocodeKey(q domain.GeocodeQuery) string {
	return fmt.Sprintf("geocode:%s|%d|%s", strings.ToLower(q.Text), q.Limit, q.Locale)
}

func reverseKey(q domain.ReverseQuery) string {
	return fmt.Sprintf("reverse:%.6f,%.6f|%d|%s",
		q.Coordinates.Latitude, q.Coordinates.Longitude, q.ZoomOrDefault(), q.Locale)
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (domain.AddressCollection, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, string, domain.AddressCollection) error { return nil }
