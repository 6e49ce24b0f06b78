package geo

import (
	"context"
	"fmt"
	"time"

	"farmverify/internal/cache"
)

const addressKeyPrefix = "geo:address:"

// CachedResolver memoizes real addresses in Redis. Sentinel results are not
// cached so a transient outage does not stick.
type CachedResolver struct {
	next  Resolver
	cache *cache.Client
	ttl   time.Duration
}

var _ Resolver = (*CachedResolver)(nil)

// NewCachedResolver wraps next with a cache. A nil cache disables caching.
func NewCachedResolver(next Resolver, c *cache.Client, ttl time.Duration) *CachedResolver {
	return &CachedResolver{next: next, cache: c, ttl: ttl}
}

// ReverseGeocode returns the cached address or resolves and stores it.
func (r *CachedResolver) ReverseGeocode(ctx context.Context, lat, lon float64) string {
	key := addressKey(lat, lon)
	if data, _ := r.cache.Get(ctx, key); data != nil {
		return string(data)
	}

	address := r.next.ReverseGeocode(ctx, lat, lon)
	if !IsSentinel(address) {
		_ = r.cache.Set(ctx, key, []byte(address), r.ttl)
	}
	return address
}

// Five decimals is roughly one metre.
func addressKey(lat, lon float64) string {
	return fmt.Sprintf("%s%.5f,%.5f", addressKeyPrefix, lat, lon)
}
