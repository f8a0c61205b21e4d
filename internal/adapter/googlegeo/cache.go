package googlegeo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/heatscape/uhi-analysis-service/internal/domain"
	"github.com/heatscape/uhi-analysis-service/internal/observability"
)

// Lookuper is the raw reverse-geocoding operation wrapped by CachedResolver.
type Lookuper interface {
	Lookup(ctx context.Context, lat, lon float64) (string, error)
}

// CachedResolver memoizes locality lookups keyed on coordinates rounded to
// three decimal places (~110 m), so nearby points collapse onto one lookup.
// Failed lookups are memoized as the Unknown sentinel: a coordinate that
// could not be resolved once is not retried for the cache lifetime. Lost
// updates between concurrent workers resolving the same key are tolerated;
// the cache is an optimization, not a ledger.
//
// It implements domain.LocalityResolver.
type CachedResolver struct {
	inner   Lookuper
	cache   *gocache.Cache
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedResolver creates the memoizing decorator. ttl 0 keeps entries for
// the process lifetime, matching the unbounded-growth tradeoff of the
// original cache; pass a positive ttl to bound it.
func NewCachedResolver(inner Lookuper, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *CachedResolver {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &CachedResolver{
		inner:   inner,
		cache:   gocache.New(ttl, 10*time.Minute),
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve returns the memoized locality name for the rounded coordinate,
// issuing at most one outbound lookup per rounded key.
func (r *CachedResolver) Resolve(ctx context.Context, lat, lon float64) string {
	key := cacheKey(lat, lon)
	if name, ok := r.cache.Get(key); ok {
		r.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return name.(string)
	}
	r.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	name, err := r.inner.Lookup(ctx, lat, lon)
	if err != nil {
		r.logger.Warn("reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		name = ""
	}
	if name == "" {
		name = domain.UnknownLocality
	}

	r.cache.SetDefault(key, name)
	return name
}

// cacheKey rounds to three decimals so points within ~110 m share an entry.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.3f,%.3f", lat, lon)
}
