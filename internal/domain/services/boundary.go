package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/singleflight"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces/gateways"
)

// ErrBoundaryUnavailable means the boundary could not be resolved: the
// geocoding service was down after retries or the city name resolved to
// nothing. Callers treat the geographic check as indeterminate, not failed.
var ErrBoundaryUnavailable = errors.New("boundary unavailable")

// BoundaryCacheConfig tunes the resolver cache. Clock defaults to time.Now
// and exists so tests can drive TTL expiry deterministically.
type BoundaryCacheConfig struct {
	TTL        time.Duration
	MaxEntries int
	Clock      func() time.Time
}

// BoundaryResolver resolves city names to reference boundary polygons with
// a TTL cache in front of the external gateway. Safe for concurrent use;
// at most one lookup is in flight per normalized city key.
type BoundaryResolver struct {
	gateway gateways.BoundaryGateway
	logger  interfaces.Logger
	ttl     time.Duration
	maxSize int
	clock   func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*entities.Boundary
}

// NewBoundaryResolver creates a resolver over the given gateway
func NewBoundaryResolver(gateway gateways.BoundaryGateway, logger interfaces.Logger, cfg BoundaryCacheConfig) *BoundaryResolver {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	maxSize := cfg.MaxEntries
	if maxSize <= 0 {
		maxSize = 64
	}
	return &BoundaryResolver{
		gateway: gateway,
		logger:  logger,
		ttl:     ttl,
		maxSize: maxSize,
		clock:   clock,
		cache:   make(map[string]*entities.Boundary),
	}
}

// Resolve returns the boundary for a city, from cache when fresh. Returns
// ErrBoundaryUnavailable (possibly wrapped) when the lookup cannot succeed.
func (r *BoundaryResolver) Resolve(ctx context.Context, city string) (*entities.Boundary, error) {
	key := NormalizeCityKey(city)
	if key == "" {
		return nil, fmt.Errorf("%w: empty city name", ErrBoundaryUnavailable)
	}

	if b := r.lookup(key); b != nil {
		return b, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		// Re-check after acquiring the flight: another caller may have
		// populated the cache while we waited.
		if b := r.lookup(key); b != nil {
			return b, nil
		}

		geom, err := r.gateway.FetchBoundary(ctx, key)
		if err != nil {
			if errors.Is(err, gateways.ErrBoundaryNotFound) {
				r.logger.Warn("city not found by boundary service", interfaces.F("city", key))
				return nil, fmt.Errorf("%w: %s not found", ErrBoundaryUnavailable, key)
			}
			r.logger.Warn("boundary lookup failed", interfaces.F("city", key), interfaces.F("err", err))
			return nil, fmt.Errorf("%w: %v", ErrBoundaryUnavailable, err)
		}

		boundary := &entities.Boundary{
			City:      key,
			Geometry:  geom,
			FetchedAt: r.clock(),
			TTL:       r.ttl,
		}
		r.store(key, boundary)
		return boundary, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entities.Boundary), nil
}

// GeographicCheck resolves the city boundary and tests every feature for
// intersection with it. Intersection, not strict containment: pilot areas
// legitimately straddle administrative edges.
func (r *BoundaryResolver) GeographicCheck(ctx context.Context, city string, fc *geojson.FeatureCollection) entities.Check {
	boundary, err := r.Resolve(ctx, city)
	if err != nil {
		return entities.Check{
			Name:     "geographic-boundary",
			Category: entities.CategoryGeographic,
			Status:   entities.CheckIndeterminate,
			Message:  fmt.Sprintf("could not retrieve boundary for %s: %v", city, err),
		}
	}

	total := len(fc.Features)
	intersecting := 0
	for _, feat := range fc.Features {
		if feat.Geometry != nil && geometryIntersects(feat.Geometry, boundary.Geometry) {
			intersecting++
		}
	}

	if intersecting == total {
		return entities.Check{
			Name:     "geographic-boundary",
			Category: entities.CategoryGeographic,
			Status:   entities.CheckPass,
			Message:  fmt.Sprintf("all %d features intersect the %s boundary", total, city),
		}
	}
	return entities.Check{
		Name:     "geographic-boundary",
		Category: entities.CategoryGeographic,
		Status:   entities.CheckFail,
		Message:  fmt.Sprintf("%d of %d features fall outside the %s boundary", total-intersecting, total, city),
	}
}

// lookup returns a fresh cache entry or nil. Expired entries are evicted
// lazily here.
func (r *BoundaryResolver) lookup(key string) *entities.Boundary {
	r.mu.RLock()
	b, ok := r.cache[key]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	if b.Expired(r.clock()) {
		r.mu.Lock()
		// Entry may have been replaced since the read.
		if cur, ok := r.cache[key]; ok && cur.Expired(r.clock()) {
			delete(r.cache, key)
		}
		r.mu.Unlock()
		return nil
	}
	return b
}

func (r *BoundaryResolver) store(key string, b *entities.Boundary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.cache) >= r.maxSize {
		r.evictOldestLocked()
	}
	r.cache[key] = b
}

func (r *BoundaryResolver) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, b := range r.cache {
		if oldestKey == "" || b.FetchedAt.Before(oldest) {
			oldestKey = k
			oldest = b.FetchedAt
		}
	}
	if oldestKey != "" {
		delete(r.cache, oldestKey)
	}
}
