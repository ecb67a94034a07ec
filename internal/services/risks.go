package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dpup/lanewatch/internal/cache"
	"github.com/dpup/lanewatch/internal/clients/risksrc"
	"github.com/dpup/lanewatch/internal/lib/legs"
	"github.com/dpup/lanewatch/internal/lib/risk"
)

// defaultSourceTimeout bounds each hazard source independently, matching the
// external feeds' observed behavior.
const defaultSourceTimeout = 3 * time.Second

// RisksService fans out to the hazard sources and answers the aggregate
// queries, memoizing the two counters per (user, threshold).
type RisksService struct {
	sources       []risksrc.Source
	correlator    *risk.Correlator
	cache         *cache.Cache
	sourceTimeout time.Duration
	cacheTTL      time.Duration
}

// NewRisksService creates a RisksService. Zero durations take the defaults.
func NewRisksService(sources []risksrc.Source, correlator *risk.Correlator, resultCache *cache.Cache, sourceTimeout, cacheTTL time.Duration) *RisksService {
	if sourceTimeout <= 0 {
		sourceTimeout = defaultSourceTimeout
	}
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}
	return &RisksService{
		sources:       sources,
		correlator:    correlator,
		cache:         resultCache,
		sourceTimeout: sourceTimeout,
		cacheTTL:      cacheTTL,
	}
}

// FetchAllRisks issues one fetch per source concurrently, each independently
// time-bounded. A source that errors or times out contributes an empty list
// and never fails the batch. Results are concatenated without dedup; the
// correlator dedups per route by hazard id.
func (s *RisksService) FetchAllRisks(ctx context.Context) []risk.Point {
	results := make([][]risk.Point, len(s.sources))

	var wg sync.WaitGroup
	for i, source := range s.sources {
		wg.Add(1)
		go func(i int, source risksrc.Source) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
			defer cancel()

			points, err := source.Fetch(fetchCtx)
			if err != nil {
				log.Printf("Hazard source %s failed, contributing empty: %v", source.Name(), err)
				return
			}
			results[i] = points
		}(i, source)
	}
	wg.Wait()

	var all []risk.Point
	for _, points := range results {
		all = append(all, points...)
	}
	return all
}

// CorrelateRouteRisks validates the route and returns the hazards near any
// of its stages.
func (s *RisksService) CorrelateRouteRisks(ctx context.Context, route legs.ShippingRoute, allRisks []risk.Point, thresholdKm float64) ([]risk.Point, error) {
	if err := route.Validate(); err != nil {
		return nil, fmt.Errorf("invalid route: %w", err)
	}
	return s.correlator.RisksNearRoute(ctx, route, allRisks, thresholdKm), nil
}

// CountNearbyRisks counts the unique hazards near any of the user's routes,
// memoized per (user, threshold) for the cache TTL.
func (s *RisksService) CountNearbyRisks(ctx context.Context, userID string, routes []legs.ShippingRoute, thresholdKm float64) (int, error) {
	return s.cachedCount(ctx, "nearby_risks", userID, routes, thresholdKm, s.correlator.CountNearbyRisks)
}

// CountRoutesAtRisk counts the user's routes with at least one nearby
// hazard, memoized per (user, threshold) for the cache TTL.
func (s *RisksService) CountRoutesAtRisk(ctx context.Context, userID string, routes []legs.ShippingRoute, thresholdKm float64) (int, error) {
	return s.cachedCount(ctx, "routes_at_risk", userID, routes, thresholdKm, s.correlator.CountRoutesAtRisk)
}

// cachedCount is the read-through memoization shared by both counters. Two
// concurrent misses may both recompute; either answer is valid and the
// cache's lock keeps the overwrite safe.
func (s *RisksService) cachedCount(ctx context.Context, operation, userID string, routes []legs.ShippingRoute, thresholdKm float64,
	compute func(context.Context, []legs.ShippingRoute, []risk.Point, float64) int) (int, error) {

	for i := range routes {
		if err := routes[i].Validate(); err != nil {
			return 0, fmt.Errorf("invalid route %q: %w", routes[i].Name, err)
		}
		routes[i].EnsureID()
	}

	key := fmt.Sprintf("%s:%s:%.3f", operation, userID, thresholdKm)

	var cached int
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		log.Printf("Cache error for %s: %v", key, err)
	}
	if found {
		return cached, nil
	}

	allRisks := s.FetchAllRisks(ctx)
	value := compute(ctx, routes, allRisks, thresholdKm)

	if err := s.cache.Set(key, value, s.cacheTTL); err != nil {
		log.Printf("Failed to cache %s: %v", key, err)
	}

	return value, nil
}
