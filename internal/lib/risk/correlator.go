package risk

import (
	"context"

	"github.com/dpup/lanewatch/internal/lib/geo"
	"github.com/dpup/lanewatch/internal/lib/legs"
)

// seaThresholdKm and flightThresholdKm override the caller's base threshold
// for the modes whose hazards cover much larger areas.
const (
	seaThresholdKm    = 100.0
	flightThresholdKm = 100.0
)

// jammingSeverityFloor filters the noisy jamming heatmap down to strong
// signals only.
const jammingSeverityFloor = 50.0

// roadTrafficCategories limits road traffic matches to live disruptions;
// planned roadworks and the like are excluded.
var roadTrafficCategories = map[string]bool{
	"Accidents":  true,
	"Congestion": true,
	"Other":      true,
}

// Correlator tests hazards against the dense polylines of a route's stages.
type Correlator struct {
	extractor *legs.Extractor
	geoUtils  geo.GeoUtils
}

// NewCorrelator creates a correlator over the given leg extractor.
func NewCorrelator(extractor *legs.Extractor) *Correlator {
	return &Correlator{
		extractor: extractor,
		geoUtils:  geo.NewGeoUtils(),
	}
}

// modeRules returns the distance threshold and allowed hazard types for a
// transport mode.
func modeRules(mode legs.Mode, baseThresholdKm float64) (float64, map[Type]bool) {
	switch mode {
	case legs.ModeRoad:
		return baseThresholdKm, map[Type]bool{TypeTraffic: true, TypeWeather: true}
	case legs.ModeRail:
		return baseThresholdKm, map[Type]bool{TypeWeather: true, TypeTrainDisruption: true}
	case legs.ModeSea:
		return seaThresholdKm, map[Type]bool{TypeNavigation: true}
	case legs.ModeFlight:
		return flightThresholdKm, map[Type]bool{TypeNotam: true, TypeJamming: true}
	default:
		return baseThresholdKm, map[Type]bool{}
	}
}

// RisksNearRoute returns the hazards within each transport stage's
// mode-specific threshold, deduplicated by hazard id across the whole route.
// Hazard records are never mutated; accumulation is an explicit id-keyed set.
func (c *Correlator) RisksNearRoute(ctx context.Context, route legs.ShippingRoute, allRisks []Point, baseThresholdKm float64) []Point {
	matched := make(map[string]bool)
	var result []Point

	for _, stage := range route.Stages {
		if stage.Transport == nil {
			continue
		}
		transport := *stage.Transport

		thresholdKm, allowedTypes := modeRules(transport.Mode, baseThresholdKm)
		if len(allowedTypes) == 0 {
			continue
		}

		extraction := c.extractor.ExtractLegPoints(ctx, transport)

		// At most one jamming hazard per flight leg; the heatmap would
		// otherwise dominate results.
		jammingAccepted := false

		for _, hazard := range allRisks {
			if hazard.ID == "" || matched[hazard.ID] {
				continue
			}
			if !allowedTypes[hazard.Type] {
				continue
			}
			if transport.Mode == legs.ModeRoad && hazard.Type == TypeTraffic &&
				!roadTrafficCategories[hazard.Category] {
				continue
			}
			if transport.Mode == legs.ModeFlight && hazard.Type == TypeJamming {
				if hazard.Severity <= jammingSeverityFloor || jammingAccepted {
					continue
				}
			}

			if !c.isNear(extraction.Points, hazard, thresholdKm) {
				continue
			}

			if transport.Mode == legs.ModeFlight && hazard.Type == TypeJamming {
				jammingAccepted = true
			}
			matched[hazard.ID] = true
			result = append(result, hazard)
		}
	}

	return result
}

// isNear reports whether the hazard lies within thresholdKm of any point of
// the leg polyline.
//
// The early exit is a pruning heuristic, not an exact bound: a hazard whose
// distance to both endpoints exceeds twice the route's own end-to-end extent
// cannot be close to any interior point unless the route loops back
// drastically. It is exact for straight legs; highly concave routes could in
// principle produce a false negative.
func (c *Correlator) isNear(points []geo.Position, hazard Point, thresholdKm float64) bool {
	if len(points) == 0 {
		return false
	}

	hazardPos := hazard.Position()
	startDist, err := c.geoUtils.Distance(hazardPos, points[0])
	if err != nil {
		return false
	}
	endDist, err := c.geoUtils.Distance(hazardPos, points[len(points)-1])
	if err != nil {
		return false
	}
	spanDist, err := c.geoUtils.Distance(points[0], points[len(points)-1])
	if err != nil {
		return false
	}

	if startDist > 2*spanDist && endDist > 2*spanDist {
		return false
	}
	if startDist <= thresholdKm || endDist <= thresholdKm {
		return true
	}

	for _, p := range points[1 : len(points)-1] {
		d, err := c.geoUtils.Distance(hazardPos, p)
		if err != nil {
			continue
		}
		if d <= thresholdKm {
			return true
		}
	}
	return false
}

// CountNearbyRisks counts the unique hazards near any of the given routes.
func (c *Correlator) CountNearbyRisks(ctx context.Context, routes []legs.ShippingRoute, allRisks []Point, baseThresholdKm float64) int {
	seen := make(map[string]bool)
	for _, route := range routes {
		for _, hazard := range c.RisksNearRoute(ctx, route, allRisks, baseThresholdKm) {
			seen[hazard.ID] = true
		}
	}
	return len(seen)
}

// CountRoutesAtRisk counts the routes with at least one nearby hazard.
func (c *Correlator) CountRoutesAtRisk(ctx context.Context, routes []legs.ShippingRoute, allRisks []Point, baseThresholdKm float64) int {
	count := 0
	for _, route := range routes {
		if len(c.RisksNearRoute(ctx, route, allRisks, baseThresholdKm)) > 0 {
			count++
		}
	}
	return count
}
