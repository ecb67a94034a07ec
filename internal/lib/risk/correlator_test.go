package risk

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/lanewatch/internal/lib/geo"
	"github.com/dpup/lanewatch/internal/lib/legs"
)

func newTestCorrelator() *Correlator {
	return NewCorrelator(legs.NewExtractor(nil, nil, nil))
}

func roadStage(srcLat, srcLng, dstLat, dstLng float64) legs.Stage {
	return legs.Stage{Transport: &legs.Transport{
		Source:      legs.Location{Name: "src", Latitude: srcLat, Longitude: srcLng},
		Destination: legs.Location{Name: "dst", Latitude: dstLat, Longitude: dstLng},
		Mode:        legs.ModeRoad,
	}}
}

func flightStage(srcLat, srcLng, dstLat, dstLng float64) legs.Stage {
	return legs.Stage{Transport: &legs.Transport{
		Source:      legs.Location{Name: "src", Latitude: srcLat, Longitude: srcLng},
		Destination: legs.Location{Name: "dst", Latitude: dstLat, Longitude: dstLng},
		Mode:        legs.ModeFlight,
	}}
}

func TestIsNear_HazardAtFirstPoint(t *testing.T) {
	c := newTestCorrelator()

	points := []geo.Position{
		{Latitude: 38.0, Longitude: -120.0},
		{Latitude: 38.5, Longitude: -119.5},
	}
	hazard := Point{ID: "h1", Lat: 38.0, Lon: -120.0, Type: TypeTraffic}

	assert.True(t, c.isNear(points, hazard, 0), "Hazard exactly at the first point is near for any threshold >= 0")
}

func TestIsNear_BeyondThreshold(t *testing.T) {
	c := newTestCorrelator()

	points := []geo.Position{
		{Latitude: 38.0, Longitude: -120.0},
		{Latitude: 38.0, Longitude: -119.0},
		{Latitude: 38.0, Longitude: -118.0},
	}
	// ~56km from the interior point, ~104km from both endpoints
	hazard := Point{ID: "h1", Lat: 38.5, Lon: -119.0, Type: TypeTraffic}

	assert.False(t, c.isNear(points, hazard, 50))
	assert.True(t, c.isNear(points, hazard, 60), "Interior scan finds the midpoint hit")
}

func TestIsNear_EmptyPoints(t *testing.T) {
	c := newTestCorrelator()
	assert.False(t, c.isNear(nil, Point{ID: "h1"}, 1000))
}

func TestIsNear_EarlyExitMatchesBruteForceOnStraightRoutes(t *testing.T) {
	c := newTestCorrelator()
	g := geo.NewGeoUtils()
	rng := rand.New(rand.NewSource(7))

	bruteForce := func(points []geo.Position, hazard Point, thresholdKm float64) bool {
		for _, p := range points {
			d, err := g.Distance(hazard.Position(), p)
			require.NoError(t, err)
			if d <= thresholdKm {
				return true
			}
		}
		return false
	}

	for trial := 0; trial < 200; trial++ {
		startLat := rng.Float64()*120 - 60
		startLng := rng.Float64()*300 - 150
		endLat := startLat + rng.Float64()*10 - 5
		endLng := startLng + rng.Float64()*10 - 5

		// Densify the straight 2-point route
		n := 2 + rng.Intn(20)
		points := make([]geo.Position, 0, n)
		for i := 0; i < n; i++ {
			f := float64(i) / float64(n-1)
			points = append(points, geo.Position{
				Latitude:  startLat + f*(endLat-startLat),
				Longitude: startLng + f*(endLng-startLng),
			})
		}

		hazard := Point{
			ID:   fmt.Sprintf("h%d", trial),
			Lat:  startLat + rng.Float64()*30 - 15,
			Lon:  startLng + rng.Float64()*30 - 15,
			Type: TypeTraffic,
		}

		// The pruning heuristic is only claimed sound while the threshold
		// stays within the route's own end-to-end extent.
		span, err := g.Distance(points[0], points[len(points)-1])
		require.NoError(t, err)
		if span < 1 {
			continue
		}
		thresholdKm := rng.Float64() * span

		want := bruteForce(points, hazard, thresholdKm)
		got := c.isNear(points, hazard, thresholdKm)
		assert.Equal(t, want, got,
			"trial %d: heuristic disagreed with brute force (threshold %.1fkm)", trial, thresholdKm)
	}
}

func TestRisksNearRoute_ModeFilter(t *testing.T) {
	c := newTestCorrelator()

	// Weather hazard exactly on the flight leg's midpoint chord
	route := legs.ShippingRoute{
		ID:     "r1",
		Name:   "air freight",
		Stages: []legs.Stage{flightStage(50.0, 0.0, 50.0, 10.0)},
	}
	weather := Point{ID: "w1", Lat: 50.0, Lon: 5.0, Type: TypeWeather}

	matches := c.RisksNearRoute(context.Background(), route, []Point{weather}, 500)
	assert.Empty(t, matches, "Flight legs only admit notam and jamming hazards")

	// The same position as a notam is reported
	notam := Point{ID: "n1", Lat: 50.9, Lon: 5.0, Type: TypeNotam}
	matches = c.RisksNearRoute(context.Background(), route, []Point{notam}, 500)
	assert.Len(t, matches, 1)
}

func TestRisksNearRoute_JammingCap(t *testing.T) {
	c := newTestCorrelator()

	route := legs.ShippingRoute{
		ID:     "r1",
		Name:   "air freight",
		Stages: []legs.Stage{flightStage(50.0, 0.0, 50.0, 10.0)},
	}
	all := []Point{
		{ID: "j1", Lat: 50.0, Lon: 0.1, Type: TypeJamming, Severity: 80},
		{ID: "j2", Lat: 50.0, Lon: 0.2, Type: TypeJamming, Severity: 90},
	}

	matches := c.RisksNearRoute(context.Background(), route, all, 500)
	assert.Len(t, matches, 1, "At most one jamming hazard per flight leg")
}

func TestRisksNearRoute_JammingSeverityFloor(t *testing.T) {
	c := newTestCorrelator()

	route := legs.ShippingRoute{
		ID:     "r1",
		Name:   "air freight",
		Stages: []legs.Stage{flightStage(50.0, 0.0, 50.0, 10.0)},
	}
	weak := Point{ID: "j1", Lat: 50.0, Lon: 0.1, Type: TypeJamming, Severity: 50}

	matches := c.RisksNearRoute(context.Background(), route, []Point{weak}, 500)
	assert.Empty(t, matches, "Severity must exceed 50")
}

func TestRisksNearRoute_RoadTrafficCategories(t *testing.T) {
	c := newTestCorrelator()

	route := legs.ShippingRoute{
		ID:     "r1",
		Name:   "trucking",
		Stages: []legs.Stage{roadStage(38.0, -120.0, 38.2, -119.8)},
	}
	all := []Point{
		{ID: "t1", Lat: 38.1, Lon: -119.9, Type: TypeTraffic, Category: "Planned works"},
		{ID: "t2", Lat: 38.1, Lon: -119.9, Type: TypeTraffic, Category: "Accidents"},
		{ID: "w1", Lat: 38.1, Lon: -119.9, Type: TypeWeather},
	}

	matches := c.RisksNearRoute(context.Background(), route, all, 50)
	require.Len(t, matches, 2)
	assert.Equal(t, "t2", matches[0].ID, "Planned roadworks are excluded")
	assert.Equal(t, "w1", matches[1].ID, "Weather needs no category")
}

func TestRisksNearRoute_DedupAcrossStages(t *testing.T) {
	c := newTestCorrelator()

	// Two road stages sharing a midpoint; the hazard sits on both
	route := legs.ShippingRoute{
		ID:   "r1",
		Name: "two hops",
		Stages: []legs.Stage{
			roadStage(38.0, -120.0, 38.2, -119.8),
			roadStage(38.2, -119.8, 38.4, -119.6),
		},
	}
	hazard := Point{ID: "t1", Lat: 38.2, Lon: -119.8, Type: TypeTraffic, Category: "Congestion"}

	matches := c.RisksNearRoute(context.Background(), route, []Point{hazard}, 50)
	assert.Len(t, matches, 1, "Deduplicated by id across the whole route")
}

func TestRisksNearRoute_RailModes(t *testing.T) {
	c := newTestCorrelator()

	route := legs.ShippingRoute{
		ID:   "r1",
		Name: "rail freight",
		Stages: []legs.Stage{{Transport: &legs.Transport{
			Source:      legs.Location{Name: "a", Latitude: 48.0, Longitude: 11.0},
			Destination: legs.Location{Name: "b", Latitude: 48.5, Longitude: 12.0},
			Mode:        legs.ModeRail,
		}}},
	}
	all := []Point{
		{ID: "d1", Lat: 48.2, Lon: 11.5, Type: TypeTrainDisruption},
		{ID: "t1", Lat: 48.2, Lon: 11.5, Type: TypeTraffic, Category: "Accidents"},
	}

	matches := c.RisksNearRoute(context.Background(), route, all, 80)
	require.Len(t, matches, 1)
	assert.Equal(t, "d1", matches[0].ID, "Rail legs admit weather and train-disruption only")
}

func TestRisksNearRoute_HoldingStagesSkipped(t *testing.T) {
	c := newTestCorrelator()

	route := legs.ShippingRoute{
		ID:     "r1",
		Name:   "all holdings",
		Stages: []legs.Stage{{Holding: &legs.Holding{Location: "Warehouse"}}},
	}
	hazard := Point{ID: "t1", Lat: 0.1, Lon: 0.1, Type: TypeTraffic, Category: "Accidents"}

	assert.Empty(t, c.RisksNearRoute(context.Background(), route, []Point{hazard}, 1000))
}

func TestCounters(t *testing.T) {
	c := newTestCorrelator()

	nearRoute := legs.ShippingRoute{ID: "r1", Name: "near", Stages: []legs.Stage{roadStage(38.0, -120.0, 38.2, -119.8)}}
	farRoute := legs.ShippingRoute{ID: "r2", Name: "far", Stages: []legs.Stage{roadStage(-30.0, 140.0, -30.2, 140.2)}}

	all := []Point{
		{ID: "t1", Lat: 38.1, Lon: -119.9, Type: TypeTraffic, Category: "Accidents"},
		{ID: "t2", Lat: 38.0, Lon: -120.0, Type: TypeTraffic, Category: "Congestion"},
	}

	ctx := context.Background()
	routes := []legs.ShippingRoute{nearRoute, farRoute}

	assert.Equal(t, 2, c.CountNearbyRisks(ctx, routes, all, 50))
	assert.Equal(t, 1, c.CountRoutesAtRisk(ctx, routes, all, 50))
}
