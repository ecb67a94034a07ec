package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/lanewatch/internal/lib/geo"
	"github.com/dpup/lanewatch/internal/seanet"
)

func newSeaRouteService(t *testing.T) *SeaRouteService {
	t.Helper()
	network, err := seanet.LoadDefaultNetwork()
	require.NoError(t, err)
	return NewSeaRouteService(network)
}

func TestComputeSeaRoute_LondonToNewYork(t *testing.T) {
	s := newSeaRouteService(t)

	// Deliberately offset from the network vertices so snapping does work
	origin := geo.Position{Latitude: 51.51, Longitude: 0.05}
	destination := geo.Position{Latitude: 40.68, Longitude: -74.05}

	result, err := s.ComputeSeaRoute(context.Background(), origin, destination)
	require.NoError(t, err)

	// The caller's exact endpoints bracket the path, not the snapped points
	assert.Equal(t, origin, result.Points[0])
	assert.Equal(t, destination, result.Points[len(result.Points)-1])
	assert.True(t, result.OriginSnapped)
	assert.True(t, result.DestinationSnapped)

	assert.Equal(t, "nautical_miles", result.LengthUnit)
	// ~5570km great-circle; the lane path is longer, and reported in nm
	assert.Greater(t, result.LengthNauticalMile, 3000.0)
	assert.Less(t, result.LengthNauticalMile, 4100.0)
}

func TestComputeSeaRoute_NauticalMileConversion(t *testing.T) {
	s := newSeaRouteService(t)

	// A point ~0.926km north of the London network vertex: snap-in plus
	// snap-out legs sum to 1.852km, which must report as exactly ~1nm.
	point := geo.Position{Latitude: 51.5 + 0.926/111.195, Longitude: 0.0}

	result, err := s.ComputeSeaRoute(context.Background(), point, point)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.LengthNauticalMile, 0.01)
}

func TestComputeSeaRoute_DegenerateSamePoint(t *testing.T) {
	s := newSeaRouteService(t)

	// Origin and destination on a network vertex: a valid zero-length route
	london := geo.Position{Latitude: 51.5, Longitude: 0.0}
	result, err := s.ComputeSeaRoute(context.Background(), london, london)
	require.NoError(t, err)

	assert.Equal(t, london, result.Points[0])
	assert.Equal(t, london, result.Points[len(result.Points)-1])
	assert.Equal(t, 0.0, result.LengthNauticalMile)
}

func TestComputeSeaRoute_NoRoute(t *testing.T) {
	s := newSeaRouteService(t)

	// Lake Superior snaps to the disconnected Great Lakes lane
	_, err := s.ComputeSeaRoute(context.Background(),
		geo.Position{Latitude: 51.5, Longitude: 0.0},
		geo.Position{Latitude: 47.2, Longitude: -87.8})
	assert.ErrorIs(t, err, seanet.ErrNoRoute, "Disconnected components are a normal negative outcome")
}

func TestSeaRoutePoints(t *testing.T) {
	s := newSeaRouteService(t)

	points, err := s.SeaRoutePoints(context.Background(),
		geo.Position{Latitude: 51.5, Longitude: 0.0},
		geo.Position{Latitude: 40.7, Longitude: -74.0})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(points), 4)
}
