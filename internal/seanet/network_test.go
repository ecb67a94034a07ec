package seanet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kml "github.com/twpayne/go-kml/v2"

	"github.com/dpup/lanewatch/internal/lib/geo"
)

func TestParseKML_RoundTrip(t *testing.T) {
	// Author a dataset with go-kml and feed it back through the loader
	doc := kml.KML(
		kml.Document(
			kml.Name("test lanes"),
			kml.Placemark(
				kml.Name("channel"),
				kml.LineString(
					kml.Coordinates(
						kml.Coordinate{Lon: 0.0, Lat: 51.5},
						kml.Coordinate{Lon: 1.4, Lat: 51.2},
						kml.Coordinate{Lon: -5.0, Lat: 49.2},
					),
				),
			),
			kml.Placemark(
				kml.Name("marker only"),
				kml.Point(kml.Coordinates(kml.Coordinate{Lon: 2.0, Lat: 50.0})),
			),
		),
	)

	var buf bytes.Buffer
	require.NoError(t, doc.WriteIndent(&buf, "", "  "))

	segments, err := ParseKML(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, segments, 1, "Point placemarks should be skipped")

	assert.Equal(t, "channel", segments[0].Name)
	require.Len(t, segments[0].Points, 3)
	// KML is lon,lat; loader must emit canonical lat/lon
	assert.Equal(t, 51.5, segments[0].Points[0].Latitude)
	assert.Equal(t, 0.0, segments[0].Points[0].Longitude)
}

func TestParseKML_Malformed(t *testing.T) {
	_, err := ParseKML([]byte("not xml at all <<<"))
	assert.Error(t, err)

	// Well-formed XML with no LineStrings is also a dataset error
	_, err = ParseKML([]byte(`<kml><Document><Placemark><name>x</name></Placemark></Document></kml>`))
	assert.Error(t, err)
}

func TestLoadDefaultNetwork(t *testing.T) {
	network, err := LoadDefaultNetwork()
	require.NoError(t, err)

	assert.Equal(t, 8, network.SegmentCount())
	assert.Greater(t, network.VertexCount(), 40)
}

func TestNewNetwork_SharedVertices(t *testing.T) {
	junction := geo.Position{Latitude: 48.0, Longitude: -10.0}
	segments := []LaneSegment{
		{Name: "a", Points: []geo.Position{{Latitude: 51.5, Longitude: 0.0}, junction}},
		{Name: "b", Points: []geo.Position{junction, {Latitude: 36.0, Longitude: -5.3}}},
	}

	network, err := NewNetwork(segments)
	require.NoError(t, err)

	// Three vertices, not four: the junction is interned once
	assert.Equal(t, 3, network.VertexCount())

	// And the junction makes the two lanes routable end to end
	path, err := network.ShortestPath(
		geo.Position{Latitude: 51.5, Longitude: 0.0},
		geo.Position{Latitude: 36.0, Longitude: -5.3})
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, junction, path[1])
}

func TestNewNetwork_RejectsBadSegments(t *testing.T) {
	_, err := NewNetwork([]LaneSegment{{Name: "stub", Points: []geo.Position{{Latitude: 1, Longitude: 1}}}})
	assert.Error(t, err)

	_, err = NewNetwork(nil)
	assert.Error(t, err)
}

func TestSnap(t *testing.T) {
	network, err := LoadDefaultNetwork()
	require.NoError(t, err)

	// A point just off the Thames estuary snaps to the lane's London vertex
	snapped, ok := network.Snap(geo.Position{Latitude: 51.6, Longitude: 0.1})
	assert.True(t, ok)
	assert.Equal(t, geo.Position{Latitude: 51.5, Longitude: 0.0}, snapped)

	// Mid-Atlantic point snaps to the nearest waypoint of the Atlantic lane
	snapped, ok = network.Snap(geo.Position{Latitude: 44.0, Longitude: -31.0})
	assert.True(t, ok)
	assert.Equal(t, geo.Position{Latitude: 45.0, Longitude: -30.0}, snapped)
}

func TestSnap_EmptyNetworkFallsBack(t *testing.T) {
	empty := &Network{geoUtils: geo.NewGeoUtils()}

	p := geo.Position{Latitude: 12.0, Longitude: 34.0}
	snapped, ok := empty.Snap(p)
	assert.False(t, ok, "Fallback must be signalled, not silent")
	assert.Equal(t, p, snapped, "Unsnappable point passes through unchanged")
}

func TestShortestPath(t *testing.T) {
	network, err := LoadDefaultNetwork()
	require.NoError(t, err)

	london := geo.Position{Latitude: 51.5, Longitude: 0.0}
	newYork := geo.Position{Latitude: 40.7, Longitude: -74.0}

	path, err := network.ShortestPath(london, newYork)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(path), 2)
	assert.Equal(t, london, path[0])
	assert.Equal(t, newYork, path[len(path)-1])

	// Path length should be near the great-circle distance, never below it
	length := network.PathLengthKm(path)
	assert.Greater(t, length, 5500.0)
	assert.Less(t, length, 7500.0)
}

func TestShortestPath_AcrossJunctions(t *testing.T) {
	network, err := LoadDefaultNetwork()
	require.NoError(t, err)

	// London to Singapore traverses four lanes via shared junction vertices
	path, err := network.ShortestPath(
		geo.Position{Latitude: 51.5, Longitude: 0.0},
		geo.Position{Latitude: 1.3, Longitude: 103.8})
	require.NoError(t, err)
	assert.Greater(t, len(path), 15)
}

func TestShortestPath_Disconnected(t *testing.T) {
	network, err := LoadDefaultNetwork()
	require.NoError(t, err)

	// The Great Lakes lane shares no vertex with the ocean network
	_, err = network.ShortestPath(
		geo.Position{Latitude: 51.5, Longitude: 0.0},
		geo.Position{Latitude: 47.0, Longitude: -88.0})
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestShortestPath_SameVertex(t *testing.T) {
	network, err := LoadDefaultNetwork()
	require.NoError(t, err)

	london := geo.Position{Latitude: 51.5, Longitude: 0.0}
	path, err := network.ShortestPath(london, london)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, london, path[0])
	assert.Equal(t, 0.0, network.PathLengthKm(path))
}

func TestShortestPath_UnsnappedEndpoint(t *testing.T) {
	network, err := LoadDefaultNetwork()
	require.NoError(t, err)

	_, err = network.ShortestPath(
		geo.Position{Latitude: 51.6123, Longitude: 0.05},
		geo.Position{Latitude: 40.7, Longitude: -74.0})
	assert.Error(t, err, "Endpoints must be snapped before pathfinding")
}
