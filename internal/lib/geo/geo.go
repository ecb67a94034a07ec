package geo

import (
	"errors"
	"math"

	"github.com/twpayne/go-polyline"
)

// EarthRadiusKm is the mean Earth radius used throughout the engine.
const EarthRadiusKm = 6371.0

var errInvalidCoordinate = errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")

// geoUtils implements the GeoUtils interface
type geoUtils struct{}

// NewGeoUtils creates a new GeoUtils implementation
func NewGeoUtils() GeoUtils {
	return &geoUtils{}
}

// Distance calculates great-circle distance between two positions using the
// Haversine formula. Symmetric; Distance(a, a) is exactly 0.
func (g *geoUtils) Distance(a, b Position) (float64, error) {
	if !isValidCoordinate(a) || !isValidCoordinate(b) {
		return 0, errInvalidCoordinate
	}

	if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
		return 0, nil
	}

	lat1 := a.Latitude * math.Pi / 180
	lon1 := a.Longitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	lon2 := b.Longitude * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c, nil
}

// PointToSegment calculates perpendicular distance from a position to a line
// segment using a cross-track approximation. Monotonic with true geodesic
// distance for short segments, which is all the lane dataset contains.
func (g *geoUtils) PointToSegment(p, segStart, segEnd Position) float64 {
	if segStart.Latitude == segEnd.Latitude && segStart.Longitude == segEnd.Longitude {
		d, _ := g.Distance(p, segStart)
		return d
	}

	distanceToStart, _ := g.Distance(p, segStart)
	distanceToEnd, _ := g.Distance(p, segEnd)
	segmentLength, _ := g.Distance(segStart, segEnd)

	// Degenerate segment, fall back to nearest endpoint
	if segmentLength < 0.001 {
		return math.Min(distanceToStart, distanceToEnd)
	}

	lat1 := segStart.Latitude * math.Pi / 180
	lon1 := segStart.Longitude * math.Pi / 180
	lat2 := segEnd.Latitude * math.Pi / 180
	lon2 := segEnd.Longitude * math.Pi / 180
	lat3 := p.Latitude * math.Pi / 180
	lon3 := p.Longitude * math.Pi / 180

	// Angular distance from segment start to the point
	d13 := distanceToStart / EarthRadiusKm

	// Initial bearing from start to end
	y := math.Sin(lon2-lon1) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
	bearingToEnd := math.Atan2(y, x)

	// Bearing from start to the point
	y = math.Sin(lon3-lon1) * math.Cos(lat3)
	x = math.Cos(lat1)*math.Sin(lat3) - math.Sin(lat1)*math.Cos(lat3)*math.Cos(lon3-lon1)
	bearingToPoint := math.Atan2(y, x)

	dxt := math.Asin(math.Sin(d13) * math.Sin(bearingToPoint-bearingToEnd))
	crossTrack := math.Abs(dxt) * EarthRadiusKm

	// Projection beyond either segment endpoint uses the endpoint distance
	dat := math.Acos(math.Cos(d13) / math.Cos(dxt))
	alongTrack := dat * EarthRadiusKm
	if alongTrack > segmentLength {
		return distanceToEnd
	}
	if math.Cos(d13)/math.Cos(dxt) > 1 || alongTrack < 0 {
		return math.Min(distanceToStart, distanceToEnd)
	}

	return crossTrack
}

// NearestVertex returns the index of the vertex with minimum great-circle
// distance to p, along with that distance in kilometers.
func (g *geoUtils) NearestVertex(p Position, vertices []Position) (int, float64, error) {
	if len(vertices) == 0 {
		return -1, 0, errors.New("vertex list is empty")
	}

	bestIdx := 0
	bestDist := math.Inf(1)
	for i, v := range vertices {
		d, err := g.Distance(p, v)
		if err != nil {
			continue
		}
		if d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}

	return bestIdx, bestDist, nil
}

// DecodePolyline decodes a Google-format encoded polyline to a position
// sequence. Coordinates come off the wire in [lat,lon] order.
func (g *geoUtils) DecodePolyline(encoded string) ([]Position, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.New("failed to decode polyline: " + err.Error())
	}

	positions := make([]Position, len(coords))
	for i, coord := range coords {
		positions[i] = Position{
			Latitude:  coord[0],
			Longitude: coord[1],
		}
		if !isValidCoordinate(positions[i]) {
			return nil, errors.New("decoded polyline contains invalid coordinates")
		}
	}

	return positions, nil
}

// isValidCoordinate validates latitude and longitude values
func isValidCoordinate(p Position) bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}
