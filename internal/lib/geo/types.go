package geo

// Position represents a geographic coordinate in degrees (WGS84).
//
// This is the single canonical coordinate type for the whole engine. External
// boundaries that speak [lon,lat] tuples (KML, GeoJSON-style arrays) or
// [lat,lon] pairs (encoded polylines) convert to and from Position at the
// boundary, never past it.
type Position struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// GeoUtils interface defines geographic calculation utilities
type GeoUtils interface {
	// Calculate great-circle distance between two positions in kilometers
	Distance(a, b Position) (float64, error)

	// Perpendicular (cross-track) distance in kilometers from a position to a
	// line segment; an approximation suitable for the short segments found in
	// shipping-lane and road data
	PointToSegment(p, segStart, segEnd Position) float64

	// Index and distance (km) of the vertex nearest to p
	NearestVertex(p Position, vertices []Position) (int, float64, error)

	// Decode an encoded polyline string to a position sequence
	DecodePolyline(encoded string) ([]Position, error)

	// Synthesize a quadratic bezier arc between two positions
	BezierArc(origin, destination Position, steps int, curvature float64) []Position
}

// NewPosition creates a Position with validation.
func NewPosition(latitude, longitude float64) (Position, error) {
	p := Position{Latitude: latitude, Longitude: longitude}
	if !isValidCoordinate(p) {
		return Position{}, errInvalidCoordinate
	}
	return p, nil
}

// IsZero reports whether the position is the (0,0) null island marker used by
// upstream systems for "unset".
func (p Position) IsZero() bool {
	return p.Latitude == 0 && p.Longitude == 0
}
