package geo

import "math"

// BezierArc produces steps+1 positions along a single quadratic bezier curve
// between origin and destination. The control point sits at the chord
// midpoint, offset perpendicular to the chord by curvature × chord length.
// The offset bows toward higher latitudes in the northern hemisphere and
// toward lower latitudes in the southern (the sign of the midpoint latitude).
//
// This is a visual approximation of a flight path, not a great-circle track.
func (g *geoUtils) BezierArc(origin, destination Position, steps int, curvature float64) []Position {
	if steps < 1 {
		steps = 1
	}

	midLat := (origin.Latitude + destination.Latitude) / 2
	midLon := (origin.Longitude + destination.Longitude) / 2

	dLat := destination.Latitude - origin.Latitude
	dLon := destination.Longitude - origin.Longitude
	chord := math.Sqrt(dLat*dLat + dLon*dLon)

	if chord == 0 {
		points := make([]Position, steps+1)
		for i := range points {
			points[i] = origin
		}
		return points
	}

	// Unit perpendicular to the chord, flipped so its latitude component
	// points away from the equator on the midpoint's side of it.
	perpLat := -dLon / chord
	perpLon := dLat / chord
	if (midLat >= 0 && perpLat < 0) || (midLat < 0 && perpLat > 0) {
		perpLat = -perpLat
		perpLon = -perpLon
	}

	offset := curvature * chord
	ctrlLat := midLat + perpLat*offset
	ctrlLon := midLon + perpLon*offset

	points := make([]Position, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		mt := 1 - t
		points = append(points, Position{
			Latitude:  mt*mt*origin.Latitude + 2*mt*t*ctrlLat + t*t*destination.Latitude,
			Longitude: mt*mt*origin.Longitude + 2*mt*t*ctrlLon + t*t*destination.Longitude,
		})
	}

	return points
}
