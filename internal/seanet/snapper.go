package seanet

import "github.com/dpup/lanewatch/internal/lib/geo"

// Snap projects an arbitrary position onto the nearest lane-network vertex:
// first the nearest segment by point-to-segment distance, then the nearest
// vertex on that segment by great-circle distance.
//
// The boolean reports whether snapping happened. When the network is empty or
// every candidate fails, Snap returns p unchanged with false, so downstream
// pathfinding degrades to a direct line instead of failing.
func (n *Network) Snap(p geo.Position) (geo.Position, bool) {
	if len(n.segments) == 0 {
		return p, false
	}

	bestSegment := -1
	bestDistance := 0.0
	for i, seg := range n.segments {
		segDist := n.segmentDistance(p, seg)
		if bestSegment < 0 || segDist < bestDistance {
			bestSegment = i
			bestDistance = segDist
		}
	}
	if bestSegment < 0 {
		return p, false
	}

	idx, _, err := n.geoUtils.NearestVertex(p, n.segments[bestSegment].Points)
	if err != nil {
		return p, false
	}

	return n.segments[bestSegment].Points[idx], true
}

// segmentDistance is the minimum point-to-segment distance across a lane's
// consecutive point pairs.
func (n *Network) segmentDistance(p geo.Position, seg LaneSegment) float64 {
	best := -1.0
	for i := 0; i < len(seg.Points)-1; i++ {
		d := n.geoUtils.PointToSegment(p, seg.Points[i], seg.Points[i+1])
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}
