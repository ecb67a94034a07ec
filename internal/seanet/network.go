// Package seanet holds the static maritime lane network: a graph of named
// shipping-lane line segments loaded once at startup, with nearest-vertex
// snapping and shortest-path search over it. The network is immutable after
// construction and safe for unlimited concurrent reads.
package seanet

import (
	"fmt"

	"github.com/dpup/lanewatch/internal/lib/geo"
)

// LaneSegment is one named line of the navigable network: an ordered list of
// at least two positions. Consecutive positions on a segment are connected;
// segments share vertices only where their coordinates coincide.
type LaneSegment struct {
	Name   string
	Points []geo.Position
}

// edge is one adjacency entry; weight is great-circle distance in km.
type edge struct {
	to     int
	weight float64
}

// Network is the immutable lane graph. Vertices are deduplicated by
// coordinate so segments that touch share graph nodes.
type Network struct {
	vertices  []geo.Position
	adjacency map[int][]edge
	vertexIdx map[string]int
	segments  []LaneSegment
	geoUtils  geo.GeoUtils
}

// NewNetwork builds the lane graph from parsed segments. Segments with fewer
// than two points are rejected; a dataset that yields no usable segment is a
// startup error, not a degraded state.
func NewNetwork(segments []LaneSegment) (*Network, error) {
	n := &Network{
		adjacency: make(map[int][]edge),
		vertexIdx: make(map[string]int),
		segments:  segments,
		geoUtils:  geo.NewGeoUtils(),
	}

	for _, seg := range segments {
		if len(seg.Points) < 2 {
			return nil, fmt.Errorf("lane segment %q has %d points, need at least 2", seg.Name, len(seg.Points))
		}

		prev := -1
		for _, p := range seg.Points {
			idx := n.internVertex(p)
			if prev >= 0 && prev != idx {
				w, err := n.geoUtils.Distance(n.vertices[prev], n.vertices[idx])
				if err != nil {
					return nil, fmt.Errorf("lane segment %q has invalid coordinates: %w", seg.Name, err)
				}
				n.addEdge(prev, idx, w)
				n.addEdge(idx, prev, w)
			}
			prev = idx
		}
	}

	if len(n.vertices) == 0 {
		return nil, fmt.Errorf("lane dataset produced an empty network")
	}

	return n, nil
}

// internVertex returns the index for p, inserting it on first sight.
func (n *Network) internVertex(p geo.Position) int {
	key := vertexKey(p)
	if idx, ok := n.vertexIdx[key]; ok {
		return idx
	}
	idx := len(n.vertices)
	n.vertices = append(n.vertices, p)
	n.vertexIdx[key] = idx
	return idx
}

func (n *Network) addEdge(from, to int, weight float64) {
	for _, e := range n.adjacency[from] {
		if e.to == to {
			return
		}
	}
	n.adjacency[from] = append(n.adjacency[from], edge{to: to, weight: weight})
}

// vertexKey quantizes a position to ~0.1m so segments drawn over the same
// waypoint share a graph node.
func vertexKey(p geo.Position) string {
	return fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
}

// VertexCount returns the number of distinct vertices in the network.
func (n *Network) VertexCount() int {
	return len(n.vertices)
}

// SegmentCount returns the number of lane segments loaded.
func (n *Network) SegmentCount() int {
	return len(n.segments)
}

// lookupVertex resolves a position to its vertex index, if it is one.
func (n *Network) lookupVertex(p geo.Position) (int, bool) {
	idx, ok := n.vertexIdx[vertexKey(p)]
	return idx, ok
}
