package seanet

import (
	"container/heap"
	"errors"
	"math"

	"github.com/dpup/lanewatch/internal/lib/geo"
)

// ErrNoRoute indicates the two endpoints sit on disconnected parts of the
// lane network. Callers must treat this as a normal negative outcome for
// land-locked or unreachable inputs, not a failure.
var ErrNoRoute = errors.New("no sea route between endpoints")

// ShortestPath runs Dijkstra over the lane graph between two snapped
// positions and returns the vertex positions along the path, inclusive of
// both ends. Edge weight is great-circle distance between adjacent vertices.
func (n *Network) ShortestPath(from, to geo.Position) ([]geo.Position, error) {
	fromIdx, ok := n.lookupVertex(from)
	if !ok {
		return nil, errors.New("origin is not a network vertex, snap it first")
	}
	toIdx, ok := n.lookupVertex(to)
	if !ok {
		return nil, errors.New("destination is not a network vertex, snap it first")
	}

	if fromIdx == toIdx {
		return []geo.Position{n.vertices[fromIdx]}, nil
	}

	dist := make(map[int]float64, len(n.vertices))
	prev := make(map[int]int, len(n.vertices))
	visited := make(map[int]bool, len(n.vertices))

	dist[fromIdx] = 0

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{node: fromIdx, priority: 0})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		current := item.node
		if current == toIdx {
			return n.reconstructPath(prev, fromIdx, toIdx), nil
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, e := range n.adjacency[current] {
			tentative := dist[current] + e.weight
			if old, ok := dist[e.to]; !ok || tentative < old {
				dist[e.to] = tentative
				prev[e.to] = current
				heap.Push(pq, &pqItem{node: e.to, priority: tentative})
			}
		}
	}

	return nil, ErrNoRoute
}

// reconstructPath walks the predecessor map back from the target.
func (n *Network) reconstructPath(prev map[int]int, from, to int) []geo.Position {
	indices := []int{to}
	for cur := to; cur != from; {
		p, ok := prev[cur]
		if !ok {
			break
		}
		indices = append(indices, p)
		cur = p
	}

	path := make([]geo.Position, 0, len(indices))
	for i := len(indices) - 1; i >= 0; i-- {
		path = append(path, n.vertices[indices[i]])
	}
	return path
}

// PathLengthKm sums great-circle distances between consecutive positions.
func (n *Network) PathLengthKm(points []geo.Position) float64 {
	total := 0.0
	for i := 0; i < len(points)-1; i++ {
		d, err := n.geoUtils.Distance(points[i], points[i+1])
		if err != nil {
			continue
		}
		total += d
	}
	return total
}

// pqItem is one entry in the Dijkstra frontier.
type pqItem struct {
	node     int
	priority float64
	index    int
}

// priorityQueue implements heap.Interface ordered by ascending priority.
type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if math.IsNaN(pq[i].priority) {
		return false
	}
	return pq[i].priority < pq[j].priority
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
