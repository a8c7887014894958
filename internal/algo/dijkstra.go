// Package algo implements the stateless planning algorithms of the
// fleet engine: shortest-path routing and charger selection. All
// functions are reentrant over an immutable graph.
package algo

import (
	"container/heap"
	"fmt"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// routeNode for the priority queue.
type routeNode struct {
	v     core.VertexID
	dist  float64
	index int // heap index
}

// routeHeap implements heap.Interface ordered by (dist, vertex id).
// The id tie-break keeps expansion order deterministic.
type routeHeap []*routeNode

func (h routeHeap) Len() int { return len(h) }
func (h routeHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].v < h[j].v
}
func (h routeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *routeHeap) Push(x any) {
	n := x.(*routeNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *routeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// Route computes the minimum-cost vertex sequence from one vertex to
// another using Dijkstra over lane lengths. Equal-cost alternatives
// resolve to the path through the lowest predecessor id, so repeated
// calls on the same graph return the same path. Route(g, a, a) is a
// single-vertex path. It fails with *core.NoPathError when the
// destination is unreachable and wraps core.ErrUnknownVertex for ids
// outside the graph.
func Route(g *core.Graph, from, to core.VertexID) ([]core.VertexID, error) {
	if _, ok := g.Vertex(from); !ok {
		return nil, unknownVertex(from)
	}
	if _, ok := g.Vertex(to); !ok {
		return nil, unknownVertex(to)
	}
	if from == to {
		return []core.VertexID{from}, nil
	}

	dist := map[core.VertexID]float64{from: 0}
	prev := make(map[core.VertexID]core.VertexID)
	done := make(map[core.VertexID]bool)

	pq := &routeHeap{}
	heap.Init(pq)
	heap.Push(pq, &routeNode{v: from, dist: 0})

	for pq.Len() > 0 {
		u := heap.Pop(pq).(*routeNode)
		if done[u.v] {
			continue
		}
		done[u.v] = true
		if u.v == to {
			break
		}
		for _, l := range g.Neighbors(u.v) {
			alt := dist[u.v] + l.Length
			d, seen := dist[l.To]
			switch {
			case !seen || alt < d:
				dist[l.To] = alt
				prev[l.To] = u.v
				heap.Push(pq, &routeNode{v: l.To, dist: alt})
			case alt == d && !done[l.To] && u.v < prev[l.To]:
				// Same cost via a lower-id predecessor: prefer it.
				prev[l.To] = u.v
			}
		}
	}

	if !done[to] {
		return nil, &core.NoPathError{From: from, To: to}
	}

	// Reconstruct.
	var path []core.VertexID
	for v := to; ; v = prev[v] {
		path = append(path, v)
		if v == from {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

func unknownVertex(v core.VertexID) error {
	return fmt.Errorf("vertex %d: %w", v, core.ErrUnknownVertex)
}
