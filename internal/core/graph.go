// Package core defines the domain model for the fleet navigation engine:
// the navigation graph, robot state, snapshots, and the error taxonomy.
package core

import (
	"fmt"
	"sort"
)

// VertexID is a unique vertex identifier.
type VertexID int

// Pos is a 2D display coordinate. Algorithms never read it.
type Pos struct {
	X, Y float64
}

// Vertex is a location in the navigation graph.
type Vertex struct {
	ID        VertexID
	Name      string // display label, may be empty
	Pos       Pos
	IsCharger bool
}

// LaneKey identifies a directed lane. A lane and its reverse are
// distinct resources.
type LaneKey struct {
	From, To VertexID
}

func (k LaneKey) String() string {
	return fmt.Sprintf("%d->%d", k.From, k.To)
}

// Lane is a directed traversable edge with capacity one.
type Lane struct {
	From, To   VertexID
	Length     float64 // traversal cost, > 0
	SpeedLimit float64 // max per-tick advance on this lane; 0 = unlimited
}

// Key returns the lane's occupancy key.
func (l Lane) Key() LaneKey {
	return LaneKey{From: l.From, To: l.To}
}

// Graph is the immutable navigation graph for one level. Construct it
// with NewGraph; no component mutates it afterwards, so concurrent
// reads need no locking.
type Graph struct {
	vertices map[VertexID]*Vertex
	adj      map[VertexID][]Lane
	chargers []VertexID
}

// NewGraph validates the level structure and builds an adjacency-indexed
// graph. It fails with *GraphLoadError on duplicate vertex ids, dangling
// lane endpoints, or non-positive lane lengths.
func NewGraph(vertices []Vertex, lanes []Lane) (*Graph, error) {
	g := &Graph{
		vertices: make(map[VertexID]*Vertex, len(vertices)),
		adj:      make(map[VertexID][]Lane),
	}

	for _, v := range vertices {
		if _, dup := g.vertices[v.ID]; dup {
			return nil, &GraphLoadError{Reason: fmt.Sprintf("duplicate vertex id %d", v.ID)}
		}
		vc := v
		g.vertices[v.ID] = &vc
		if v.IsCharger {
			g.chargers = append(g.chargers, v.ID)
		}
	}

	seen := make(map[LaneKey]bool, len(lanes))
	for _, l := range lanes {
		if _, ok := g.vertices[l.From]; !ok {
			return nil, &GraphLoadError{Reason: fmt.Sprintf("lane %s: unknown from-vertex", l.Key())}
		}
		if _, ok := g.vertices[l.To]; !ok {
			return nil, &GraphLoadError{Reason: fmt.Sprintf("lane %s: unknown to-vertex", l.Key())}
		}
		if l.Length <= 0 {
			return nil, &GraphLoadError{Reason: fmt.Sprintf("lane %s: non-positive length %g", l.Key(), l.Length)}
		}
		if seen[l.Key()] {
			return nil, &GraphLoadError{Reason: fmt.Sprintf("duplicate lane %s", l.Key())}
		}
		seen[l.Key()] = true
		g.adj[l.From] = append(g.adj[l.From], l)
	}

	// Deterministic iteration order for planners.
	for from := range g.adj {
		out := g.adj[from]
		sort.Slice(out, func(i, j int) bool { return out[i].To < out[j].To })
	}
	sort.Slice(g.chargers, func(i, j int) bool { return g.chargers[i] < g.chargers[j] })

	return g, nil
}

// Vertex looks up a vertex by id.
func (g *Graph) Vertex(id VertexID) (*Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// Neighbors returns outgoing lanes of a vertex, ordered by target id.
// The returned slice is shared; callers must not modify it.
func (g *Graph) Neighbors(id VertexID) []Lane {
	return g.adj[id]
}

// Lane returns the directed lane between two vertices, if present.
func (g *Graph) Lane(from, to VertexID) (Lane, bool) {
	for _, l := range g.adj[from] {
		if l.To == to {
			return l, true
		}
	}
	return Lane{}, false
}

// Chargers returns ids of all charger vertices in ascending order.
// The returned slice is shared; callers must not modify it.
func (g *Graph) Chargers() []VertexID {
	return g.chargers
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int {
	return len(g.vertices)
}

// VertexIDs returns all vertex ids in ascending order.
func (g *Graph) VertexIDs() []VertexID {
	ids := make([]VertexID, 0, len(g.vertices))
	for id := range g.vertices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// PathCost sums lane lengths along a vertex sequence. It returns false
// if a step has no connecting lane.
func (g *Graph) PathCost(path []VertexID) (float64, bool) {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		l, ok := g.Lane(path[i], path[i+1])
		if !ok {
			return 0, false
		}
		total += l.Length
	}
	return total, true
}
