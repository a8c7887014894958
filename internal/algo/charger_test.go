package algo

import (
	"errors"
	"testing"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

func chargerGraph(t *testing.T, chargers []core.VertexID, lanes []core.Lane, n int) *core.Graph {
	t.Helper()
	isCharger := make(map[core.VertexID]bool)
	for _, c := range chargers {
		isCharger[c] = true
	}
	var vertices []core.Vertex
	for i := 0; i < n; i++ {
		id := core.VertexID(i)
		vertices = append(vertices, core.Vertex{ID: id, IsCharger: isCharger[id]})
	}
	g, err := core.NewGraph(vertices, lanes)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	return g
}

func TestNearestCharger_PicksCheapest(t *testing.T) {
	// Chargers at 0 and 3; from vertex 2 the charger at 3 is closer.
	g := chargerGraph(t, []core.VertexID{0, 3}, []core.Lane{
		{From: 2, To: 1, Length: 1},
		{From: 1, To: 0, Length: 1},
		{From: 2, To: 3, Length: 1},
	}, 4)

	c, path, err := NearestCharger(g, 2)
	if err != nil {
		t.Fatalf("NearestCharger failed: %v", err)
	}
	if c != 3 {
		t.Errorf("charger = %d, want 3", c)
	}
	if !equalPath(path, []core.VertexID{2, 3}) {
		t.Errorf("path = %v, want [2 3]", path)
	}
}

func TestNearestCharger_TieBreaksToLowestID(t *testing.T) {
	// Chargers at 1 and 2, both one unit from 0.
	g := chargerGraph(t, []core.VertexID{1, 2}, []core.Lane{
		{From: 0, To: 1, Length: 1},
		{From: 0, To: 2, Length: 1},
	}, 3)

	c, _, err := NearestCharger(g, 0)
	if err != nil {
		t.Fatalf("NearestCharger failed: %v", err)
	}
	if c != 1 {
		t.Errorf("charger = %d, want 1 (lowest id on tie)", c)
	}
}

func TestNearestCharger_AtChargerAlready(t *testing.T) {
	g := chargerGraph(t, []core.VertexID{0}, []core.Lane{{From: 0, To: 1, Length: 1}}, 2)
	c, path, err := NearestCharger(g, 0)
	if err != nil {
		t.Fatalf("NearestCharger failed: %v", err)
	}
	if c != 0 || !equalPath(path, []core.VertexID{0}) {
		t.Errorf("got charger %d path %v, want 0 and [0]", c, path)
	}
}

func TestNearestCharger_NoneReachable(t *testing.T) {
	// A charger exists but only behind a one-way lane out.
	g := chargerGraph(t, []core.VertexID{0}, []core.Lane{{From: 0, To: 1, Length: 1}}, 2)
	_, _, err := NearestCharger(g, 1)
	var nc *core.NoChargerReachableError
	if !errors.As(err, &nc) {
		t.Fatalf("want NoChargerReachableError, got %v", err)
	}

	// No chargers at all.
	g2 := chargerGraph(t, nil, []core.Lane{{From: 0, To: 1, Length: 1}}, 2)
	if _, _, err := NearestCharger(g2, 0); !errors.As(err, &nc) {
		t.Fatalf("want NoChargerReachableError, got %v", err)
	}
}
