package core

import "testing"

func sampleSnapshot() FleetSnapshot {
	return FleetSnapshot{
		Tick: 7,
		Robots: []RobotSnapshot{
			{ID: 0, State: "Idle", Vertex: 3},
			{ID: 2, State: "Moving", Vertex: 1},
		},
	}
}

func TestRobotByID(t *testing.T) {
	snap := sampleSnapshot()
	r := snap.RobotByID(2)
	if r == nil || r.Vertex != 1 {
		t.Fatalf("RobotByID(2) = %v, want robot at vertex 1", r)
	}
	if snap.RobotByID(9) != nil {
		t.Error("RobotByID(9) should be nil for an absent robot")
	}
}

func TestRobotByID_OnReturnValue(t *testing.T) {
	// Callable directly on a snapshot handed back by value.
	if r := sampleSnapshot().RobotByID(0); r == nil || r.State != "Idle" {
		t.Fatalf("chained RobotByID(0) = %v, want Idle robot", r)
	}
}

func TestResourceLess_Ordering(t *testing.T) {
	a := VertexResource(1)
	b := VertexResource(2)
	c := LaneResource(LaneKey{From: 0, To: 1})
	if !a.Less(b) || b.Less(a) {
		t.Error("vertex resources must order by id")
	}
	if !a.Less(c) {
		t.Error("vertex resources must order before lane resources")
	}
}
