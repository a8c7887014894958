package core

// ResourceKind discriminates arbitration resources.
type ResourceKind int

const (
	ResourceVertex ResourceKind = iota
	ResourceLane
)

func (k ResourceKind) String() string {
	if k == ResourceLane {
		return "lane"
	}
	return "vertex"
}

// Resource is a contended unit of the map: a vertex or a directed lane.
type Resource struct {
	Kind   ResourceKind `json:"kind"`
	Vertex VertexID     `json:"vertex,omitempty"` // valid when Kind == ResourceVertex
	Lane   LaneKey      `json:"lane,omitempty"`   // valid when Kind == ResourceLane
}

// VertexResource builds a vertex resource.
func VertexResource(v VertexID) Resource {
	return Resource{Kind: ResourceVertex, Vertex: v}
}

// LaneResource builds a lane resource.
func LaneResource(k LaneKey) Resource {
	return Resource{Kind: ResourceLane, Lane: k}
}

// Less orders resources deterministically for snapshot output.
func (r Resource) Less(o Resource) bool {
	if r.Kind != o.Kind {
		return r.Kind < o.Kind
	}
	if r.Kind == ResourceVertex {
		return r.Vertex < o.Vertex
	}
	if r.Lane.From != o.Lane.From {
		return r.Lane.From < o.Lane.From
	}
	return r.Lane.To < o.Lane.To
}

// RobotSnapshot is one robot's externally visible state.
type RobotSnapshot struct {
	ID        RobotID    `json:"id"`
	State     string     `json:"state"`
	Returning bool       `json:"returning,omitempty"`
	Vertex    VertexID   `json:"vertex"`             // resting position, or lane origin while in transit
	InTransit bool       `json:"in_transit"`
	Lane      LaneKey    `json:"lane,omitempty"`     // valid while in transit
	Progress  float64    `json:"progress,omitempty"` // valid while in transit
	Battery   float64    `json:"battery"`
	Path      []VertexID `json:"path,omitempty"`
}

// FleetSnapshot is the per-tick state emitted for the presentation
// layer. All slices are fresh copies, safe to retain across ticks.
type FleetSnapshot struct {
	Tick      uint64          `json:"tick"`
	Paused    bool            `json:"paused,omitempty"`
	Robots    []RobotSnapshot `json:"robots"` // ascending id
	Waiting   []RobotID       `json:"waiting,omitempty"`
	Contested []Resource      `json:"contested,omitempty"`
	Stranded  []RobotID       `json:"stranded,omitempty"`
	// Deadlocked lists wait-for cycles among Waiting robots, a
	// diagnostic only: resolution semantics are unchanged by it.
	Deadlocked [][]RobotID `json:"deadlocked,omitempty"`
}

// RobotByID finds a robot snapshot by id.
func (s FleetSnapshot) RobotByID(id RobotID) *RobotSnapshot {
	for i := range s.Robots {
		if s.Robots[i].ID == id {
			return &s.Robots[i]
		}
	}
	return nil
}
