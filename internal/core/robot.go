package core

// RobotID is a unique robot identifier. IDs are assigned monotonically
// and double as the arbitration priority key: lower id wins.
type RobotID int

// RobotState is the robot finite-state machine state.
type RobotState int

const (
	StateIdle     RobotState = iota // no path
	StateMoving                     // following a path
	StateWaiting                    // blocked on a resource, retrying each tick
	StateCharging                   // parked on a charger, battery rising
	StateStranded                   // terminal: battery hit zero mid-route
)

func (s RobotState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateMoving:
		return "Moving"
	case StateWaiting:
		return "Waiting"
	case StateCharging:
		return "Charging"
	case StateStranded:
		return "Stranded"
	default:
		return "Unknown"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s RobotState) Terminal() bool {
	return s == StateStranded
}

// Robot is one agent's mutable simulation state. It is owned by the
// scheduler's apply phase; nothing else writes it.
//
// A robot occupies exactly one vertex (Lane == nil) or one lane
// (Lane != nil) at any instant, never both and never neither.
type Robot struct {
	ID    RobotID
	State RobotState

	Vertex   VertexID // resting position; valid when Lane == nil
	Lane     *Lane    // lane in transit; nil when at a vertex
	Progress float64  // fraction of Lane traversed, in [0,1)

	// Path holds the vertices still to be entered, nearest first. The
	// vertex currently being traversed toward (Lane.To) is not in Path.
	Path        []VertexID
	Destination VertexID // valid while a task or charger run is active

	Battery   float64 // percent, [0,100]
	Returning bool    // active path targets a charger due to low battery
}

// InTransit reports whether the robot is mid-lane.
func (r *Robot) InTransit() bool {
	return r.Lane != nil
}

// NextVertex returns the vertex the robot will stand on next: the lane
// end while in transit, otherwise the path head. ok is false when the
// robot has nowhere further to go.
func (r *Robot) NextVertex() (VertexID, bool) {
	if r.Lane != nil {
		return r.Lane.To, true
	}
	if len(r.Path) > 0 {
		return r.Path[0], true
	}
	return 0, false
}

// RemainingOnLane returns the untraversed length of the current lane.
func (r *Robot) RemainingOnLane() float64 {
	if r.Lane == nil {
		return 0
	}
	rem := r.Lane.Length * (1 - r.Progress)
	if rem < 0 {
		return 0
	}
	return rem
}
