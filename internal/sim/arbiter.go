package sim

import (
	"sort"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// Verdict is the arbitration outcome for one request.
type Verdict int

const (
	VerdictWaiting Verdict = iota
	VerdictGranted
)

func (v Verdict) String() string {
	if v == VerdictGranted {
		return "Granted"
	}
	return "Waiting"
}

// Request is a robot's per-tick claim on the next lane of its path.
// Granting the lane transitively reserves the lane's end vertex.
type Request struct {
	Robot core.RobotID
	Lane  core.Lane
}

// Arrival declares that a mid-lane robot completes its lane this tick.
// Arrivals are unconditional: the robot already owns the lane and the
// reservation on its end vertex.
type Arrival struct {
	Robot core.RobotID
	Lane  core.LaneKey
}

// Arbiter owns the occupancy table: which robot rests on each vertex,
// which robot is in each lane, and which in-transit robot holds the
// standing reservation on a lane's end vertex. It is mutated only by
// the scheduler's resolve/apply phases (single writer).
type Arbiter struct {
	vertexOcc  map[core.VertexID]core.RobotID // resting robots
	laneOcc    map[core.LaneKey]core.RobotID  // robots in transit
	vertexResv map[core.VertexID]core.RobotID // in-transit destination holds

	lastContested []core.Resource
	lastBlocker   map[core.RobotID]core.RobotID // denied robot -> robot holding its resource
}

// NewArbiter returns an empty occupancy table.
func NewArbiter() *Arbiter {
	a := &Arbiter{}
	a.Reset()
	return a
}

// Reset clears all occupancy, for a level switch.
func (a *Arbiter) Reset() {
	a.vertexOcc = make(map[core.VertexID]core.RobotID)
	a.laneOcc = make(map[core.LaneKey]core.RobotID)
	a.vertexResv = make(map[core.VertexID]core.RobotID)
	a.lastContested = nil
	a.lastBlocker = nil
}

// VertexHolder reports the robot resting on or holding a reservation
// for a vertex.
func (a *Arbiter) VertexHolder(v core.VertexID) (core.RobotID, bool) {
	if r, ok := a.vertexOcc[v]; ok {
		return r, true
	}
	if r, ok := a.vertexResv[v]; ok {
		return r, true
	}
	return 0, false
}

// LaneHolder reports the robot occupying a lane.
func (a *Arbiter) LaneHolder(k core.LaneKey) (core.RobotID, bool) {
	r, ok := a.laneOcc[k]
	return r, ok
}

// PlaceRobot records a spawned robot resting on a vertex.
func (a *Arbiter) PlaceRobot(r core.RobotID, v core.VertexID) {
	a.vertexOcc[v] = r
}

// ReleaseRobot drops every resource held by a robot, for removal at a
// tick boundary.
func (a *Arbiter) ReleaseRobot(r core.RobotID) {
	for v, held := range a.vertexOcc {
		if held == r {
			delete(a.vertexOcc, v)
		}
	}
	for k, held := range a.laneOcc {
		if held == r {
			delete(a.laneOcc, k)
		}
	}
	for v, held := range a.vertexResv {
		if held == r {
			delete(a.vertexResv, v)
		}
	}
}

// Arrive commits a lane completion: the lane is freed and the end
// vertex reservation becomes a resting occupancy. Idempotent, so the
// resolve pre-pass and the apply phase may both report it.
func (a *Arbiter) Arrive(r core.RobotID, k core.LaneKey) {
	if a.laneOcc[k] == r {
		delete(a.laneOcc, k)
	}
	if a.vertexResv[k.To] == r {
		delete(a.vertexResv, k.To)
	}
	a.vertexOcc[k.To] = r
}

// Resolve runs one tick of arbitration. Arrivals are applied first;
// requests are then swept in ascending robot id until no further grant
// is possible, so a vertex vacated this tick (by an arrival or by a
// granted departure) is enterable this tick, and a resource contended
// by several robots goes to the lowest id. Grants are committed to the
// occupancy table: the robot leaves its vertex, occupies the lane, and
// reserves the lane's end vertex.
func (a *Arbiter) Resolve(arrivals []Arrival, requests []Request) map[core.RobotID]Verdict {
	for _, ar := range arrivals {
		a.Arrive(ar.Robot, ar.Lane)
	}

	reqs := make([]Request, len(requests))
	copy(reqs, requests)
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Robot < reqs[j].Robot })

	verdicts := make(map[core.RobotID]Verdict, len(reqs))
	granted := make(map[core.RobotID]bool)

	for {
		progressed := false
		for _, req := range reqs {
			if granted[req.Robot] {
				continue
			}
			if !a.grantable(req) {
				continue
			}
			// Departure and lane entry are atomic within the tick.
			if a.vertexOcc[req.Lane.From] == req.Robot {
				delete(a.vertexOcc, req.Lane.From)
			}
			a.laneOcc[req.Lane.Key()] = req.Robot
			a.vertexResv[req.Lane.To] = req.Robot
			granted[req.Robot] = true
			verdicts[req.Robot] = VerdictGranted
			progressed = true
		}
		if !progressed {
			break
		}
	}

	a.lastBlocker = make(map[core.RobotID]core.RobotID)
	contested := make(map[core.Resource]bool)

	// Resources wanted by more than one robot this tick.
	laneWant := make(map[core.LaneKey]int)
	vertexWant := make(map[core.VertexID]int)
	for _, req := range reqs {
		laneWant[req.Lane.Key()]++
		vertexWant[req.Lane.To]++
	}
	for k, n := range laneWant {
		if n > 1 {
			contested[core.LaneResource(k)] = true
		}
	}
	for v, n := range vertexWant {
		if n > 1 {
			contested[core.VertexResource(v)] = true
		}
	}

	// Denied requests: record the blocking resource and its holder.
	for _, req := range reqs {
		if granted[req.Robot] {
			continue
		}
		verdicts[req.Robot] = VerdictWaiting
		if holder, ok := a.laneOcc[req.Lane.Key()]; ok && holder != req.Robot {
			contested[core.LaneResource(req.Lane.Key())] = true
			a.lastBlocker[req.Robot] = holder
		} else if holder, ok := a.VertexHolder(req.Lane.To); ok && holder != req.Robot {
			contested[core.VertexResource(req.Lane.To)] = true
			a.lastBlocker[req.Robot] = holder
		}
	}

	a.lastContested = a.lastContested[:0]
	for res := range contested {
		a.lastContested = append(a.lastContested, res)
	}
	sort.Slice(a.lastContested, func(i, j int) bool { return a.lastContested[i].Less(a.lastContested[j]) })

	return verdicts
}

func (a *Arbiter) grantable(req Request) bool {
	if holder, ok := a.laneOcc[req.Lane.Key()]; ok && holder != req.Robot {
		return false
	}
	if holder, ok := a.vertexOcc[req.Lane.To]; ok && holder != req.Robot {
		return false
	}
	if holder, ok := a.vertexResv[req.Lane.To]; ok && holder != req.Robot {
		return false
	}
	return true
}

// Contested returns the resources contended in the last Resolve,
// deterministically ordered.
func (a *Arbiter) Contested() []core.Resource {
	out := make([]core.Resource, len(a.lastContested))
	copy(out, a.lastContested)
	return out
}

// Blockers returns, for each robot denied in the last Resolve, the
// robot holding the resource it asked for. Input to the deadlock scan.
func (a *Arbiter) Blockers() map[core.RobotID]core.RobotID {
	out := make(map[core.RobotID]core.RobotID, len(a.lastBlocker))
	for k, v := range a.lastBlocker {
		out[k] = v
	}
	return out
}
