package sim

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/elektrokombinacija/fleetsim/internal/algo"
	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// progressEps absorbs float drift when accumulating lane progress.
const progressEps = 1e-9

// Scheduler drives the fleet one discrete tick per call. All robot and
// occupancy state is owned here: intents are collected against the
// state at the start of the tick, resolved by the arbiter, and applied
// by a single writer, so a robot's move never changes what another
// robot saw this tick.
type Scheduler struct {
	mu  sync.Mutex
	cfg Config
	log *slog.Logger

	graph   *core.Graph
	arbiter *Arbiter
	robots  map[core.RobotID]*core.Robot
	nextID  core.RobotID

	tick    uint64
	paused  bool
	metrics Metrics

	lastDeadlocked [][]core.RobotID
}

// NewScheduler validates the config and returns an empty scheduler.
// A nil logger discards all events.
func NewScheduler(cfg Config, logger *slog.Logger) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		cfg:     cfg,
		log:     logger,
		arbiter: NewArbiter(),
		robots:  make(map[core.RobotID]*core.Robot),
	}, nil
}

// LoadLevel atomically replaces the active graph. The fleet is reset:
// in-flight paths would be meaningless on the new level.
func (s *Scheduler) LoadLevel(g *core.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
	s.robots = make(map[core.RobotID]*core.Robot)
	s.nextID = 0
	s.arbiter.Reset()
	s.tick = 0
	s.metrics = Metrics{}
	s.lastDeadlocked = nil
	s.log.Info("level loaded", "vertices", g.VertexCount(), "chargers", len(g.Chargers()))
}

// SpawnRobot creates an Idle robot resting on a free vertex. It fails
// with *core.VertexOccupiedError when the vertex is occupied or
// reserved by a robot in transit toward it.
func (s *Scheduler) SpawnRobot(v core.VertexID) (core.RobotID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return 0, core.ErrNoGraph
	}
	vert, ok := s.graph.Vertex(v)
	if !ok {
		return 0, fmt.Errorf("spawn at vertex %d: %w", v, core.ErrUnknownVertex)
	}
	if holder, held := s.arbiter.VertexHolder(v); held {
		return 0, &core.VertexOccupiedError{Vertex: v, By: holder}
	}

	id := s.nextID
	s.nextID++
	r := &core.Robot{
		ID:      id,
		State:   core.StateIdle,
		Vertex:  v,
		Battery: s.cfg.InitialBattery,
	}
	if vert.IsCharger && r.Battery < s.cfg.LowBatteryThreshold {
		r.State = core.StateCharging
	}
	s.robots[id] = r
	s.arbiter.PlaceRobot(id, v)
	s.metrics.Spawns++
	s.log.Info("robot spawned", "robot", id, "vertex", v, "battery", r.Battery)
	return id, nil
}

// AssignTask routes a robot to a destination vertex and replaces its
// current path. It fails with *core.NoPathError when the destination
// is unreachable; the robot keeps its prior state. Charging and
// Stranded robots refuse tasks.
func (s *Scheduler) AssignTask(id core.RobotID, dest core.VertexID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return core.ErrNoGraph
	}
	r, ok := s.robots[id]
	if !ok {
		return fmt.Errorf("robot %d: %w", id, core.ErrUnknownRobot)
	}
	if r.State == core.StateStranded || r.State == core.StateCharging {
		return &core.RobotUnavailableError{Robot: id, State: r.State}
	}
	if _, ok := s.graph.Vertex(dest); !ok {
		return fmt.Errorf("assign to vertex %d: %w", dest, core.ErrUnknownVertex)
	}

	// Mid-lane robots are routed from the end of their current lane.
	origin := r.Vertex
	if r.Lane != nil {
		origin = r.Lane.To
	}
	path, err := algo.Route(s.graph, origin, dest)
	if err != nil {
		return err
	}

	r.Path = path[1:]
	r.Destination = dest
	r.Returning = false
	if r.Lane == nil {
		if len(r.Path) == 0 {
			r.State = core.StateIdle
		} else {
			r.State = core.StateMoving
		}
	}
	s.metrics.TasksAssigned++
	s.log.Info("task assigned", "robot", id, "destination", dest, "hops", len(r.Path))
	return nil
}

// RemoveRobot destroys a robot at a tick boundary, releasing every
// lane, vertex, and reservation it held.
func (s *Scheduler) RemoveRobot(id core.RobotID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.robots[id]; !ok {
		return fmt.Errorf("robot %d: %w", id, core.ErrUnknownRobot)
	}
	delete(s.robots, id)
	s.arbiter.ReleaseRobot(id)
	s.metrics.Removals++
	s.log.Info("robot removed", "robot", id)
	return nil
}

// Pause gates Tick: while paused, Tick returns the current snapshot
// without advancing simulated time.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume re-enables Tick.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Paused reports whether the scheduler is paused.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Metrics returns a copy of the accumulated counters.
func (s *Scheduler) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// Snapshot returns the current fleet state without ticking.
func (s *Scheduler) Snapshot() core.FleetSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Tick advances the simulation by one step: collect intents, resolve
// contention, apply transitions, emit a snapshot. Ticks are strictly
// sequential; while paused or before a level is loaded it is a no-op.
func (s *Scheduler) Tick() core.FleetSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused || s.graph == nil {
		return s.snapshotLocked()
	}
	s.tick++
	s.metrics.Ticks++

	ids := s.sortedIDs()

	// Intent phase: computed against the state as of the start of the
	// tick. Nothing is mutated here except exhausted robots stranding.
	var (
		arrivals []Arrival
		requests []Request
		reqLane  = make(map[core.RobotID]core.Lane)
	)
	for _, id := range ids {
		r := s.robots[id]
		if r.State != core.StateMoving && r.State != core.StateWaiting {
			continue
		}
		if r.Battery <= 0 {
			s.strand(r)
			continue
		}
		if r.Lane != nil {
			if s.willComplete(r) {
				arrivals = append(arrivals, Arrival{Robot: id, Lane: r.Lane.Key()})
			}
			continue
		}
		if len(r.Path) == 0 {
			continue
		}
		lane, ok := s.graph.Lane(r.Vertex, r.Path[0])
		if !ok {
			// Path head not adjacent: the path is stale. Drop it.
			s.log.Error("path head unreachable, dropping path", "robot", id, "vertex", r.Vertex, "head", r.Path[0])
			r.Path = nil
			r.State = core.StateIdle
			continue
		}
		requests = append(requests, Request{Robot: id, Lane: lane})
		reqLane[id] = lane
	}

	verdicts := s.arbiter.Resolve(arrivals, requests)

	// Apply phase: single writer, ascending id.
	for _, id := range ids {
		r, ok := s.robots[id]
		if !ok {
			continue
		}
		switch r.State {
		case core.StateCharging:
			s.applyCharging(r)
		case core.StateMoving, core.StateWaiting:
			if r.Lane != nil {
				s.advance(r)
				continue
			}
			verdict, asked := verdicts[id]
			if !asked {
				continue
			}
			if verdict == VerdictGranted {
				s.metrics.Grants++
				lane := reqLane[id]
				if r.State == core.StateWaiting {
					s.log.Info("robot granted after wait", "robot", id, "lane", lane.Key().String())
				}
				r.State = core.StateMoving
				r.Path = r.Path[1:]
				r.Lane = &lane
				r.Progress = 0
				s.advance(r)
			} else {
				s.metrics.Denials++
				if r.State != core.StateWaiting {
					r.State = core.StateWaiting
					s.log.Info("robot waiting", "robot", id, "lane", reqLane[id].Key().String())
				}
			}
		}
	}

	s.lastDeadlocked = findWaitCycles(s.arbiter.Blockers())
	return s.snapshotLocked()
}

// stepOn returns the per-tick advance on a lane, honoring its speed
// limit.
func (s *Scheduler) stepOn(l *core.Lane) float64 {
	step := s.cfg.Speed
	if l.SpeedLimit > 0 && l.SpeedLimit < step {
		step = l.SpeedLimit
	}
	return step
}

// willComplete predicts whether an in-transit robot reaches the lane
// end this tick, including having the battery to cover the distance.
func (s *Scheduler) willComplete(r *core.Robot) bool {
	rem := r.RemainingOnLane()
	if s.stepOn(r.Lane)+progressEps < rem {
		return false
	}
	if cost := s.cfg.BatteryCostPerLength; cost > 0 && r.Battery+progressEps < rem*cost {
		return false
	}
	return true
}

// advance moves an in-transit robot along its lane, draining battery
// by distance traveled, and handles arrival, stranding, and the
// low-battery divert.
func (s *Scheduler) advance(r *core.Robot) {
	dist := s.stepOn(r.Lane)
	if rem := r.RemainingOnLane(); dist > rem {
		dist = rem
	}
	if cost := s.cfg.BatteryCostPerLength; cost > 0 {
		if reach := r.Battery / cost; dist > reach {
			dist = reach
		}
		r.Battery -= dist * cost
		if r.Battery < 0 {
			r.Battery = 0
		}
	}
	r.Progress += dist / r.Lane.Length

	if r.Progress >= 1-progressEps {
		k := r.Lane.Key()
		s.arbiter.Arrive(r.ID, k)
		r.Vertex = k.To
		r.Lane = nil
		r.Progress = 0
		if len(r.Path) == 0 {
			s.finalizeArrival(r)
		}
	} else if r.Battery <= 0 {
		s.strand(r)
		return
	}

	if r.State == core.StateMoving && !r.Returning &&
		r.Battery > 0 && r.Battery < s.cfg.LowBatteryThreshold {
		s.rerouteToCharger(r)
	}
}

// finalizeArrival settles a robot that has reached the end of its
// path: Charging on a charger it was returning to (or with a low
// battery), Idle otherwise. A task pre-empted by a charger divert is
// discarded, not resumed.
func (s *Scheduler) finalizeArrival(r *core.Robot) {
	vert, _ := s.graph.Vertex(r.Vertex)
	wasReturning := r.Returning
	r.Returning = false
	r.Path = nil
	r.Destination = 0

	if vert != nil && vert.IsCharger && (wasReturning || r.Battery < s.cfg.LowBatteryThreshold) {
		r.State = core.StateCharging
		s.log.Info("robot charging", "robot", r.ID, "vertex", r.Vertex, "battery", r.Battery)
		return
	}
	r.State = core.StateIdle
	if !wasReturning {
		s.metrics.TasksCompleted++
		s.log.Info("task completed", "robot", r.ID, "vertex", r.Vertex, "battery", r.Battery)
	}
}

// applyCharging raises battery by the per-tick rate until the charged
// threshold, then the robot goes Idle the same tick.
func (s *Scheduler) applyCharging(r *core.Robot) {
	r.Battery += s.cfg.ChargeRatePerTick
	if r.Battery > 100 {
		r.Battery = 100
	}
	if r.Battery >= s.cfg.ChargedThreshold {
		r.State = core.StateIdle
		s.metrics.ChargesCompleted++
		s.log.Info("robot charged", "robot", r.ID, "vertex", r.Vertex, "battery", r.Battery)
	}
}

// rerouteToCharger discards the active path and routes the robot to
// the nearest charger. When no charger is reachable the robot keeps
// its path; it will strand eventually and surface in the snapshot.
func (s *Scheduler) rerouteToCharger(r *core.Robot) {
	origin := r.Vertex
	if r.Lane != nil {
		origin = r.Lane.To
	}
	charger, path, err := algo.NearestCharger(s.graph, origin)
	if err != nil {
		s.log.Warn("low battery but no charger reachable", "robot", r.ID, "battery", r.Battery, "error", err)
		return
	}
	r.Path = path[1:]
	r.Destination = charger
	r.Returning = true
	s.metrics.ChargerReroutes++
	s.log.Info("robot diverting to charger", "robot", r.ID, "charger", charger, "battery", r.Battery)
}

// strand freezes a robot whose battery hit zero mid-route. Terminal:
// the robot keeps whatever lane or vertex it holds and is surfaced as
// an anomaly in every snapshot.
func (s *Scheduler) strand(r *core.Robot) {
	r.State = core.StateStranded
	s.metrics.Strandings++
	s.log.Error("robot stranded", "robot", r.ID, "vertex", r.Vertex, "in_transit", r.Lane != nil)
}

func (s *Scheduler) sortedIDs() []core.RobotID {
	ids := make([]core.RobotID, 0, len(s.robots))
	for id := range s.robots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Scheduler) snapshotLocked() core.FleetSnapshot {
	snap := core.FleetSnapshot{
		Tick:       s.tick,
		Paused:     s.paused,
		Deadlocked: s.lastDeadlocked,
		Contested:  s.arbiter.Contested(),
	}
	for _, id := range s.sortedIDs() {
		r := s.robots[id]
		rs := core.RobotSnapshot{
			ID:        r.ID,
			State:     r.State.String(),
			Returning: r.Returning,
			Vertex:    r.Vertex,
			Battery:   r.Battery,
			Path:      append([]core.VertexID(nil), r.Path...),
		}
		if r.Lane != nil {
			rs.InTransit = true
			rs.Lane = r.Lane.Key()
			rs.Progress = r.Progress
			rs.Vertex = r.Lane.From
		}
		snap.Robots = append(snap.Robots, rs)
		switch r.State {
		case core.StateWaiting:
			snap.Waiting = append(snap.Waiting, r.ID)
		case core.StateStranded:
			snap.Stranded = append(snap.Stranded, r.ID)
		}
	}
	return snap
}
