package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

func lane(from, to core.VertexID) core.Lane {
	return core.Lane{From: from, To: to, Length: 1}
}

func TestResolve_LowestIDWinsContestedVertex(t *testing.T) {
	a := NewArbiter()
	a.PlaceRobot(0, 0)
	a.PlaceRobot(1, 1)

	verdicts := a.Resolve(nil, []Request{
		{Robot: 1, Lane: lane(1, 2)},
		{Robot: 0, Lane: lane(0, 2)},
	})

	assert.Equal(t, VerdictGranted, verdicts[0])
	assert.Equal(t, VerdictWaiting, verdicts[1])

	holder, ok := a.VertexHolder(2)
	require.True(t, ok)
	assert.Equal(t, core.RobotID(0), holder, "winner holds the reservation")

	contested := a.Contested()
	require.Len(t, contested, 1)
	assert.Equal(t, core.VertexResource(2), contested[0])
	assert.Equal(t, core.RobotID(0), a.Blockers()[1])
}

func TestResolve_VacatedVertexEnterableSameTick(t *testing.T) {
	// Robot 1 stands on vertex 1 and moves off; robot 0 wants in.
	// Both grants land in the same tick regardless of id order.
	a := NewArbiter()
	a.PlaceRobot(0, 0)
	a.PlaceRobot(1, 1)

	verdicts := a.Resolve(nil, []Request{
		{Robot: 0, Lane: lane(0, 1)},
		{Robot: 1, Lane: lane(1, 2)},
	})

	assert.Equal(t, VerdictGranted, verdicts[0])
	assert.Equal(t, VerdictGranted, verdicts[1])
	assert.Empty(t, a.Contested())
}

func TestResolve_OccupiedVertexDenied(t *testing.T) {
	a := NewArbiter()
	a.PlaceRobot(0, 0)
	a.PlaceRobot(1, 1) // parked, no request

	verdicts := a.Resolve(nil, []Request{{Robot: 0, Lane: lane(0, 1)}})

	assert.Equal(t, VerdictWaiting, verdicts[0])
	assert.Equal(t, core.RobotID(1), a.Blockers()[0])
}

func TestResolve_SymmetricSwapDeadlocks(t *testing.T) {
	a := NewArbiter()
	a.PlaceRobot(0, 0)
	a.PlaceRobot(1, 1)

	verdicts := a.Resolve(nil, []Request{
		{Robot: 0, Lane: lane(0, 1)},
		{Robot: 1, Lane: lane(1, 0)},
	})

	assert.Equal(t, VerdictWaiting, verdicts[0])
	assert.Equal(t, VerdictWaiting, verdicts[1])
	assert.Equal(t, map[core.RobotID]core.RobotID{0: 1, 1: 0}, a.Blockers())
}

func TestArrive_ConvertsReservationToOccupancy(t *testing.T) {
	a := NewArbiter()
	a.PlaceRobot(0, 0)

	verdicts := a.Resolve(nil, []Request{{Robot: 0, Lane: lane(0, 1)}})
	require.Equal(t, VerdictGranted, verdicts[0])

	holder, ok := a.LaneHolder(core.LaneKey{From: 0, To: 1})
	require.True(t, ok)
	assert.Equal(t, core.RobotID(0), holder)

	a.Arrive(0, core.LaneKey{From: 0, To: 1})
	_, inLane := a.LaneHolder(core.LaneKey{From: 0, To: 1})
	assert.False(t, inLane, "lane freed on arrival")
	holder, ok = a.VertexHolder(1)
	require.True(t, ok)
	assert.Equal(t, core.RobotID(0), holder)

	// Idempotent: a second report changes nothing.
	a.Arrive(0, core.LaneKey{From: 0, To: 1})
	holder, ok = a.VertexHolder(1)
	require.True(t, ok)
	assert.Equal(t, core.RobotID(0), holder)
}

func TestResolve_LaneAndReverseAreDistinct(t *testing.T) {
	// Head-on passing on a lane pair is allowed: each direction is its
	// own capacity-one resource.
	a := NewArbiter()
	a.PlaceRobot(0, 0)
	a.PlaceRobot(1, 1)

	verdicts := a.Resolve(nil, []Request{
		{Robot: 0, Lane: lane(0, 1)},
		{Robot: 1, Lane: lane(1, 0)},
	})
	// Vertex swap is still denied (each target is occupied)...
	assert.Equal(t, VerdictWaiting, verdicts[0])
	assert.Equal(t, VerdictWaiting, verdicts[1])

	// ...but with free target vertices both directions grant at once.
	b := NewArbiter()
	b.PlaceRobot(0, 0)
	b.PlaceRobot(1, 3)
	v2 := b.Resolve(nil, []Request{
		{Robot: 0, Lane: lane(0, 1)},
		{Robot: 1, Lane: lane(3, 2)},
	})
	assert.Equal(t, VerdictGranted, v2[0])
	assert.Equal(t, VerdictGranted, v2[1])
}

func TestReleaseRobot_FreesEverything(t *testing.T) {
	a := NewArbiter()
	a.PlaceRobot(3, 0)
	verdicts := a.Resolve(nil, []Request{{Robot: 3, Lane: lane(0, 1)}})
	require.Equal(t, VerdictGranted, verdicts[3])

	a.ReleaseRobot(3)
	_, inLane := a.LaneHolder(core.LaneKey{From: 0, To: 1})
	assert.False(t, inLane)
	_, held := a.VertexHolder(1)
	assert.False(t, held)
	_, held = a.VertexHolder(0)
	assert.False(t, held)
}
