package sim

import (
	"sort"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// findWaitCycles detects cycles in the wait-for relation produced by
// arbitration (each denied robot points at the robot holding its
// resource). A cycle means the robots involved will wait forever under
// the static lowest-id rule; this is reported as a diagnostic, never
// acted upon.
func findWaitCycles(blockers map[core.RobotID]core.RobotID) [][]core.RobotID {
	const (
		unseen = 0
		active = 1
		closed = 2
	)
	state := make(map[core.RobotID]int, len(blockers))

	roots := make([]core.RobotID, 0, len(blockers))
	for r := range blockers {
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	var cycles [][]core.RobotID
	for _, root := range roots {
		if state[root] != unseen {
			continue
		}
		// Out-degree is at most one, so the walk is a simple chain.
		var chain []core.RobotID
		r := root
		for {
			state[r] = active
			chain = append(chain, r)
			next, ok := blockers[r]
			if !ok || state[next] == closed {
				break
			}
			if state[next] == active {
				// Found a cycle: the chain suffix starting at next.
				start := 0
				for i, c := range chain {
					if c == next {
						start = i
						break
					}
				}
				cycles = append(cycles, rotateToMin(chain[start:]))
				break
			}
			r = next
		}
		for _, c := range chain {
			state[c] = closed
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// rotateToMin rotates a cycle so its lowest id comes first, keeping
// output stable across runs.
func rotateToMin(cycle []core.RobotID) []core.RobotID {
	min := 0
	for i, r := range cycle {
		if r < cycle[min] {
			min = i
		}
	}
	out := make([]core.RobotID, 0, len(cycle))
	out = append(out, cycle[min:]...)
	out = append(out, cycle[:min]...)
	return out
}
