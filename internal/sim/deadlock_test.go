package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

func TestFindWaitCycles(t *testing.T) {
	type blockers = map[core.RobotID]core.RobotID
	tests := []struct {
		name string
		in   blockers
		want [][]core.RobotID
	}{
		{"empty", blockers{}, nil},
		{"chain without cycle", blockers{0: 1, 1: 2}, nil},
		{"two-cycle", blockers{0: 1, 1: 0}, [][]core.RobotID{{0, 1}}},
		{"three-cycle starts at lowest id", blockers{2: 5, 5: 3, 3: 2}, [][]core.RobotID{{2, 5, 3}}},
		{"tail feeding a cycle", blockers{7: 0, 0: 1, 1: 0}, [][]core.RobotID{{0, 1}}},
		{"self wait", blockers{4: 4}, [][]core.RobotID{{4}}},
		{
			"two disjoint cycles sorted",
			blockers{8: 9, 9: 8, 0: 1, 1: 0},
			[][]core.RobotID{{0, 1}, {8, 9}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findWaitCycles(tt.in))
		})
	}
}
