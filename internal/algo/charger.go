package algo

import (
	"errors"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// NearestCharger selects the reachable charger vertex with the lowest
// route cost from the given position and returns it with the route to
// it. Cost ties resolve to the lowest charger id. It fails with
// *core.NoChargerReachableError when the graph has no charger or none
// is reachable.
func NearestCharger(g *core.Graph, from core.VertexID) (core.VertexID, []core.VertexID, error) {
	var (
		best     core.VertexID
		bestPath []core.VertexID
		bestCost float64
		found    bool
	)

	// Chargers() is ascending, so a strict < keeps the lowest id on ties.
	for _, c := range g.Chargers() {
		path, err := Route(g, from, c)
		if err != nil {
			var np *core.NoPathError
			if errors.As(err, &np) {
				continue
			}
			return 0, nil, err
		}
		cost, _ := g.PathCost(path)
		if !found || cost < bestCost {
			best, bestPath, bestCost, found = c, path, cost, true
		}
	}

	if !found {
		return 0, nil, &core.NoChargerReachableError{From: from}
	}
	return best, bestPath, nil
}
