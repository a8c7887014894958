package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for lookups.
var (
	ErrUnknownVertex = errors.New("unknown vertex")
	ErrUnknownRobot  = errors.New("unknown robot")
	ErrNoGraph       = errors.New("no level loaded")
)

// GraphLoadError reports a structurally invalid level. The load call
// fails and any previously active graph stays in place.
type GraphLoadError struct {
	Reason string
}

func (e *GraphLoadError) Error() string {
	return "graph load: " + e.Reason
}

// NoPathError reports an unreachable destination. The robot keeps its
// prior state.
type NoPathError struct {
	From, To VertexID
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("no path from vertex %d to vertex %d", e.From, e.To)
}

// NoChargerReachableError reports that no charger vertex is reachable
// from a position.
type NoChargerReachableError struct {
	From VertexID
}

func (e *NoChargerReachableError) Error() string {
	return fmt.Sprintf("no charger reachable from vertex %d", e.From)
}

// VertexOccupiedError reports a spawn attempt on a vertex that is
// occupied or reserved. No robot is created.
type VertexOccupiedError struct {
	Vertex VertexID
	By     RobotID
}

func (e *VertexOccupiedError) Error() string {
	return fmt.Sprintf("vertex %d occupied by robot %d", e.Vertex, e.By)
}

// RobotUnavailableError reports an operation on a robot whose state
// cannot accept it (terminal Stranded, or Charging for task assignment).
type RobotUnavailableError struct {
	Robot RobotID
	State RobotState
}

func (e *RobotUnavailableError) Error() string {
	return fmt.Sprintf("robot %d unavailable in state %s", e.Robot, e.State)
}
