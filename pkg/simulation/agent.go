package simulation

import (
	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/geometry"
)

// Agent is the per-boid state. Agents live in a dense slice owned by the
// Flock; their only identity is the slice slot, which is stable within a
// tick because population churn happens strictly between ticks.
type Agent struct {
	Pos geometry.Vector2D
	Vel geometry.Vector2D
	// Dominant is the influence that contributed the most acceleration in
	// the last tick. Recomputed every tick, rendering only.
	Dominant behavior.Influence
}

// Heading returns the agent's orientation in radians, derived from its
// velocity.
func (a *Agent) Heading() float64 {
	return a.Vel.Angle()
}

// AgentView is the read-only render snapshot of one agent.
type AgentView struct {
	Pos      geometry.Vector2D
	Heading  float64
	Dominant behavior.Influence
}

// Predator is the pointer-controlled threat the agents steer away from.
// It is supplied by the caller once per tick; Active is false when the
// pointer is outside the simulation area.
type Predator struct {
	Pos    geometry.Vector2D
	Active bool
}
