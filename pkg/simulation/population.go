package simulation

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/geometry"
)

// reconcilePopulation brings the live agent count to exactly target. It is
// a pure function of (agents, target): excess agents are dropped from the
// tail of the dense slice, missing agents spawn at random positions with a
// random velocity bounded by MaxSpeed. It runs once per tick, before the
// steering pass, so steering always operates on the final tick population
// and never observes a mid-removal state.
func reconcilePopulation(agents []Agent, target int, rng *rand.Rand, cfg Config) []Agent {
	if target < 0 {
		target = 0
	}
	if len(agents) > target {
		return agents[:target]
	}
	for len(agents) < target {
		agents = append(agents, spawnAgent(rng, cfg))
	}
	return agents
}

// spawnAgent creates one agent at a uniform random position inside the
// world bounds, moving in a random direction at a random speed up to
// MaxSpeed, with no dominant influence yet.
func spawnAgent(rng *rand.Rand, cfg Config) Agent {
	return Agent{
		Pos: geometry.New(
			rng.Float64()*cfg.WorldWidth,
			rng.Float64()*cfg.WorldHeight,
		),
		Vel:      geometry.NewPolar(rng.Float64()*cfg.MaxSpeed, rng.Float64()*2*math.Pi),
		Dominant: behavior.None,
	}
}
