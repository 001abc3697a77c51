// Package behavior implements the four classic boids steering rules.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds and related group motion.
// https://en.wikipedia.org/wiki/Boids
//
// Each rule is a pure function of one agent and the neighbors already
// restricted to the rule's radius. The returned vector is a raw desire:
// weighting and clamping happen in the integrator so that the relative
// strengths of the rules stay centrally tunable.
package behavior

import "github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/geometry"

// Separate accumulates, for every neighbor inside the separation radius,
// a vector pointing away from that neighbor scaled inversely with
// distance, so closer neighbors push harder. The sum is returned
// un-normalized; no qualifying neighbors yields the zero vector.
// Neighbors coincident with the agent are skipped, never divided by.
func Separate(pos geometry.Vector2D, neighbors []geometry.Vector2D) geometry.Vector2D {
	var push geometry.Vector2D
	for _, other := range neighbors {
		away := pos.Sub(other)
		distSqr := away.LenSqr()
		if distSqr < geometry.Epsilon {
			continue
		}
		// away/dist is the unit direction, one more /dist is the
		// inverse-distance weighting.
		push = push.Add(away.Mul(1 / distSqr))
	}
	return push
}

// Align returns the corrective acceleration that would match the agent's
// velocity to the average velocity of its neighbors, or the zero vector
// when there are none.
func Align(vel geometry.Vector2D, neighborVels []geometry.Vector2D) geometry.Vector2D {
	if len(neighborVels) == 0 {
		return geometry.Vector2D{}
	}
	var sum geometry.Vector2D
	for _, v := range neighborVels {
		sum = sum.Add(v)
	}
	avg := sum.Mul(1 / float64(len(neighborVels)))
	return avg.Sub(vel)
}

// Cohere returns the corrective acceleration toward the centroid of the
// neighbor positions, or the zero vector when there are none.
func Cohere(pos geometry.Vector2D, neighborPos []geometry.Vector2D) geometry.Vector2D {
	if len(neighborPos) == 0 {
		return geometry.Vector2D{}
	}
	var sum geometry.Vector2D
	for _, p := range neighborPos {
		sum = sum.Add(p)
	}
	centroid := sum.Mul(1 / float64(len(neighborPos)))
	return centroid.Sub(pos)
}

// Avoid returns a vector pointing directly away from the predator, scaled
// inversely with distance, when the predator lies within radius of the
// agent. Outside the radius, or with the predator sitting exactly on the
// agent, it returns the zero vector.
func Avoid(pos, predator geometry.Vector2D, radius float64) geometry.Vector2D {
	away := pos.Sub(predator)
	distSqr := away.LenSqr()
	if distSqr >= radius*radius || distSqr < geometry.Epsilon {
		return geometry.Vector2D{}
	}
	return away.Mul(1 / distSqr)
}
