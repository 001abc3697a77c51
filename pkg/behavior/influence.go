package behavior

import "github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/geometry"

// Influence identifies which steering rule contributed the most to an
// agent's acceleration in a given tick. It drives the rendering color and
// has no effect on the simulation itself.
type Influence uint8

const (
	None Influence = iota
	Separation
	Alignment
	Cohesion
	Avoidance
)

// String implements fmt.Stringer.
func (i Influence) String() string {
	switch i {
	case Separation:
		return "separation"
	case Alignment:
		return "alignment"
	case Cohesion:
		return "cohesion"
	case Avoidance:
		return "avoidance"
	default:
		return "none"
	}
}

// Dominant returns the influence whose weighted contribution has the
// largest magnitude. Ties resolve by survival priority:
// Avoidance > Separation > Alignment > Cohesion.
// When all four contributions are exactly zero it returns None.
func Dominant(sep, align, coh, avoid geometry.Vector2D) Influence {
	best := None
	bestSqr := 0.0

	// Walk the candidates in precedence order; a later candidate must be
	// strictly larger to displace an earlier one, so equal magnitudes
	// resolve to the higher-priority influence.
	candidates := []struct {
		tag   Influence
		force geometry.Vector2D
	}{
		{Avoidance, avoid},
		{Separation, sep},
		{Alignment, align},
		{Cohesion, coh},
	}
	for _, c := range candidates {
		if sqr := c.force.LenSqr(); sqr > bestSqr {
			best = c.tag
			bestSqr = sqr
		}
	}
	return best
}
