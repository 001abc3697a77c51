package geometry

import (
	"fmt"
	"math"
)

// Epsilon is the precision used for float64 comparisons and for deciding
// whether a vector is effectively zero.
const Epsilon = 1e-9

// Vector2D represents a 2D vector or point in cartesian space.
// Fields are public because they are fundamental data, not internal state,
// which also allows clean literal initialization: v := Vector2D{1, 2}
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// New creates a new Vector2D from cartesian components.
func New(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// NewPolar creates a new Vector2D from polar coordinates, theta in radians.
func NewPolar(radius, theta float64) Vector2D {
	x := radius * math.Cos(theta)
	y := radius * math.Sin(theta)
	if math.Abs(x) < Epsilon {
		x = 0
	}
	if math.Abs(y) < Epsilon {
		y = 0
	}
	return Vector2D{X: x, Y: y}
}

// String implements fmt.Stringer so vectors print cleanly in logs and tests.
func (v Vector2D) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

// ---------------------------------------------------------------------
// Arithmetic
// Value receivers returning new values: every operation is pure and the
// caller never observes aliasing.
// ---------------------------------------------------------------------

// Add returns the sum of the two vectors.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{v.X + other.X, v.Y + other.Y}
}

// Sub returns the vector from other to v.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{v.X - other.X, v.Y - other.Y}
}

// Mul scales the vector by a scalar.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{v.X * scalar, v.Y * scalar}
}

// Dot computes the dot product of the two vectors.
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// ---------------------------------------------------------------------
// Magnitude and normalization
// ---------------------------------------------------------------------

// LenSqr returns the squared magnitude. Use it for distance comparisons,
// it avoids the square root on hot paths.
func (v Vector2D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Len returns the magnitude of the vector.
func (v Vector2D) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns a unit vector in the same direction.
// A vector of effectively zero length normalizes to the zero vector,
// never a division fault.
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l < Epsilon {
		return Vector2D{}
	}
	return v.Mul(1 / l)
}

// ClampLen returns the vector scaled down to max magnitude when it exceeds
// max, unchanged otherwise. A non-positive max clamps to the zero vector.
func (v Vector2D) ClampLen(max float64) Vector2D {
	if max <= 0 {
		return Vector2D{}
	}
	if v.LenSqr() <= max*max {
		return v
	}
	return v.Normalize().Mul(max)
}

// ---------------------------------------------------------------------
// Geometric utilities
// ---------------------------------------------------------------------

// DistanceTo returns the Euclidean distance to another point.
func (v Vector2D) DistanceTo(other Vector2D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo returns the squared Euclidean distance to another point.
func (v Vector2D) DistanceSquaredTo(other Vector2D) float64 {
	return v.Sub(other).LenSqr()
}

// Angle returns the angle of the vector relative to the X-axis, in radians.
// Range: [-Pi, Pi]
func (v Vector2D) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Eq checks if two vectors are approximately equal using Epsilon,
// absorbing ordinary floating point noise.
func (v Vector2D) Eq(other Vector2D) bool {
	return math.Abs(v.X-other.X) <= Epsilon && math.Abs(v.Y-other.Y) <= Epsilon
}
