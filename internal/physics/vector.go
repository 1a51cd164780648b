package physics

import "math"

// Epsilon is the near-zero threshold shared by every guard in the engine:
// normalization, friction impulses and resting-contact detection.
const Epsilon = 0.0001

// Vector2 is a 2D vector. All methods are pure and return new values;
// nothing mutates the receiver.
type Vector2 struct {
	X, Y float64
}

// Vec returns the vector (x, y).
func Vec(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

func (v Vector2) Add(w Vector2) Vector2 {
	return Vector2{X: v.X + w.X, Y: v.Y + w.Y}
}

func (v Vector2) Sub(w Vector2) Vector2 {
	return Vector2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Scale returns v multiplied by s.
func (v Vector2) Scale(s float64) Vector2 {
	return Vector2{X: v.X * s, Y: v.Y * s}
}

func (v Vector2) Neg() Vector2 {
	return Vector2{X: -v.X, Y: -v.Y}
}

func (v Vector2) Dot(w Vector2) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Cross returns the scalar z component of the 3D cross product.
func (v Vector2) Cross(w Vector2) float64 {
	return v.X*w.Y - v.Y*w.X
}

func (v Vector2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vector2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns a unit vector pointing along v. Vectors shorter than
// Epsilon are returned unchanged.
func (v Vector2) Normalize() Vector2 {
	l := v.Length()
	if l < Epsilon {
		return v
	}
	inv := 1.0 / l
	return Vector2{X: v.X * inv, Y: v.Y * inv}
}

// Angle returns the direction of v in radians.
func (v Vector2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Round rounds both components half away from zero.
func (v Vector2) Round() Vector2 {
	return Vector2{X: math.Round(v.X), Y: math.Round(v.Y)}
}

// IsFinite reports whether neither component is NaN or Inf.
func (v Vector2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
