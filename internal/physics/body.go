package physics

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Default material for newly built bodies.
const (
	DefaultStaticFriction  = 0.4
	DefaultKineticFriction = 0.2
)

// Body is the physical state shared by every shape. The caller owns the
// value; a World only holds a reference while the body is registered and
// mutates it in place while stepping.
type Body struct {
	// ID is stamped by the World on registration when still zero.
	ID uint64

	// Inverse mass and inertia. Zero encodes infinite mass or inertia.
	InverseMass    float64
	InverseInertia float64

	Position      Vector2
	PixelPosition Vector2
	Velocity      Vector2

	// Force accumulates ApplyForce calls until the end of the next Update.
	Force Vector2

	Orientation     float64
	AngularVelocity float64
	Torque          float64

	Restitution     float64
	StaticFriction  float64
	KineticFriction float64
	HasFriction     bool

	// Group and Layer are opaque tags for the host application.
	Group int
	Layer int

	Shape Shape

	// User is an opaque back reference never touched by the engine.
	User any
}

func newBody(shape Shape, position Vector2, mass, inertia float64) (*Body, error) {
	if mass < 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidMass, mass)
	}
	if inertia < 0 || math.IsNaN(inertia) || math.IsInf(inertia, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidInertia, inertia)
	}
	b := &Body{
		InverseMass:     invert(mass),
		InverseInertia:  invert(inertia),
		Position:        position,
		StaticFriction:  DefaultStaticFriction,
		KineticFriction: DefaultKineticFriction,
		HasFriction:     true,
		Shape:           shape,
	}
	b.RefreshBounds()
	return b, nil
}

func (b *Body) Kind() ShapeKind { return b.Shape.Kind }

// IsStatic reports whether the body has infinite mass.
func (b *Body) IsStatic() bool { return b.InverseMass == 0 }

// Mass returns the body mass, or 0 for a static body.
func (b *Body) Mass() float64 { return invert(b.InverseMass) }

// Inertia returns the rotational inertia, or 0 for a non-rotating body.
func (b *Body) Inertia() float64 { return invert(b.InverseInertia) }

// ComputeMass derives the mass terms from the shape area and density.
func (b *Body) ComputeMass(density float64) error {
	if density < 0 || math.IsNaN(density) || math.IsInf(density, 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidDensity, density)
	}
	b.computeShapeMass(density)
	return nil
}

// ApplyImpulse changes the velocities by an impulse acting at contactOffset,
// the contact point relative to the body position.
func (b *Body) ApplyImpulse(impulse, contactOffset Vector2) {
	b.Velocity = b.Velocity.Add(impulse.Scale(b.InverseMass))
	b.AngularVelocity += b.InverseInertia * contactOffset.Cross(impulse)
}

// ApplyForce accumulates f until forces are cleared at the end of an update.
func (b *Body) ApplyForce(f Vector2) {
	b.Force = b.Force.Add(f)
}

func (b *Body) clearForces() {
	b.Force = Vector2{}
}

// integrateForces applies half a step of acceleration.
func (b *Body) integrateForces(dt float64, gravity Vector2) {
	if b.InverseMass == 0 {
		return
	}
	half := dt / 2.0
	b.Velocity = b.Velocity.Add(b.Force.Scale(b.InverseMass).Add(gravity).Scale(half))
	b.AngularVelocity += b.Torque * b.InverseInertia * half
}

// integrateVelocity moves the body and applies the second half step of
// acceleration.
func (b *Body) integrateVelocity(dt float64, gravity Vector2) {
	if b.InverseMass == 0 {
		return
	}
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
	b.Orientation += b.AngularVelocity * dt
	b.integrateForces(dt, gravity)
}

// RefreshBounds recomputes derived geometry and the rounded pixel position.
func (b *Body) RefreshBounds() {
	b.refreshShapeBounds()
	b.PixelPosition = b.Position.Round()
}

// CheckFinite returns a *BodyError wrapping ErrNonFinite when any kinematic
// field holds NaN or Inf.
func (b *Body) CheckFinite() error {
	switch {
	case !b.Position.IsFinite():
		return &BodyError{ID: b.ID, Field: "position", Wrapped: ErrNonFinite}
	case !b.Velocity.IsFinite():
		return &BodyError{ID: b.ID, Field: "velocity", Wrapped: ErrNonFinite}
	case math.IsNaN(b.Orientation) || math.IsInf(b.Orientation, 0):
		return &BodyError{ID: b.ID, Field: "orientation", Wrapped: ErrNonFinite}
	case math.IsNaN(b.AngularVelocity) || math.IsInf(b.AngularVelocity, 0):
		return &BodyError{ID: b.ID, Field: "angular_velocity", Wrapped: ErrNonFinite}
	}
	return nil
}

// IDGenerator issues monotonically increasing body ids. It is safe to share
// one generator between worlds that step on different goroutines.
type IDGenerator struct {
	last atomic.Uint64
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next returns the next id. The first id is 1; 0 means "unassigned".
func (g *IDGenerator) Next() uint64 {
	return g.last.Add(1)
}
