package physics

import (
	"fmt"
	"math"
)

// ShapeKind selects the geometry of a body and its row and column in the
// collision dispatch table.
type ShapeKind int

const (
	KindBox ShapeKind = iota
	KindCircle

	numShapeKinds
)

func (k ShapeKind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindCircle:
		return "circle"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// BoxShape is an axis aligned box centred on the body position. Min and Max
// are derived and recomputed on every bounds refresh.
type BoxShape struct {
	HalfExtent Vector2
	Min        Vector2
	Max        Vector2
}

// CircleShape is a circle centred on the body position.
type CircleShape struct {
	Radius float64
}

// Shape is the geometry payload of a body. Only the field matching Kind is
// meaningful.
type Shape struct {
	Kind   ShapeKind
	Box    BoxShape
	Circle CircleShape
}

// NewBox builds a box body. A mass of 0 makes the box static; an inertia of
// 0 makes it non-rotating.
func NewBox(position, halfExtent Vector2, mass, inertia float64) (*Body, error) {
	if !(halfExtent.X > 0) || !(halfExtent.Y > 0) || math.IsInf(halfExtent.X, 0) || math.IsInf(halfExtent.Y, 0) {
		return nil, fmt.Errorf("%w: got (%g, %g)", ErrInvalidExtent, halfExtent.X, halfExtent.Y)
	}
	shape := Shape{Kind: KindBox, Box: BoxShape{HalfExtent: halfExtent}}
	return newBody(shape, position, mass, inertia)
}

// NewCircle builds a circle body. A mass of 0 makes the circle static.
func NewCircle(position Vector2, radius, mass, inertia float64) (*Body, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidRadius, radius)
	}
	shape := Shape{Kind: KindCircle, Circle: CircleShape{Radius: radius}}
	return newBody(shape, position, mass, inertia)
}

// MustBox is like NewBox but panics on invalid input.
func MustBox(position, halfExtent Vector2, mass, inertia float64) *Body {
	b, err := NewBox(position, halfExtent, mass, inertia)
	if err != nil {
		panic(err)
	}
	return b
}

// MustCircle is like NewCircle but panics on invalid input.
func MustCircle(position Vector2, radius, mass, inertia float64) *Body {
	b, err := NewCircle(position, radius, mass, inertia)
	if err != nil {
		panic(err)
	}
	return b
}

// computeShapeMass derives mass terms from density. Boxes leave the
// rotational inertia alone. Circles use m*r*r, not the solid disk m*r*r/2.
func (b *Body) computeShapeMass(density float64) {
	switch b.Shape.Kind {
	case KindBox:
		he := b.Shape.Box.HalfExtent
		m := density * (2 * he.X) * (2 * he.Y)
		b.InverseMass = invert(m)
	case KindCircle:
		r := b.Shape.Circle.Radius
		m := math.Pi * r * r * density
		i := m * r * r
		b.InverseMass = invert(m)
		b.InverseInertia = invert(i)
	}
}

func (b *Body) refreshShapeBounds() {
	if b.Shape.Kind == KindBox {
		he := b.Shape.Box.HalfExtent
		b.Shape.Box.Min = b.Position.Sub(he)
		b.Shape.Box.Max = b.Position.Add(he)
	}
}

// ContainsBox reports whether the box fully encloses other. Both bodies must
// be boxes; anything else reports false. Bounds come from the current
// positions, not the cached Min and Max.
func (b *Body) ContainsBox(other *Body) bool {
	if b.Shape.Kind != KindBox || other.Shape.Kind != KindBox {
		return false
	}
	smin, smax := boxBounds(b)
	omin, omax := boxBounds(other)
	return smin.X <= omin.X && smax.X >= omax.X &&
		smin.Y <= omin.Y && smax.Y >= omax.Y
}

// ContainsPoint reports whether p lies inside the shape, boundary included.
func (b *Body) ContainsPoint(p Vector2) bool {
	switch b.Shape.Kind {
	case KindBox:
		lo, hi := boxBounds(b)
		return lo.X <= p.X && hi.X >= p.X && lo.Y <= p.Y && hi.Y >= p.Y
	case KindCircle:
		r := b.Shape.Circle.Radius
		return p.Sub(b.Position).LengthSquared() <= r*r
	}
	return false
}

func invert(v float64) float64 {
	if v == 0 {
		return 0
	}
	return 1.0 / v
}
