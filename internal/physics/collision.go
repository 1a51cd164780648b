package physics

import "math"

type overlapFunc func(a, b *Body) bool
type resolveFunc func(m *Manifold, a, b *Body) bool

// collisionHandler pairs an overlap test with the contact generator for one
// ordered shape pair. Inverted handlers are called with swapped operands and
// the resulting normal is negated.
type collisionHandler struct {
	test     overlapFunc
	resolve  resolveFunc
	inverted bool
}

// dispatch is indexed by [a.Kind][b.Kind].
var dispatch = [numShapeKinds][numShapeKinds]collisionHandler{
	KindBox: {
		KindBox:    {test: testBoxBox, resolve: resolveBoxBox},
		KindCircle: {test: testCircleBox, resolve: resolveCircleBox, inverted: true},
	},
	KindCircle: {
		KindBox:    {test: testCircleBox, resolve: resolveCircleBox},
		KindCircle: {test: testCircleCircle, resolve: resolveCircleCircle},
	},
}

// TestOverlap runs the cheap overlap test for the pair.
func TestOverlap(a, b *Body) bool {
	h := dispatch[a.Shape.Kind][b.Shape.Kind]
	if h.inverted {
		return h.test(b, a)
	}
	return h.test(a, b)
}

// resolveCollision fills m with the contact between a and b. On success the
// normal points from a toward b whatever the handler operand order was.
func resolveCollision(m *Manifold, a, b *Body) bool {
	h := dispatch[a.Shape.Kind][b.Shape.Kind]
	if !h.inverted {
		return h.resolve(m, a, b)
	}
	ok := h.resolve(m, b, a)
	if ok {
		m.normal = m.normal.Neg()
	}
	return ok
}

func boxBounds(b *Body) (min, max Vector2) {
	he := b.Shape.Box.HalfExtent
	return b.Position.Sub(he), b.Position.Add(he)
}

// Box / Box

func testBoxBox(a, b *Body) bool {
	amin, amax := boxBounds(a)
	bmin, bmax := boxBounds(b)
	if amax.X <= bmin.X || amin.X >= bmax.X {
		return false
	}
	if amax.Y <= bmin.Y || amin.Y >= bmax.Y {
		return false
	}
	return true
}

func resolveBoxBox(m *Manifold, a, b *Body) bool {
	n := a.Position.Sub(b.Position)
	ah, bh := a.Shape.Box.HalfExtent, b.Shape.Box.HalfExtent

	xOverlap := ah.X + bh.X - math.Abs(n.X)
	if xOverlap > 0 {
		yOverlap := ah.Y + bh.Y - math.Abs(n.Y)
		if yOverlap > 0 {
			amin, amax := boxBounds(a)
			bmin, bmax := boxBounds(b)

			// Axis of least penetration; x wins ties.
			if xOverlap <= yOverlap {
				m.normal = Vector2{X: -1}
				if n.X < 0 {
					m.normal.X = 1
				}
				m.penetration = xOverlap

				x := bmax.X
				if m.normal.X > 0 {
					x = bmin.X
				}
				m.contacts[0] = Vector2{X: x, Y: math.Max(bmin.Y, amin.Y)}
				m.contacts[1] = Vector2{X: x, Y: math.Min(bmax.Y, amax.Y)}
			} else {
				m.normal = Vector2{Y: -1}
				if n.Y < 0 {
					m.normal.Y = 1
				}
				m.penetration = yOverlap

				y := bmax.Y
				if m.normal.Y > 0 {
					y = bmin.Y
				}
				m.contacts[0] = Vector2{X: math.Max(bmin.X, amin.X), Y: y}
				m.contacts[1] = Vector2{X: math.Min(bmax.X, amax.X), Y: y}
			}
			m.contactCount = 2
			return true
		}
	}

	m.contactCount = 0
	return false
}

// Circle / Circle

func testCircleCircle(a, b *Body) bool {
	n := b.Position.Sub(a.Position)
	r := a.Shape.Circle.Radius + b.Shape.Circle.Radius
	return n.LengthSquared() < r*r
}

func resolveCircleCircle(m *Manifold, a, b *Body) bool {
	n := b.Position.Sub(a.Position)
	r := a.Shape.Circle.Radius + b.Shape.Circle.Radius
	if n.LengthSquared() >= r*r {
		m.contactCount = 0
		return false
	}

	dist := n.Length()
	m.contactCount = 1

	// Coincident centres: any direction separates them.
	if dist == 0 {
		m.penetration = a.Shape.Circle.Radius
		m.normal = Vector2{X: 1}
		m.contacts[0] = a.Position
		return true
	}

	m.penetration = r - dist
	m.normal = n.Scale(1 / dist)
	m.contacts[0] = m.normal.Scale(a.Shape.Circle.Radius).Add(a.Position)
	return true
}

// Circle / Box. The circle is always the first operand.

func testCircleBox(a, b *Body) bool {
	n := a.Position.Sub(b.Position)
	r := a.Shape.Circle.Radius
	he := b.Shape.Box.HalfExtent
	return r+he.X-math.Abs(n.X) > 0 && r+he.Y-math.Abs(n.Y) > 0
}

func resolveCircleBox(m *Manifold, a, b *Body) bool {
	d := a.Position.Sub(b.Position)
	he := b.Shape.Box.HalfExtent
	r := a.Shape.Circle.Radius

	clamped := Vector2{X: clamp(d.X, -he.X, he.X), Y: clamp(d.Y, -he.Y, he.Y)}

	if clamped != d {
		closest := b.Position.Add(clamped)
		toBox := closest.Sub(a.Position)
		distSq := toBox.LengthSquared()
		if distSq >= r*r {
			m.contactCount = 0
			return false
		}
		dist := math.Sqrt(distSq)
		m.normal = toBox.Scale(1 / dist)
		m.penetration = r - dist
		m.contacts[0] = closest
		m.contactCount = 1
		return true
	}

	// Centre inside the box: leave through the nearest face.
	var outward Vector2
	var depth float64
	closest := a.Position
	fx, fy := he.X-math.Abs(d.X), he.Y-math.Abs(d.Y)
	if fx <= fy {
		outward = Vector2{X: sign(d.X)}
		depth = fx
		closest.X = b.Position.X + outward.X*he.X
	} else {
		outward = Vector2{Y: sign(d.Y)}
		depth = fy
		closest.Y = b.Position.Y + outward.Y*he.Y
	}
	m.normal = outward.Neg()
	m.penetration = r + depth
	m.contacts[0] = closest
	m.contactCount = 1
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
