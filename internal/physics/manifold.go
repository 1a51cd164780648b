package physics

import "math"

// Positional correction tuning.
const (
	// Slop is the penetration depth tolerated without correction.
	Slop = 0.02
	// Percent is the share of the remaining penetration removed per sub-step.
	Percent = 0.8
)

// Manifold is the contact between two bodies for the current sub-step and
// the solver state for it. A manifold references its bodies but does not own
// them.
type Manifold struct {
	a, b *Body

	// normal points from a toward b.
	normal      Vector2
	penetration float64

	contacts     [2]Vector2
	contactCount int

	restitution     float64
	staticFriction  float64
	kineticFriction float64
}

func (m *Manifold) A() *Body             { return m.a }
func (m *Manifold) B() *Body             { return m.b }
func (m *Manifold) Normal() Vector2      { return m.normal }
func (m *Manifold) Penetration() float64 { return m.penetration }
func (m *Manifold) Restitution() float64 { return m.restitution }

// Contacts returns the valid contact points.
func (m *Manifold) Contacts() []Vector2 {
	return m.contacts[:m.contactCount]
}

// initializeWithBodies binds the pair and runs the narrow phase. It reports
// whether the bodies are in contact.
func (m *Manifold) initializeWithBodies(a, b *Body) bool {
	m.a, m.b = a, b
	if !TestOverlap(a, b) {
		m.contactCount = 0
		return false
	}
	return resolveCollision(m, a, b)
}

// setup combines the pair material and drops restitution for resting
// contacts, whose closing speed is within one sub-step of gravity.
func (m *Manifold) setup(dt float64, gravity Vector2) {
	a, b := m.a, m.b
	m.restitution = math.Min(a.Restitution, b.Restitution)
	m.staticFriction = math.Sqrt(a.StaticFriction * b.StaticFriction)
	m.kineticFriction = math.Sqrt(a.KineticFriction * b.KineticFriction)

	step := dt * gravity.Length()
	threshold := step*step + Epsilon
	for i := 0; i < m.contactCount; i++ {
		rv := m.relativeVelocity(m.contacts[i])
		if rv.LengthSquared() < threshold {
			m.restitution = 0
			break
		}
	}
}

func (m *Manifold) resolveAllContacts() {
	for i := 0; i < m.contactCount; i++ {
		m.resolveContact(m.contacts[i])
	}
}

func (m *Manifold) resolveContact(contact Vector2) {
	a, b := m.a, m.b

	rv := m.relativeVelocity(contact)
	velAlongNormal := rv.Dot(m.normal)

	// Separating already.
	if velAlongNormal > 0 {
		return
	}

	ra := contact.Sub(a.Position)
	rb := contact.Sub(b.Position)
	raCrossN := ra.Cross(m.normal)
	rbCrossN := rb.Cross(m.normal)
	invMassSum := a.InverseMass + b.InverseMass +
		raCrossN*raCrossN*a.InverseInertia +
		rbCrossN*rbCrossN*b.InverseInertia
	if invMassSum == 0 {
		return
	}

	count := float64(m.contactCount)
	j := -(1.0 + m.restitution) * velAlongNormal
	j /= invMassSum
	j /= count

	impulse := m.normal.Scale(j)
	a.ApplyImpulse(impulse.Neg(), ra)
	b.ApplyImpulse(impulse, rb)

	// Friction needs both bodies to have it, whatever the pair order.
	if a.HasFriction && b.HasFriction {
		m.applyFriction(contact, ra, rb, j, invMassSum)
	}
}

// applyFriction reads the relative velocity again, after the normal impulse
// changed it, and applies a Coulomb friction impulse along the tangent.
func (m *Manifold) applyFriction(contact, ra, rb Vector2, j, invMassSum float64) {
	rv := m.relativeVelocity(contact)
	tangent := rv.Sub(m.normal.Scale(rv.Dot(m.normal))).Normalize()

	jt := -rv.Dot(tangent)
	jt /= invMassSum
	jt /= float64(m.contactCount)

	if math.Abs(jt) < Epsilon {
		return
	}

	var frictionImpulse Vector2
	if math.Abs(jt) < j*m.staticFriction {
		frictionImpulse = tangent.Scale(jt)
	} else {
		frictionImpulse = tangent.Scale(-j * m.kineticFriction)
	}

	m.a.ApplyImpulse(frictionImpulse.Neg(), ra)
	m.b.ApplyImpulse(frictionImpulse, rb)
}

// correctPositions pushes the bodies apart along the normal in proportion
// to their inverse masses. Velocities are left untouched.
func (m *Manifold) correctPositions() {
	a, b := m.a, m.b
	invMassSum := a.InverseMass + b.InverseMass
	if invMassSum == 0 {
		return
	}
	mag := math.Max(m.penetration-Slop, 0) / invMassSum
	correction := m.normal.Scale(mag * Percent)

	a.Position = a.Position.Sub(correction.Scale(a.InverseMass))
	b.Position = b.Position.Add(correction.Scale(b.InverseMass))
}

// relativeVelocity is the velocity of b relative to a at contact, including
// the rotational terms.
func (m *Manifold) relativeVelocity(contact Vector2) Vector2 {
	a, b := m.a, m.b
	ra := contact.Sub(a.Position)
	rb := contact.Sub(b.Position)
	va := a.Velocity.Add(Vector2{X: -a.AngularVelocity * ra.Y, Y: a.AngularVelocity * ra.X})
	vb := b.Velocity.Add(Vector2{X: -b.AngularVelocity * rb.Y, Y: b.AngularVelocity * rb.X})
	return vb.Sub(va)
}
