package physics

import "math"

const (
	DefaultSubsteps   = 10
	DefaultIterations = 10
)

// DefaultGravity points down the screen in pixel units per second squared.
var DefaultGravity = Vector2{X: 0, Y: 50}

// World owns the body registries and the manifold pool and advances the
// simulation. It is not safe for concurrent use.
type World struct {
	gravity    Vector2
	substeps   int
	iterations int
	interp     float64

	statics  []*Body
	dynamics []*Body

	// contacts is a grow-only pool; only [0, contactCount) is valid for the
	// current sub-step.
	contacts     []*Manifold
	contactCount int

	ids *IDGenerator

	time   float64
	frames uint64
}

// NewWorld returns an empty world. Non-positive substeps or iterations fall
// back to the defaults.
func NewWorld(gravity Vector2, substeps, iterations int) *World {
	if substeps <= 0 {
		substeps = DefaultSubsteps
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &World{
		gravity:    gravity,
		substeps:   substeps,
		iterations: iterations,
		interp:     1.0 / float64(substeps),
		statics:    make([]*Body, 0),
		dynamics:   make([]*Body, 0),
		contacts:   make([]*Manifold, 0),
		ids:        NewIDGenerator(),
	}
}

// SetIDGenerator replaces the generator used to stamp ids on registration.
func (w *World) SetIDGenerator(g *IDGenerator) {
	if g != nil {
		w.ids = g
	}
}

func (w *World) Gravity() Vector2     { return w.gravity }
func (w *World) SetGravity(g Vector2) { w.gravity = g }
func (w *World) Substeps() int        { return w.substeps }
func (w *World) Iterations() int      { return w.iterations }

// Time returns the simulated seconds advanced so far.
func (w *World) Time() float64 { return w.time }

// Frames returns the number of completed Update calls.
func (w *World) Frames() uint64 { return w.frames }

// Statics returns the static registry in registration order.
func (w *World) Statics() []*Body { return append([]*Body(nil), w.statics...) }

// Dynamics returns the dynamic registry in registration order.
func (w *World) Dynamics() []*Body { return append([]*Body(nil), w.dynamics...) }

// Bodies returns statics followed by dynamics.
func (w *World) Bodies() []*Body {
	out := make([]*Body, 0, len(w.statics)+len(w.dynamics))
	out = append(out, w.statics...)
	return append(out, w.dynamics...)
}

// ContactCount returns the number of active manifolds from the last sub-step.
func (w *World) ContactCount() int { return w.contactCount }

// Contacts returns the active manifolds from the last sub-step. The slice
// and the manifolds are reused by the next step.
func (w *World) Contacts() []*Manifold { return w.contacts[:w.contactCount] }

// AddBody registers b as static or dynamic depending on its inverse mass at
// this moment. It returns false if b is already registered.
func (w *World) AddBody(b *Body) bool {
	if b == nil || w.ContainsBody(b) {
		return false
	}
	if b.ID == 0 {
		b.ID = w.ids.Next()
	}
	b.RefreshBounds()
	if b.InverseMass != 0 {
		w.dynamics = append(w.dynamics, b)
	} else {
		w.statics = append(w.statics, b)
	}
	return true
}

// RemoveBody unregisters b. It returns false if b was not registered.
func (w *World) RemoveBody(b *Body) bool {
	if i := indexOf(w.statics, b); i >= 0 {
		w.statics = append(w.statics[:i], w.statics[i+1:]...)
		return true
	}
	if i := indexOf(w.dynamics, b); i >= 0 {
		w.dynamics = append(w.dynamics[:i], w.dynamics[i+1:]...)
		return true
	}
	return false
}

func (w *World) ContainsBody(b *Body) bool {
	return indexOf(w.statics, b) >= 0 || indexOf(w.dynamics, b) >= 0
}

// Update advances the simulation by dt seconds in fixed sub-steps, then
// clears the accumulated forces. Non-positive or non-finite dt is ignored.
func (w *World) Update(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	sub := dt * w.interp
	for i := 0; i < w.substeps; i++ {
		w.step(sub)
	}
	for _, b := range w.dynamics {
		b.clearForces()
	}
	w.time += dt
	w.frames++
}

func (w *World) step(dt float64) {
	w.findContacts()

	for _, b := range w.dynamics {
		b.integrateForces(dt, w.gravity)
	}

	active := w.contacts[:w.contactCount]
	for _, m := range active {
		m.setup(dt, w.gravity)
	}

	for i := 0; i < w.iterations; i++ {
		for _, m := range active {
			m.resolveAllContacts()
		}
	}

	for _, b := range w.dynamics {
		b.integrateVelocity(dt, w.gravity)
	}

	for _, m := range active {
		m.correctPositions()
	}

	for _, b := range w.dynamics {
		b.RefreshBounds()
	}
}

// findContacts rebuilds the active manifold set. Each dynamic body is tested
// against every static, then against the dynamics registered after it.
func (w *World) findContacts() {
	w.contactCount = 0
	for i, a := range w.dynamics {
		for _, s := range w.statics {
			w.checkPair(a, s)
		}
		for _, b := range w.dynamics[i+1:] {
			w.checkPair(a, b)
		}
	}
}

func (w *World) checkPair(a, b *Body) {
	if w.contactCount == len(w.contacts) {
		w.contacts = append(w.contacts, &Manifold{})
	}
	if w.contacts[w.contactCount].initializeWithBodies(a, b) {
		w.contactCount++
	}
}

func indexOf(list []*Body, b *Body) int {
	for i, x := range list {
		if x == b {
			return i
		}
	}
	return -1
}
