package metrics

import (
	"math"

	"github.com/san-kum/rigid2d/internal/physics"
)

// KineticEnergy returns the total translational and rotational kinetic
// energy of the dynamic bodies.
func KineticEnergy(w *physics.World) float64 {
	total := 0.0
	for _, b := range w.Dynamics() {
		total += bodyKinetic(b)
	}
	return total
}

// PotentialEnergy is measured against the origin along the gravity vector.
func PotentialEnergy(w *physics.World) float64 {
	g := w.Gravity()
	total := 0.0
	for _, b := range w.Dynamics() {
		total -= b.Mass() * g.Dot(b.Position)
	}
	return total
}

func bodyKinetic(b *physics.Body) float64 {
	ke := 0.5 * b.Mass() * b.Velocity.LengthSquared()
	if b.InverseInertia != 0 {
		ke += 0.5 * b.Inertia() * b.AngularVelocity * b.AngularVelocity
	}
	return ke
}

// Energy is the mean kinetic energy over the observed frames.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(w *physics.World, t float64) {
	e.totalEnergy += KineticEnergy(w)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyGain tracks the largest increase of mechanical energy over the first
// observation. Contacts only remove energy, so a positive value means the
// solver injected some.
type EnergyGain struct {
	name          string
	initialEnergy float64
	maxGain       float64
	samples       int
}

func NewEnergyGain() *EnergyGain {
	return &EnergyGain{name: "energy_gain"}
}

func (e *EnergyGain) Name() string { return e.name }

func (e *EnergyGain) Observe(w *physics.World, t float64) {
	energy := KineticEnergy(w) + PotentialEnergy(w)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	e.maxGain = math.Max(e.maxGain, energy-e.initialEnergy)
}

func (e *EnergyGain) Value() float64 {
	return e.maxGain
}

func (e *EnergyGain) Reset() {
	e.initialEnergy = 0
	e.maxGain = 0
	e.samples = 0
}
