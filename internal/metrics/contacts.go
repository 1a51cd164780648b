package metrics

import (
	"math"

	"github.com/san-kum/rigid2d/internal/physics"
)

// ContactCount is the mean number of active manifolds per frame.
type ContactCount struct {
	name    string
	sum     float64
	samples int
}

func NewContactCount() *ContactCount {
	return &ContactCount{
		name: "contacts",
	}
}

func (c *ContactCount) Name() string {
	return c.name
}

func (c *ContactCount) Observe(w *physics.World, t float64) {
	c.sum += float64(w.ContactCount())
	c.samples++
}

func (c *ContactCount) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ContactCount) Reset() {
	c.sum = 0
	c.samples = 0
}

// MaxPenetration is the deepest contact seen over the run.
type MaxPenetration struct {
	name string
	max  float64
}

func NewMaxPenetration() *MaxPenetration {
	return &MaxPenetration{name: "max_penetration"}
}

func (m *MaxPenetration) Name() string { return m.name }

func (m *MaxPenetration) Observe(w *physics.World, t float64) {
	for _, c := range w.Contacts() {
		m.max = math.Max(m.max, c.Penetration())
	}
}

func (m *MaxPenetration) Value() float64 { return m.max }
func (m *MaxPenetration) Reset()         { m.max = 0 }
