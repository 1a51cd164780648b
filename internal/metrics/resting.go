package metrics

import (
	"github.com/san-kum/rigid2d/internal/physics"
)

// DefaultRestSpeed is the speed below which a body counts as resting.
const DefaultRestSpeed = 1.0

func isResting(b *physics.Body, speed float64) bool {
	return b.Velocity.LengthSquared() < speed*speed
}

// RestingRatio is the share of dynamic bodies at rest in the latest frame.
type RestingRatio struct {
	name  string
	speed float64
	ratio float64
}

func NewRestingRatio(speed float64) *RestingRatio {
	return &RestingRatio{name: "resting_ratio", speed: speed}
}

func (r *RestingRatio) Name() string { return r.name }

func (r *RestingRatio) Observe(w *physics.World, t float64) {
	dyn := w.Dynamics()
	if len(dyn) == 0 {
		r.ratio = 1
		return
	}
	n := 0
	for _, b := range dyn {
		if isResting(b, r.speed) {
			n++
		}
	}
	r.ratio = float64(n) / float64(len(dyn))
}

func (r *RestingRatio) Value() float64 { return r.ratio }
func (r *RestingRatio) Reset()         { r.ratio = 0 }

// SettleTime is the time from which every dynamic body stayed at rest until
// the latest frame, or -1 when the scene has not settled.
type SettleTime struct {
	name    string
	speed   float64
	since   float64
	settled bool
}

func NewSettleTime(speed float64) *SettleTime {
	return &SettleTime{name: "settle_time", speed: speed, since: -1}
}

func (s *SettleTime) Name() string { return s.name }

func (s *SettleTime) Observe(w *physics.World, t float64) {
	for _, b := range w.Dynamics() {
		if !isResting(b, s.speed) {
			s.settled = false
			s.since = -1
			return
		}
	}
	if !s.settled {
		s.settled = true
		s.since = t
	}
}

func (s *SettleTime) Value() float64 { return s.since }

func (s *SettleTime) Reset() {
	s.settled = false
	s.since = -1
}
