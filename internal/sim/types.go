package sim

import (
	"fmt"

	"github.com/san-kum/rigid2d/internal/physics"
)

// BodyState is a recorded snapshot of one body.
type BodyState struct {
	ID              uint64
	Name            string
	Kind            physics.ShapeKind
	Static          bool
	X, Y            float64
	VX, VY          float64
	Orientation     float64
	AngularVelocity float64
	HalfWidth       float64
	HalfHeight      float64
	Radius          float64
}

func (b BodyState) Position() physics.Vector2 { return physics.Vec(b.X, b.Y) }
func (b BodyState) Velocity() physics.Vector2 { return physics.Vec(b.VX, b.VY) }

// Frame is the world state after Index updates.
type Frame struct {
	Index    int
	Time     float64
	Contacts int
	Bodies   []BodyState
}

// Body returns the state of the body with the given id.
func (f Frame) Body(id uint64) (BodyState, bool) {
	for _, b := range f.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodyState{}, false
}

type Metric interface {
	Name() string
	Observe(w *physics.World, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(w *physics.World, frame int, t float64)
}

type Config struct {
	Dt     float64
	Frames int

	// RecordEvery keeps one frame in N. The first and last frames are always
	// kept.
	RecordEvery int

	// ValidateState stops the run at the first non-finite body.
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.016,
		Frames:        300,
		RecordEvery:   1,
		ValidateState: true,
	}
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	Errors     []error
	StepsTaken int
}

// Final returns the last recorded frame.
func (r *Result) Final() Frame {
	if len(r.Frames) == 0 {
		return Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}

// Times returns the simulated time of every recorded frame.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		out[i] = f.Time
	}
	return out
}

// Track returns the recorded states of one body, skipping frames where it
// was not registered.
func (r *Result) Track(id uint64) []BodyState {
	out := make([]BodyState, 0, len(r.Frames))
	for _, f := range r.Frames {
		if b, ok := f.Body(id); ok {
			out = append(out, b)
		}
	}
	return out
}

// Snapshot captures every registered body, statics first.
func Snapshot(w *physics.World, index int) Frame {
	bodies := w.Bodies()
	f := Frame{
		Index:    index,
		Time:     w.Time(),
		Contacts: w.ContactCount(),
		Bodies:   make([]BodyState, len(bodies)),
	}
	for i, b := range bodies {
		f.Bodies[i] = captureBody(b)
	}
	return f
}

func captureBody(b *physics.Body) BodyState {
	s := BodyState{
		ID:              b.ID,
		Kind:            b.Kind(),
		Static:          b.IsStatic(),
		X:               b.Position.X,
		Y:               b.Position.Y,
		VX:              b.Velocity.X,
		VY:              b.Velocity.Y,
		Orientation:     b.Orientation,
		AngularVelocity: b.AngularVelocity,
	}
	if name, ok := b.User.(string); ok && name != "" {
		s.Name = name
	} else {
		s.Name = fmt.Sprintf("%s-%d", b.Kind(), b.ID)
	}
	switch b.Kind() {
	case physics.KindBox:
		s.HalfWidth = b.Shape.Box.HalfExtent.X
		s.HalfHeight = b.Shape.Box.HalfExtent.Y
	case physics.KindCircle:
		s.Radius = b.Shape.Circle.Radius
	}
	return s
}
