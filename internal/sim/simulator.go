package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/rigid2d/internal/physics"
)

// Simulator drives a world frame by frame and records what happens.
type Simulator struct {
	world     *physics.World
	metrics   []Metric
	observers []Observer
}

func New(w *physics.World) *Simulator {
	return &Simulator{
		world:     w,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) World() *physics.World  { return s.world }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	every := cfg.RecordEvery
	if every <= 0 {
		every = 1
	}

	result := &Result{
		Frames:  make([]Frame, 0, cfg.Frames/every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result.Frames = append(result.Frames, Snapshot(s.world, 0))

	for i := 1; i <= cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		s.world.Update(cfg.Dt)
		result.StepsTaken++
		t := s.world.Time()

		for _, m := range s.metrics {
			m.Observe(s.world, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(s.world, i, t)
		}

		if cfg.ValidateState {
			if err := s.checkFinite(); err != nil {
				result.Errors = append(result.Errors, &StepError{Frame: i, Time: t, Wrapped: err})
				result.Frames = append(result.Frames, Snapshot(s.world, i))
				break
			}
		}

		if i%every == 0 || i == cfg.Frames {
			result.Frames = append(result.Frames, Snapshot(s.world, i))
		}
	}

	s.collect(result)
	return result, nil
}

// RunWithCallback steps until the frame budget is spent, the context is done
// or the callback returns false. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(w *physics.World, frame int) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	for i := 1; i <= cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.world.Update(cfg.Dt)

		if cfg.ValidateState {
			if err := s.checkFinite(); err != nil {
				return &StepError{Frame: i, Time: s.world.Time(), Wrapped: err}
			}
		}
		if !callback(s.world, i) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) checkFinite() error {
	for _, b := range s.world.Dynamics() {
		if err := b.CheckFinite(); err != nil {
			return fmt.Errorf("%w: %w", ErrUnstable, err)
		}
	}
	return nil
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalidConfig, cfg.Frames)
	}
	return nil
}
