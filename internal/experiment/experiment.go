package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/physics"
	"github.com/san-kum/rigid2d/internal/sim"
)

// Experiment is one scene built from a config and run for a fixed number of
// frames.
type Experiment struct {
	cfg       *config.Config
	world     *physics.World
	bodies    []*physics.Body
	simulator *sim.Simulator
}

func New(cfg *config.Config) (*Experiment, error) {
	w, bodies, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build scene %q: %w", cfg.Scene, err)
	}
	return &Experiment{
		cfg:       cfg,
		world:     w,
		bodies:    bodies,
		simulator: sim.New(w),
	}, nil
}

func (e *Experiment) Setup(metrics []sim.Metric) {
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.SimConfig())
}

// SimConfig returns the run parameters taken from the scene config.
func (e *Experiment) SimConfig() sim.Config {
	c := sim.DefaultConfig()
	c.Dt = e.cfg.Dt
	c.Frames = e.cfg.Frames
	return c
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) World() *physics.World  { return e.world }

// Bodies returns the built bodies in config order.
func (e *Experiment) Bodies() []*physics.Body { return e.bodies }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// RunScene builds cfg, attaches the default metrics and runs it.
func RunScene(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
	exp, err := New(cfg)
	if err != nil {
		return nil, err
	}
	exp.Setup(NewRegistry().DefaultMetrics())
	return exp.Run(ctx)
}
