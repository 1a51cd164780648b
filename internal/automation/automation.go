package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/experiment"
	"github.com/san-kum/rigid2d/internal/metrics"
	"github.com/san-kum/rigid2d/internal/physics"
	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/storage"
)

var ErrEmptyStep = errors.New("automation: step needs a scene or a config file")

// Scenario defines a scripted sequence of scene runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. Scene names a preset; Config points to a scene
// file and wins when both are set. Zero values keep the scene's settings.
type ScenarioStep struct {
	Scene  string             `yaml:"scene"`
	Config string             `yaml:"config"`
	Frames int                `yaml:"frames"`
	Dt     float64            `yaml:"dt"`
	Seed   int64              `yaml:"seed"`
	Params map[string]float64 `yaml:"params"`
	SaveAs string             `yaml:"save_as"`
}

// StepResult pairs a run with the stored run id, if it was saved.
type StepResult struct {
	Step   ScenarioStep
	Result *sim.Result
	RunID  string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Resolve builds the scene config for the step.
func (s ScenarioStep) Resolve(registry *experiment.Registry) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case s.Config != "":
		cfg, err = config.Load(s.Config)
	case s.Scene != "":
		cfg, err = registry.GetScene(s.Scene)
	default:
		err = ErrEmptyStep
	}
	if err != nil {
		return nil, err
	}

	if s.Frames > 0 {
		cfg.Frames = s.Frames
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	for k, v := range s.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	if s.SaveAs != "" {
		cfg.Scene = s.SaveAs
	}
	return cfg, nil
}

// RunScenario executes all steps in a scenario. Steps with save_as are
// written to store when it is not nil. Progress goes to out.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store, out io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve(registry)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Fprintf(out, "Running step %d/%d: %s\n", i+1, len(scenario.Steps), cfg.Scene)

		exp, err := experiment.New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		exp.Setup(registry.DefaultMetrics())

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if step.SaveAs != "" && store != nil {
			if sr.RunID, err = store.Save(cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep runs one scene across a range of values of one parameter
type ParameterSweep struct {
	Scene     string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Frames    int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Final      sim.Frame
	MaxEnergy  float64
	MinEnergy  float64
	Metrics    map[string]float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, out io.Writer) ([]SweepResult, error) {
	base, err := registry.GetScene(sweep.Scene)
	if err != nil {
		return nil, err
	}
	if sweep.Frames > 0 {
		base.Frames = sweep.Frames
	}

	steps := sweep.NumSteps
	if steps < 2 {
		steps = 2
	}
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(steps-1)
	results := make([]SweepResult, 0, steps)

	for i := 0; i < steps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := base.Clone()
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp, err := experiment.New(cfg)
		if err != nil {
			return nil, err
		}
		exp.Setup(registry.DefaultMetrics())

		energy := &energyRange{min: math.Inf(1), max: math.Inf(-1)}
		exp.GetSimulator().AddObserver(energy)

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Final:      result.Final(),
			MaxEnergy:  energy.max,
			MinEnergy:  energy.min,
			Metrics:    result.Metrics,
		})

		fmt.Fprintf(out, "Sweep %d/%d: %s=%.4f\n", i+1, steps, sweep.ParamName, paramVal)
	}

	return results, nil
}

type energyRange struct{ min, max float64 }

func (e *energyRange) OnStep(w *physics.World, frame int, t float64) {
	ke := metrics.KineticEnergy(w)
	e.min = math.Min(e.min, ke)
	e.max = math.Max(e.max, ke)
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Scene        string
	Perturbation float64
	NumTrials    int
	Frames       int
	Seed         int64
	// Bound is the distance from the origin beyond which a body counts as
	// escaped. Zero means 1e6.
	Bound float64
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID int
	Seed    int64
	Final   sim.Frame
	Stable  bool // no NaN and every body within bounds
}

// RunMonteCarlo runs perturbed copies of a scene in parallel. Each trial
// shifts every dynamic body by up to Perturbation along both axes.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, registry *experiment.Registry, out io.Writer) ([]MonteCarloResult, error) {
	base, err := registry.GetScene(mc.Scene)
	if err != nil {
		return nil, err
	}
	if mc.Frames > 0 {
		base.Frames = mc.Frames
	}
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	bound := mc.Bound
	if bound <= 0 {
		bound = 1e6
	}

	factory := func(s int64) (*physics.World, error) {
		rng := rand.New(rand.NewSource(s))
		w, _, err := base.Build()
		if err != nil {
			return nil, err
		}
		for _, b := range w.Dynamics() {
			b.Position.X += (rng.Float64() - 0.5) * 2 * mc.Perturbation
			b.Position.Y += (rng.Float64() - 0.5) * 2 * mc.Perturbation
			b.RefreshBounds()
		}
		return w, nil
	}

	sc := sim.DefaultConfig()
	sc.Dt = base.Dt
	sc.Frames = base.Frames
	sc.RecordEvery = base.Frames

	runs, err := sim.NewEnsemble(factory, registry.DefaultMetrics, mc.NumTrials, seed).Run(ctx, sc)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, 0, len(runs))
	for trial, r := range runs {
		final := r.Final()
		stable := len(r.Errors) == 0
		for _, b := range final.Bodies {
			if math.Abs(b.X) > bound || math.Abs(b.Y) > bound {
				stable = false
				break
			}
		}
		results = append(results, MonteCarloResult{
			TrialID: trial,
			Seed:    seed + int64(trial),
			Final:   final,
			Stable:  stable,
		})
	}
	fmt.Fprintf(out, "Monte Carlo: %d/%d trials complete\n", len(results), mc.NumTrials)

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
