package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/experiment"
)

var ErrNoCandidate = errors.New("optim: no parameter combination could be evaluated")

// Objective scores a finished run; lower is better.
type Objective func(metrics map[string]float64, cfg *config.Config) float64

// MetricObjective minimises a single named metric.
func MetricObjective(name string) Objective {
	return func(m map[string]float64, _ *config.Config) float64 {
		v, ok := m[name]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

// CostObjective adds the solver work (substeps times iterations) weighted by
// cost to a metric, so cheaper settings win when quality is similar.
func CostObjective(name string, cost float64) Objective {
	metric := MetricObjective(name)
	return func(m map[string]float64, cfg *config.Config) float64 {
		work := float64(cfg.World.Substeps * cfg.World.Iterations)
		return metric(m, cfg) + cost*work
	}
}

// Trial is one evaluated parameter combination.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	trials     []Trial
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trials returns every combination evaluated by the last Search.
func (g *GridSearch) Trials() []Trial { return g.trials }

// Search runs base once per combination of parameter values, applying each
// with config.SetParam, and returns the combination with the lowest score.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}
	g.trials = g.trials[:0]

	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), base, objective, &best, &bestParams); err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		return nil, best, ErrNoCandidate
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		score, err := g.evaluate(ctx, current, base, objective)
		g.trials = append(g.trials, Trial{Params: copyParams(current), Score: score, Err: err})
		if err != nil {
			return nil
		}
		if score < *best {
			*best = score
			*bestParams = copyParams(current)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := copyParams(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) evaluate(ctx context.Context, params map[string]float64, base *config.Config, objective Objective) (float64, error) {
	cfg := base.Clone()
	for _, name := range g.paramNames {
		if err := cfg.SetParam(name, params[name]); err != nil {
			return 0, err
		}
	}

	result, err := experiment.RunScene(ctx, cfg)
	if err != nil {
		return 0, err
	}
	if len(result.Errors) > 0 {
		return 0, result.Errors[0]
	}
	return objective(result.Metrics, cfg), nil
}

func copyParams(p map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Linspace returns n evenly spaced values in [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
