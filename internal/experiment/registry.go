package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/metrics"
	"github.com/san-kum/rigid2d/internal/physics"
	"github.com/san-kum/rigid2d/internal/sim"
)

type Registry struct {
	metrics map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func() sim.Metric),
	}

	r.metrics["energy"] = func() sim.Metric { return metrics.NewEnergy() }
	r.metrics["energy_gain"] = func() sim.Metric { return metrics.NewEnergyGain() }
	r.metrics["contacts"] = func() sim.Metric { return metrics.NewContactCount() }
	r.metrics["max_penetration"] = func() sim.Metric { return metrics.NewMaxPenetration() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability(4 * physics.Slop) }
	r.metrics["resting_ratio"] = func() sim.Metric { return metrics.NewRestingRatio(metrics.DefaultRestSpeed) }
	r.metrics["settle_time"] = func() sim.Metric { return metrics.NewSettleTime(metrics.DefaultRestSpeed) }

	return r
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}

func (r *Registry) GetScene(name string) (*config.Config, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	return cfg, nil
}

func (r *Registry) ListScenes() []string {
	return config.ListPresets()
}
