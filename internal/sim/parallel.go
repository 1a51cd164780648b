package sim

import (
	"context"
	"sync"

	"github.com/san-kum/rigid2d/internal/physics"
)

// WorldFactory builds an independent world for one ensemble member.
type WorldFactory func(seed int64) (*physics.World, error)

// Ensemble runs independent worlds in parallel, one goroutine per member.
// Each member gets its own world and its own metrics.
type Ensemble struct {
	factory   WorldFactory
	metrics   func() []Metric
	numRuns   int
	seedStart int64
}

func NewEnsemble(factory WorldFactory, metrics func() []Metric, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, metrics: metrics, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			w, err := e.factory(e.seedStart + int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}

			s := New(w)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
