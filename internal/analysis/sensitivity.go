package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/sim"
)

var ErrNoDynamicBody = errors.New("analysis: body index is not a dynamic body")

// SensitivityResult is the separation between a reference run and a run whose
// chosen body started perturbation units to the right.
type SensitivityResult struct {
	Separation []float64
	// Rate is the mean log growth of the separation per second. Positive
	// values mean small input changes are amplified.
	Rate float64
}

// Sensitivity runs cfg twice, once with body shifted horizontally by
// perturbation, and measures how the dynamic bodies drift apart.
func Sensitivity(ctx context.Context, cfg *config.Config, body int, perturbation float64) (*SensitivityResult, error) {
	if body < 0 || body >= len(cfg.Bodies) {
		return nil, fmt.Errorf("%w: %d", ErrNoDynamicBody, body)
	}

	ref, err := runQuiet(ctx, cfg)
	if err != nil {
		return nil, err
	}

	shifted := cfg.Clone()
	shifted.Bodies[body].X += perturbation
	pert, err := runQuiet(ctx, shifted)
	if err != nil {
		return nil, err
	}

	n := min(len(ref.Frames), len(pert.Frames))
	res := &SensitivityResult{Separation: make([]float64, n)}
	for i := 0; i < n; i++ {
		res.Separation[i] = separation(ref.Frames[i], pert.Frames[i])
	}

	if n == 0 || res.Separation[0] == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoDynamicBody, body)
	}

	d0 := math.Abs(perturbation)
	sumLog, count := 0.0, 0
	for i := 1; i < n; i++ {
		if sep := res.Separation[i]; sep > 0 && d0 > 0 {
			sumLog += math.Log(sep / d0)
			count++
		}
	}
	if count > 0 {
		res.Rate = sumLog / (float64(count) * cfg.Dt)
	}
	return res, nil
}

func runQuiet(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
	w, _, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	sc := sim.DefaultConfig()
	sc.Dt = cfg.Dt
	sc.Frames = cfg.Frames
	return sim.New(w).Run(ctx, sc)
}

// separation is the Euclidean distance between matching dynamic bodies of two
// frames built from the same scene.
func separation(a, b sim.Frame) float64 {
	sum := 0.0
	for i := range a.Bodies {
		if i >= len(b.Bodies) || a.Bodies[i].Static {
			continue
		}
		d := a.Bodies[i].Position().Sub(b.Bodies[i].Position())
		sum += d.LengthSquared()
	}
	return math.Sqrt(sum)
}
