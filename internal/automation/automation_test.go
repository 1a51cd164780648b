package automation

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/experiment"
	"github.com/san-kum/rigid2d/internal/storage"
)

const scenarioYAML = `name: smoke
description: two short runs
steps:
  - scene: drop
    frames: 20
  - scene: bounce
    frames: 30
    params:
      restitution: 0.5
    save_as: bounce_half
`

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if s.Name != "smoke" || len(s.Steps) != 2 {
		t.Fatalf("unexpected scenario: %+v", s)
	}
	if s.Steps[1].Params["restitution"] != 0.5 || s.Steps[1].SaveAs != "bounce_half" {
		t.Errorf("step 2 = %+v", s.Steps[1])
	}

	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestScenarioStep_Resolve(t *testing.T) {
	reg := experiment.NewRegistry()

	tests := []struct {
		name    string
		step    ScenarioStep
		wantErr bool
		check   func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "preset with overrides",
			step: ScenarioStep{Scene: "drop", Frames: 7, Dt: 0.01, Seed: 3, Params: map[string]float64{"gravity": 10}},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Frames != 7 || cfg.Dt != 0.01 || cfg.Seed != 3 || cfg.World.Gravity.Y != 10 {
					t.Errorf("overrides not applied: %+v", cfg)
				}
			},
		},
		{
			name: "zero values keep the scene",
			step: ScenarioStep{Scene: "stack"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Frames != config.Presets["stack"].Frames {
					t.Errorf("frames = %d", cfg.Frames)
				}
			},
		},
		{
			name: "save_as renames the scene",
			step: ScenarioStep{Scene: "drop", SaveAs: "mine"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Scene != "mine" {
					t.Errorf("scene = %q", cfg.Scene)
				}
			},
		},
		{name: "unknown scene", step: ScenarioStep{Scene: "nope"}, wantErr: true},
		{name: "unknown param", step: ScenarioStep{Scene: "drop", Params: map[string]float64{"mass": 1}}, wantErr: true},
		{name: "empty", step: ScenarioStep{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.step.Resolve(reg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			tt.check(t, cfg)
		})
	}

	if _, err := (ScenarioStep{}).Resolve(reg); !errors.Is(err, ErrEmptyStep) {
		t.Errorf("err = %v, want ErrEmptyStep", err)
	}
}

func TestScenarioStep_ResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	cfg := config.GetPreset("slide")
	cfg.Frames = 12
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := ScenarioStep{Scene: "drop", Config: path}.Resolve(experiment.NewRegistry())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Scene != "slide" || got.Frames != 12 {
		t.Errorf("config file not preferred: scene=%s frames=%d", got.Scene, got.Frames)
	}
}

func TestRunScenario(t *testing.T) {
	store := storage.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	scenario := &Scenario{
		Name: "smoke",
		Steps: []ScenarioStep{
			{Scene: "drop", Frames: 20},
			{Scene: "bounce", Frames: 30, SaveAs: "bounce_saved"},
		},
	}

	var out strings.Builder
	results, err := RunScenario(context.Background(), scenario, experiment.NewRegistry(), store, &out)
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].RunID != "" {
		t.Error("unsaved step has a run id")
	}
	if results[1].RunID == "" {
		t.Fatal("saved step has no run id")
	}
	if len(results[1].Result.Frames) != 31 {
		t.Errorf("frames = %d, want 31", len(results[1].Result.Frames))
	}

	meta, err := store.Load(results[1].RunID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Scene != "bounce_saved" {
		t.Errorf("stored scene = %q", meta.Scene)
	}
	if !strings.Contains(out.String(), "step 2/2") {
		t.Errorf("progress output = %q", out.String())
	}
}

func TestRunScenario_StopsOnBadStep(t *testing.T) {
	scenario := &Scenario{Steps: []ScenarioStep{
		{Scene: "drop", Frames: 5},
		{Scene: "nope"},
		{Scene: "drop", Frames: 5},
	}}
	results, err := RunScenario(context.Background(), scenario, experiment.NewRegistry(), nil, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "step 2") {
		t.Fatalf("err = %v, want step 2 failure", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results before the failure, want 1", len(results))
	}
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		Scene:     "bounce",
		ParamName: "restitution",
		ParamMin:  0,
		ParamMax:  1,
		NumSteps:  3,
		Frames:    150,
	}

	results, err := RunSweep(context.Background(), sweep, experiment.NewRegistry(), io.Discard)
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	for i, want := range []float64{0, 0.5, 1} {
		if results[i].ParamValue != want {
			t.Errorf("result %d param = %v, want %v", i, results[i].ParamValue, want)
		}
		if results[i].MaxEnergy < results[i].MinEnergy {
			t.Errorf("result %d energy range inverted", i)
		}
		if _, ok := results[i].Metrics["energy"]; !ok {
			t.Errorf("result %d missing energy metric", i)
		}
	}
	if results[0].Metrics["energy"] >= results[2].Metrics["energy"] {
		t.Errorf("inelastic energy %v not below elastic %v",
			results[0].Metrics["energy"], results[2].Metrics["energy"])
	}
}

func TestRunSweep_UnknownParam(t *testing.T) {
	sweep := &ParameterSweep{Scene: "drop", ParamName: "mass", ParamMin: 1, ParamMax: 2, NumSteps: 2}
	if _, err := RunSweep(context.Background(), sweep, experiment.NewRegistry(), io.Discard); !errors.Is(err, config.ErrUnknownParam) {
		t.Errorf("err = %v, want ErrUnknownParam", err)
	}
}

func TestRunMonteCarlo(t *testing.T) {
	mc := &MonteCarloConfig{
		Scene:        "drop",
		Perturbation: 2,
		NumTrials:    4,
		Frames:       60,
		Seed:         11,
	}

	results, err := RunMonteCarlo(context.Background(), mc, experiment.NewRegistry(), io.Discard)
	if err != nil {
		t.Fatalf("RunMonteCarlo: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	stable, unstable := MonteCarloStats(results)
	if stable != 4 || unstable != 0 {
		t.Errorf("stable/unstable = %d/%d, want 4/0", stable, unstable)
	}
	for i, r := range results {
		if r.Seed != 11+int64(i) || r.TrialID != i {
			t.Errorf("trial %d: seed=%d id=%d", i, r.Seed, r.TrialID)
		}
		if r.Final.Index != 60 {
			t.Errorf("trial %d final frame = %d", i, r.Final.Index)
		}
	}

	again, _ := RunMonteCarlo(context.Background(), mc, experiment.NewRegistry(), io.Discard)
	for i := range results {
		if results[i].Final.Bodies[1].X != again[i].Final.Bodies[1].X {
			t.Errorf("trial %d not reproducible", i)
		}
	}
}

func TestRunMonteCarlo_TightBound(t *testing.T) {
	mc := &MonteCarloConfig{Scene: "drop", NumTrials: 2, Frames: 10, Seed: 1, Bound: 5}
	results, err := RunMonteCarlo(context.Background(), mc, experiment.NewRegistry(), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if stable, _ := MonteCarloStats(results); stable != 0 {
		t.Errorf("stable = %d, want 0 with a bound inside the scene", stable)
	}
}
