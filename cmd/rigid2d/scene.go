package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/optim"
	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/spf13/cobra"
)

// loadScene resolves the scene from --config or the preset argument, then
// applies every scene flag the user set explicitly.
func loadScene(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown scene: %s (available: %v)", args[0], config.ListPresets())
		}
	default:
		cfg = config.GetPreset(config.DefaultScene)
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("substeps") {
		cfg.World.Substeps = substeps
	}
	if flags.Changed("iterations") {
		cfg.World.Iterations = iterations
	}
	if flags.Changed("gravity") {
		cfg.World.Gravity.Y = gravity
	}
	for _, o := range overrides {
		name, value, err := parseAssign(o)
		if err != nil {
			return nil, err
		}
		if err := cfg.SetParam(name, value); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseAssign(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("expected name=value, got %q", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(name), v, nil
}

// parseGrid reads name=lo:hi:n into a parameter name and n evenly spaced
// values.
func parseGrid(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("expected name=lo:hi:n, got %q", s)
	}
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("expected name=lo:hi:n, got %q", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, err
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, err
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", nil, err
	}
	return name, optim.Linspace(lo, hi, n), nil
}

// selectBody finds a body in a recorded frame by name or index. An empty
// selector picks the first dynamic body.
func selectBody(fr sim.Frame, sel string) (sim.BodyState, int, error) {
	if sel == "" {
		for i, b := range fr.Bodies {
			if !b.Static {
				return b, i, nil
			}
		}
		return sim.BodyState{}, -1, fmt.Errorf("no dynamic body in frame %d", fr.Index)
	}
	if i, err := strconv.Atoi(sel); err == nil {
		if i < 0 || i >= len(fr.Bodies) {
			return sim.BodyState{}, -1, fmt.Errorf("body index %d out of range (0..%d)", i, len(fr.Bodies)-1)
		}
		return fr.Bodies[i], i, nil
	}
	for i, b := range fr.Bodies {
		if b.Name == sel {
			return b, i, nil
		}
	}
	return sim.BodyState{}, -1, fmt.Errorf("no body named %q", sel)
}

// firstDynamic returns the config index of the first body with mass.
func firstDynamic(cfg *config.Config, sel string) (int, error) {
	if sel != "" {
		return strconv.Atoi(sel)
	}
	for i, b := range cfg.Bodies {
		if b.Mass > 0 || b.Density > 0 {
			return i, nil
		}
	}
	return -1, fmt.Errorf("scene %s has no dynamic body", cfg.Scene)
}
