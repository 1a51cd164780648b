package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/rigid2d/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scene != DefaultScene {
		t.Errorf("expected scene %s, got %s", DefaultScene, cfg.Scene)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Frames <= 0 {
		t.Error("frames should be positive")
	}
	if cfg.World.Substeps != physics.DefaultSubsteps {
		t.Errorf("expected %d substeps, got %d", physics.DefaultSubsteps, cfg.World.Substeps)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("drop")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(cfg.Bodies))
	}
	if cfg.Bodies[1].Y != -30 {
		t.Errorf("expected y -30, got %f", cfg.Bodies[1].Y)
	}
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	cfg := GetPreset("drop")
	cfg.Bodies[1].Y = 500
	cfg.Frames = 1

	again := GetPreset("drop")
	if again.Bodies[1].Y != -30 || again.Frames != 100 {
		t.Error("modifying a preset copy leaked into the registry")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent scene")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			w, bodies, err := cfg.Build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if len(bodies) != len(cfg.Bodies) {
				t.Errorf("expected %d bodies, got %d", len(cfg.Bodies), len(bodies))
			}
			if len(w.Statics())+len(w.Dynamics()) != len(bodies) {
				t.Error("world registries do not match built bodies")
			}
			if len(w.Dynamics()) == 0 {
				t.Error("scene has nothing to simulate")
			}
		})
	}
}

func TestBuild_BodyProperties(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bodies = []BodyConfig{
		{Name: "floor", Shape: "box", HalfWidth: 50, HalfHeight: 5},
		{Name: "ball", Shape: "circle", X: 1, Y: -10, Radius: 2, Density: 1,
			Restitution: 0.5, StaticFriction: Float(0.9), NoFriction: true, VX: 3, Group: 2},
	}

	w, bodies, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}
	floor, ball := bodies[0], bodies[1]

	if !floor.IsStatic() {
		t.Error("floor should be static")
	}
	if ball.Kind() != physics.KindCircle || ball.Shape.Circle.Radius != 2 {
		t.Errorf("unexpected ball shape: %+v", ball.Shape)
	}
	if ball.IsStatic() {
		t.Error("density should give the ball a mass")
	}
	if ball.Restitution != 0.5 || ball.StaticFriction != 0.9 || ball.KineticFriction != physics.DefaultKineticFriction {
		t.Errorf("unexpected material: %+v", ball)
	}
	if ball.HasFriction || ball.Velocity != physics.Vec(3, 0) || ball.Group != 2 {
		t.Errorf("unexpected state: %+v", ball)
	}
	if ball.User != "ball" {
		t.Errorf("expected user tag ball, got %v", ball.User)
	}
	if w.Gravity() != physics.DefaultGravity {
		t.Errorf("expected default gravity, got %v", w.Gravity())
	}
}

func TestBuild_JitterIsSeeded(t *testing.T) {
	cfg := GetPreset("circles")

	_, a, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}
	_, b, _ := cfg.Build()
	for i := range a {
		if a[i].Position != b[i].Position {
			t.Fatalf("body %d differs between builds with the same seed", i)
		}
	}

	cfg.Seed++
	_, c, _ := cfg.Build()
	same := true
	for i := range a {
		if a[i].Position != c[i].Position {
			same = false
		}
	}
	if same {
		t.Error("different seed produced identical positions")
	}
}

func TestValidate(t *testing.T) {
	box := BodyConfig{Shape: "box", HalfWidth: 1, HalfHeight: 1, Mass: 1}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"zero dt", func(c *Config) { c.Dt = 0 }, ErrInvalidDt},
		{"zero frames", func(c *Config) { c.Frames = 0 }, ErrInvalidFrames},
		{"no bodies", func(c *Config) { c.Bodies = nil }, ErrNoBodies},
		{"unknown shape", func(c *Config) { c.Bodies[0].Shape = "triangle" }, ErrUnknownShape},
		{"flat box", func(c *Config) { c.Bodies[0].HalfHeight = 0 }, physics.ErrInvalidExtent},
		{"negative mass", func(c *Config) { c.Bodies[0].Mass = -1 }, physics.ErrInvalidMass},
		{"negative density", func(c *Config) { c.Bodies[0].Density = -1 }, physics.ErrInvalidDensity},
		{"zero radius", func(c *Config) { c.Bodies[0].Shape = "circle" }, physics.ErrInvalidRadius},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Bodies = []BodyConfig{box}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	cfg := GetPreset("bounce")

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Scene != "bounce" || loaded.Frames != cfg.Frames {
		t.Errorf("unexpected scene: %+v", loaded)
	}
	if len(loaded.Bodies) != 2 || loaded.Bodies[1].Restitution != 0.8 {
		t.Errorf("bodies not restored: %+v", loaded.Bodies)
	}
}

func TestLoad_KeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	raw := "bodies:\n  - shape: circle\n    radius: 1\n    mass: 1\n"
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dt != DefaultDt || cfg.Frames != DefaultFrames {
		t.Errorf("defaults lost: dt=%v frames=%d", cfg.Dt, cfg.Frames)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("partial config invalid: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("frames: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSetParam(t *testing.T) {
	cfg := GetPreset("circles")

	for _, tt := range []struct {
		name  string
		value float64
		check func(*Config) bool
	}{
		{"dt", 0.01, func(c *Config) bool { return c.Dt == 0.01 }},
		{"gravity", 30, func(c *Config) bool { return c.World.Gravity.Y == 30 && c.World.Gravity.X == 0 }},
		{"substeps", 4, func(c *Config) bool { return c.World.Substeps == 4 }},
		{"iterations", 6.7, func(c *Config) bool { return c.World.Iterations == 6 }},
		{"restitution", 0.9, func(c *Config) bool { return c.Bodies[0].Restitution == 0.9 && c.Bodies[5].Restitution == 0.9 }},
		{"static_friction", 0.7, func(c *Config) bool { return *c.Bodies[3].StaticFriction == 0.7 }},
		{"kinetic_friction", 0.3, func(c *Config) bool { return *c.Bodies[3].KineticFriction == 0.3 }},
		{"density", 0.5, func(c *Config) bool { return c.Bodies[0].Density == 0 && c.Bodies[1].Density == 0.5 }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if err := cfg.SetParam(tt.name, tt.value); err != nil {
				t.Fatal(err)
			}
			if !tt.check(cfg) {
				t.Errorf("%s not applied", tt.name)
			}
		})
	}

	if err := cfg.SetParam("mass", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if len(Params) != 8 {
		t.Errorf("expected 8 params, got %d", len(Params))
	}
}

func TestParam_ReadsBack(t *testing.T) {
	cfg := GetPreset("bounce")
	for _, name := range Params {
		if err := cfg.SetParam(name, 0.25); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"dt", "gravity", "restitution", "static_friction", "kinetic_friction"} {
		got, err := cfg.Param(name)
		if err != nil {
			t.Fatalf("Param(%s): %v", name, err)
		}
		if got != 0.25 {
			t.Errorf("Param(%s) = %v, want 0.25", name, got)
		}
	}
	if got, _ := cfg.Param("substeps"); got != 0 {
		t.Errorf("substeps = %v, want 0 after int truncation", got)
	}

	if _, err := cfg.Param("mass"); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if _, err := DefaultConfig().Param("restitution"); !errors.Is(err, ErrNoBodies) {
		t.Errorf("expected ErrNoBodies, got %v", err)
	}
}

func TestBuild_ZeroFriction(t *testing.T) {
	cfg := GetPreset("drop")
	if err := cfg.SetParam("static_friction", 0); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetParam("kinetic_friction", 0); err != nil {
		t.Fatal(err)
	}

	_, bodies, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range bodies {
		if b.StaticFriction != 0 || b.KineticFriction != 0 {
			t.Errorf("%v: friction = %v/%v, want 0/0", b.User, b.StaticFriction, b.KineticFriction)
		}
	}
	if v, _ := cfg.Param("static_friction"); v != 0 {
		t.Errorf("Param(static_friction) = %v, want 0", v)
	}
}

func TestBuild_FrictionDefaultsWhenUnset(t *testing.T) {
	_, bodies, err := GetPreset("drop").Build()
	if err != nil {
		t.Fatal(err)
	}
	box := bodies[1]
	if box.StaticFriction != physics.DefaultStaticFriction || box.KineticFriction != physics.DefaultKineticFriction {
		t.Errorf("friction = %v/%v, want defaults", box.StaticFriction, box.KineticFriction)
	}
	if v, _ := GetPreset("drop").Param("kinetic_friction"); v != physics.DefaultKineticFriction {
		t.Errorf("Param(kinetic_friction) = %v, want default", v)
	}
}

func TestZeroFriction_YAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	cfg := GetPreset("drop")
	cfg.Bodies[1].StaticFriction = Float(0)
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if sf := loaded.Bodies[1].StaticFriction; sf == nil || *sf != 0 {
		t.Errorf("static_friction = %v, want explicit 0", sf)
	}
	if loaded.Bodies[1].KineticFriction != nil {
		t.Error("unset kinetic_friction became explicit")
	}
}

func TestValidate_Material(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		value   float64
		wantErr bool
	}{
		{"restitution zero", "restitution", 0, false},
		{"restitution one", "restitution", 1, false},
		{"restitution above one", "restitution", 1.7, true},
		{"restitution negative", "restitution", -0.1, true},
		{"restitution NaN", "restitution", math.NaN(), true},
		{"static friction zero", "static_friction", 0, false},
		{"static friction negative", "static_friction", -0.5, true},
		{"kinetic friction negative", "kinetic_friction", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetPreset("drop")
			if err := cfg.SetParam(tt.param, tt.value); err != nil {
				t.Fatal(err)
			}
			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMaterial) {
					t.Errorf("Validate() = %v, want ErrInvalidMaterial", err)
				}
				if _, _, err := cfg.Build(); !errors.Is(err, ErrInvalidMaterial) {
					t.Errorf("Build() = %v, want ErrInvalidMaterial", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}
