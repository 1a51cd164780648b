package main

import (
	"path/filepath"
	"testing"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/spf13/cobra"
)

func newSceneCmd(t *testing.T, set map[string]string) *cobra.Command {
	t.Helper()
	configFile, overrides = "", nil
	cmd := &cobra.Command{Use: "test"}
	sceneFlags(cmd)
	for name, v := range set {
		if err := cmd.Flags().Set(name, v); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	return cmd
}

func TestLoadScene_Preset(t *testing.T) {
	cfg, err := loadScene(newSceneCmd(t, nil), []string{"bounce"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene != "bounce" || cfg.Frames != 300 {
		t.Errorf("scene/frames = %s/%d", cfg.Scene, cfg.Frames)
	}
	if cfg.World.Gravity.Y != 100 || cfg.World.Substeps != 10 {
		t.Errorf("unset flags changed the world: %+v", cfg.World)
	}
}

func TestLoadScene_Default(t *testing.T) {
	cfg, err := loadScene(newSceneCmd(t, nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene != config.DefaultScene {
		t.Errorf("scene = %s, want %s", cfg.Scene, config.DefaultScene)
	}
}

func TestLoadScene_Unknown(t *testing.T) {
	if _, err := loadScene(newSceneCmd(t, nil), []string{"nope"}); err == nil {
		t.Error("expected error for unknown scene")
	}
}

func TestLoadScene_FlagsOverride(t *testing.T) {
	cmd := newSceneCmd(t, map[string]string{
		"frames":   "42",
		"gravity":  "50",
		"substeps": "3",
		"set":      "restitution=0.25",
	})
	cfg, err := loadScene(cmd, []string{"bounce"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Frames != 42 || cfg.World.Gravity.Y != 50 || cfg.World.Substeps != 3 {
		t.Errorf("flags not applied: frames=%d world=%+v", cfg.Frames, cfg.World)
	}
	if cfg.Bodies[1].Restitution != 0.25 {
		t.Errorf("restitution = %v, want 0.25", cfg.Bodies[1].Restitution)
	}
}

func TestLoadScene_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	src := config.GetPreset("drop")
	src.Scene = "custom"
	if err := config.Save(path, src); err != nil {
		t.Fatal(err)
	}

	cmd := newSceneCmd(t, map[string]string{"config": path})
	cfg, err := loadScene(cmd, []string{"bounce"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene != "custom" || len(cfg.Bodies) != 2 {
		t.Errorf("loaded %s with %d bodies", cfg.Scene, len(cfg.Bodies))
	}
}

func TestLoadScene_InvalidOverride(t *testing.T) {
	cmd := newSceneCmd(t, map[string]string{"set": "restitution"})
	if _, err := loadScene(cmd, []string{"bounce"}); err == nil {
		t.Error("expected error for malformed --set")
	}

	cmd = newSceneCmd(t, map[string]string{"dt": "-1"})
	if _, err := loadScene(cmd, []string{"bounce"}); err == nil {
		t.Error("expected validation error for negative dt")
	}
}

func TestParseAssign(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		value   float64
		wantErr bool
	}{
		{"gravity=50", "gravity", 50, false},
		{" dt = 0.01 ", "dt", 0.01, false},
		{"gravity", "", 0, true},
		{"gravity=abc", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, v, err := parseAssign(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (name != tt.name || v != tt.value) {
				t.Errorf("got %s=%v, want %s=%v", name, v, tt.name, tt.value)
			}
		})
	}
}

func TestParseGrid(t *testing.T) {
	name, values, err := parseGrid("iterations=2:10:5")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 4, 6, 8, 10}
	if name != "iterations" || len(values) != len(want) {
		t.Fatalf("got %s %v", name, values)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("values[%d] = %v, want %v", i, values[i], want[i])
		}
	}

	for _, bad := range []string{"iterations", "iterations=1:2", "iterations=a:2:3", "iterations=1:2:x"} {
		if _, _, err := parseGrid(bad); err == nil {
			t.Errorf("parseGrid(%q) succeeded", bad)
		}
	}
}

func TestSelectBody(t *testing.T) {
	fr := sim.Frame{Bodies: []sim.BodyState{
		{ID: 1, Name: "ground", Static: true},
		{ID: 2, Name: "ball"},
		{ID: 3, Name: "box"},
	}}

	tests := []struct {
		sel     string
		wantID  uint64
		wantErr bool
	}{
		{"", 2, false},
		{"0", 1, false},
		{"box", 3, false},
		{"7", 0, true},
		{"missing", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			b, _, err := selectBody(fr, tt.sel)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && b.ID != tt.wantID {
				t.Errorf("ID = %d, want %d", b.ID, tt.wantID)
			}
		})
	}

	if _, _, err := selectBody(sim.Frame{Bodies: fr.Bodies[:1]}, ""); err == nil {
		t.Error("expected error when every body is static")
	}
}

func TestFirstDynamic(t *testing.T) {
	i, err := firstDynamic(config.GetPreset("circles"), "")
	if err != nil || i != 1 {
		t.Errorf("firstDynamic = %d, %v; want 1", i, err)
	}
	if i, err := firstDynamic(config.GetPreset("circles"), "4"); err != nil || i != 4 {
		t.Errorf("explicit index = %d, %v", i, err)
	}

	cfg := config.GetPreset("drop")
	cfg.Bodies = cfg.Bodies[:1]
	if _, err := firstDynamic(cfg, ""); err == nil {
		t.Error("expected error for a static-only scene")
	}
}
