package config

import "sort"

func ground(halfWidth float64) BodyConfig {
	return BodyConfig{Name: "ground", Shape: "box", X: 0, Y: 0, HalfWidth: halfWidth, HalfHeight: 20}
}

func world(gx, gy float64) WorldConfig {
	return WorldConfig{Gravity: VectorConfig{X: gx, Y: gy}, Substeps: 10, Iterations: 10}
}

var Presets = map[string]*Config{
	"drop": {
		Scene: "drop", Dt: 0.016, Frames: 100, World: world(0, 100),
		Bodies: []BodyConfig{
			{Name: "ground", Shape: "box", HalfWidth: 100, HalfHeight: 20},
			{Name: "box", Shape: "box", Y: -30, HalfWidth: 20, HalfHeight: 20, Mass: 1},
		},
	},
	"stack": {
		Scene: "stack", Dt: 0.016, Frames: 300, World: world(0, 100),
		Bodies: append([]BodyConfig{ground(200)}, column(5, 0, -36, 15, 31)...),
	},
	"pyramid": {
		Scene: "pyramid", Dt: 0.016, Frames: 400, World: world(0, 100),
		Bodies: append([]BodyConfig{ground(200)}, pyramid(4, 10)...),
	},
	"bounce": {
		Scene: "bounce", Dt: 0.016, Frames: 300, World: world(0, 100),
		Bodies: []BodyConfig{
			{Name: "ground", Shape: "box", HalfWidth: 200, HalfHeight: 20, Restitution: 0.8},
			{Name: "ball", Shape: "circle", Y: -150, Radius: 10, Mass: 1, Restitution: 0.8},
		},
	},
	"circles": {
		Scene: "circles", Dt: 0.016, Frames: 400, Seed: 7, World: world(0, 100),
		Bodies: append([]BodyConfig{ground(200)}, rain(12, 8)...),
	},
	"pool": {
		Scene: "pool", Dt: 0.016, Frames: 300, World: world(0, 0),
		Bodies: append(table(160, 80), rack(100)...),
	},
	"slide": {
		Scene: "slide", Dt: 0.016, Frames: 150, World: world(0, 100),
		Bodies: []BodyConfig{
			ground(300),
			{Name: "rough", Shape: "box", X: -200, Y: -39.9, HalfWidth: 20, HalfHeight: 20, Mass: 1, VX: 80},
			{Name: "smooth", Shape: "box", X: -100, Y: -39.9, HalfWidth: 20, HalfHeight: 20, Mass: 1, VX: 80, NoFriction: true},
		},
	},
}

// column stacks n boxes upward from y0, spaced by pitch.
func column(n int, x, y0, half, pitch float64) []BodyConfig {
	out := make([]BodyConfig, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, BodyConfig{
			Shape: "box", X: x, Y: y0 - float64(i)*pitch,
			HalfWidth: half, HalfHeight: half, Mass: 1,
		})
	}
	return out
}

func pyramid(base int, half float64) []BodyConfig {
	var out []BodyConfig
	size := 2*half + 1
	for row := 0; row < base; row++ {
		n := base - row
		x0 := -float64(n-1) * size / 2
		y := -20 - half - 1 - float64(row)*size
		for i := 0; i < n; i++ {
			out = append(out, BodyConfig{
				Shape: "box", X: x0 + float64(i)*size, Y: y,
				HalfWidth: half, HalfHeight: half, Mass: 1,
			})
		}
	}
	return out
}

func rain(n int, radius float64) []BodyConfig {
	out := make([]BodyConfig, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, BodyConfig{
			Shape: "circle", X: float64(i%4)*30 - 45, Y: -60 - float64(i/4)*30,
			Radius: radius, Density: 0.01, Restitution: 0.3, Jitter: 5,
		})
	}
	return out
}

// table returns four static cushions enclosing a w by h area.
func table(w, h float64) []BodyConfig {
	const t = 10
	return []BodyConfig{
		{Name: "top", Shape: "box", Y: -h - t, HalfWidth: w + 2*t, HalfHeight: t, Restitution: 1},
		{Name: "bottom", Shape: "box", Y: h + t, HalfWidth: w + 2*t, HalfHeight: t, Restitution: 1},
		{Name: "left", Shape: "box", X: -w - t, HalfWidth: t, HalfHeight: h, Restitution: 1},
		{Name: "right", Shape: "box", X: w + t, HalfWidth: t, HalfHeight: h, Restitution: 1},
	}
}

func rack(speed float64) []BodyConfig {
	out := []BodyConfig{
		{Name: "cue", Shape: "circle", X: -100, Radius: 6, Mass: 1, Restitution: 1, NoFriction: true, VX: speed},
	}
	for row := 0; row < 3; row++ {
		for i := 0; i <= row; i++ {
			out = append(out, BodyConfig{
				Shape: "circle", X: 40 + float64(row)*11, Y: float64(i)*13 - float64(row)*6.5,
				Radius: 6, Mass: 1, Restitution: 1, NoFriction: true,
			})
		}
	}
	return out
}

// GetPreset returns a copy of the named scene, or nil.
func GetPreset(scene string) *Config {
	cfg, ok := Presets[scene]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the scene names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
