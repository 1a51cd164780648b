package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigid2d/internal/physics"
)

const (
	DefaultDt     = 0.016
	DefaultFrames = 300
	DefaultScene  = "drop"
)

var (
	ErrInvalidDt       = errors.New("config: dt must be positive")
	ErrInvalidFrames   = errors.New("config: frames must be positive")
	ErrUnknownShape    = errors.New("config: unknown shape")
	ErrNoBodies        = errors.New("config: scene has no bodies")
	ErrInvalidMaterial = errors.New("config: restitution must be in [0, 1] and friction non-negative")
)

type Config struct {
	Scene  string       `yaml:"scene"`
	Dt     float64      `yaml:"dt"`
	Frames int          `yaml:"frames"`
	Seed   int64        `yaml:"seed"`
	World  WorldConfig  `yaml:"world"`
	Bodies []BodyConfig `yaml:"bodies"`
}

type VectorConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v VectorConfig) Vector() physics.Vector2 { return physics.Vec(v.X, v.Y) }

type WorldConfig struct {
	Gravity    VectorConfig `yaml:"gravity"`
	Substeps   int          `yaml:"substeps"`
	Iterations int          `yaml:"iterations"`
}

// BodyConfig describes one body. When Density is set the mass terms are
// derived from the shape area and Mass and Inertia are ignored. Jitter adds a
// seeded random horizontal offset in [-Jitter, Jitter]. Nil friction
// coefficients keep the engine defaults.
type BodyConfig struct {
	Name            string   `yaml:"name,omitempty"`
	Shape           string   `yaml:"shape"`
	X               float64  `yaml:"x"`
	Y               float64  `yaml:"y"`
	HalfWidth       float64  `yaml:"half_width,omitempty"`
	HalfHeight      float64  `yaml:"half_height,omitempty"`
	Radius          float64  `yaml:"radius,omitempty"`
	Mass            float64  `yaml:"mass"`
	Inertia         float64  `yaml:"inertia,omitempty"`
	Density         float64  `yaml:"density,omitempty"`
	Restitution     float64  `yaml:"restitution,omitempty"`
	StaticFriction  *float64 `yaml:"static_friction,omitempty"`
	KineticFriction *float64 `yaml:"kinetic_friction,omitempty"`
	NoFriction      bool     `yaml:"no_friction,omitempty"`
	VX              float64  `yaml:"vx,omitempty"`
	VY              float64  `yaml:"vy,omitempty"`
	AngularVelocity float64  `yaml:"angular_velocity,omitempty"`
	Jitter          float64  `yaml:"jitter,omitempty"`
	Group           int      `yaml:"group,omitempty"`
	Layer           int      `yaml:"layer,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:  DefaultScene,
		Dt:     DefaultDt,
		Frames: DefaultFrames,
		World: WorldConfig{
			Gravity:    VectorConfig{X: physics.DefaultGravity.X, Y: physics.DefaultGravity.Y},
			Substeps:   physics.DefaultSubsteps,
			Iterations: physics.DefaultIterations,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run parameters and every body description without
// building anything.
func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidDt, c.Dt)
	}
	if c.Frames <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidFrames, c.Frames)
	}
	if len(c.Bodies) == 0 {
		return ErrNoBodies
	}
	for i := range c.Bodies {
		if _, err := c.Bodies[i].build(nil); err != nil {
			return fmt.Errorf("body %d (%s): %w", i, c.Bodies[i].Name, err)
		}
	}
	return nil
}

// Build constructs a world and registers every body in config order. The
// returned slice follows the same order.
func (c *Config) Build() (*physics.World, []*physics.Body, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	rng := rand.New(rand.NewSource(c.Seed))
	w := physics.NewWorld(c.World.Gravity.Vector(), c.World.Substeps, c.World.Iterations)
	bodies := make([]*physics.Body, 0, len(c.Bodies))
	for i := range c.Bodies {
		b, err := c.Bodies[i].build(rng)
		if err != nil {
			return nil, nil, fmt.Errorf("body %d (%s): %w", i, c.Bodies[i].Name, err)
		}
		w.AddBody(b)
		bodies = append(bodies, b)
	}
	return w, bodies, nil
}

// Clone returns a deep copy so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = append([]BodyConfig(nil), c.Bodies...)
	for i := range out.Bodies {
		b := &out.Bodies[i]
		if b.StaticFriction != nil {
			b.StaticFriction = Float(*b.StaticFriction)
		}
		if b.KineticFriction != nil {
			b.KineticFriction = Float(*b.KineticFriction)
		}
	}
	return &out
}

func (bc *BodyConfig) build(rng *rand.Rand) (*physics.Body, error) {
	pos := physics.Vec(bc.X, bc.Y)
	if bc.Jitter > 0 && rng != nil {
		pos.X += (rng.Float64()*2 - 1) * bc.Jitter
	}

	var (
		b   *physics.Body
		err error
	)
	switch bc.Shape {
	case "box", "":
		b, err = physics.NewBox(pos, physics.Vec(bc.HalfWidth, bc.HalfHeight), bc.Mass, bc.Inertia)
	case "circle":
		b, err = physics.NewCircle(pos, bc.Radius, bc.Mass, bc.Inertia)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, bc.Shape)
	}
	if err != nil {
		return nil, err
	}

	if bc.Density != 0 {
		if err := b.ComputeMass(bc.Density); err != nil {
			return nil, err
		}
	}
	if err := bc.checkMaterial(); err != nil {
		return nil, err
	}
	b.Restitution = bc.Restitution
	if bc.StaticFriction != nil {
		b.StaticFriction = *bc.StaticFriction
	}
	if bc.KineticFriction != nil {
		b.KineticFriction = *bc.KineticFriction
	}
	b.HasFriction = !bc.NoFriction
	b.Velocity = physics.Vec(bc.VX, bc.VY)
	b.AngularVelocity = bc.AngularVelocity
	b.Group = bc.Group
	b.Layer = bc.Layer
	b.User = bc.Name
	return b, nil
}

// ErrUnknownParam indicates a SetParam name that does not map to a field.
var ErrUnknownParam = errors.New("config: unknown parameter")

// Params lists the names accepted by SetParam.
var Params = []string{"dt", "gravity", "substeps", "iterations", "restitution", "static_friction", "kinetic_friction", "density"}

// SetParam sets a scalar scene parameter by name. Body-level parameters are
// applied to every body; density only to bodies that already use one.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "dt":
		c.Dt = v
	case "gravity":
		c.World.Gravity = VectorConfig{Y: v}
	case "substeps":
		c.World.Substeps = int(v)
	case "iterations":
		c.World.Iterations = int(v)
	case "restitution", "static_friction", "kinetic_friction", "density":
		for i := range c.Bodies {
			b := &c.Bodies[i]
			switch name {
			case "restitution":
				b.Restitution = v
			case "static_friction":
				b.StaticFriction = Float(v)
			case "kinetic_friction":
				b.KineticFriction = Float(v)
			case "density":
				if b.Density != 0 {
					b.Density = v
				}
			}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}

// Param reads a SetParam parameter back. Body-level values come from the
// first dynamic body, or the first body when all are static.
func (c *Config) Param(name string) (float64, error) {
	switch name {
	case "dt":
		return c.Dt, nil
	case "gravity":
		return c.World.Gravity.Y, nil
	case "substeps":
		return float64(c.World.Substeps), nil
	case "iterations":
		return float64(c.World.Iterations), nil
	case "restitution", "static_friction", "kinetic_friction", "density":
		if len(c.Bodies) == 0 {
			return 0, ErrNoBodies
		}
		b := c.Bodies[0]
		for _, bc := range c.Bodies {
			if bc.Mass > 0 || bc.Density > 0 {
				b = bc
				break
			}
		}
		switch name {
		case "restitution":
			return b.Restitution, nil
		case "static_friction":
			return valueOr(b.StaticFriction, physics.DefaultStaticFriction), nil
		case "kinetic_friction":
			return valueOr(b.KineticFriction, physics.DefaultKineticFriction), nil
		default:
			return b.Density, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownParam, name)
}

// Float returns a pointer to v, for the optional BodyConfig fields.
func Float(v float64) *float64 { return &v }

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func (bc *BodyConfig) checkMaterial() error {
	if !(bc.Restitution >= 0 && bc.Restitution <= 1) {
		return fmt.Errorf("%w: restitution %g", ErrInvalidMaterial, bc.Restitution)
	}
	for _, f := range []*float64{bc.StaticFriction, bc.KineticFriction} {
		if f != nil && !(*f >= 0) {
			return fmt.Errorf("%w: friction %g", ErrInvalidMaterial, *f)
		}
	}
	return nil
}
