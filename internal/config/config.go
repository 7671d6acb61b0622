package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStep        = 0.01
	DefaultHorizon     = 0.1
	DefaultDuration    = 10.0
	DefaultIntegrator  = "rk4"
	DefaultSliderMin   = 1.0
	DefaultSliderMax   = 100.0
	DefaultLengthScale = 3.0
)

type Config struct {
	Params     ParamsConfig `yaml:"params"`
	Gravity    float64      `yaml:"gravity"`
	InitState  StateConfig  `yaml:"init_state"`
	Pivot      PivotConfig  `yaml:"pivot"`
	Step       float64      `yaml:"step"`
	Horizon    float64      `yaml:"horizon"`
	Duration   float64      `yaml:"duration"`
	Integrator string       `yaml:"integrator"`
	Slider     SliderConfig `yaml:"slider"`
	MaxRate    float64      `yaml:"max_rate"`
}

type ParamsConfig struct {
	L1 float64 `yaml:"l1"`
	L2 float64 `yaml:"l2"`
	M1 float64 `yaml:"m1"`
	M2 float64 `yaml:"m2"`
}

type StateConfig struct {
	Phi1   float64 `yaml:"phi1"`
	Phi2   float64 `yaml:"phi2"`
	Omega1 float64 `yaml:"omega1"`
	Omega2 float64 `yaml:"omega2"`
}

type PivotConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// SliderConfig is the range of the interactive length/mass sliders.
// Rod lengths are the slider value times LengthScale.
type SliderConfig struct {
	Min         float64 `yaml:"min"`
	Max         float64 `yaml:"max"`
	LengthScale float64 `yaml:"length_scale"`
}

// DefaultConfig is the stock scene: 150-unit rods, 50-unit bobs, both
// rods released from rest at pi/5.
func DefaultConfig() *Config {
	p := physics.DefaultParams()
	s := physics.DefaultState()
	return &Config{
		Params:     ParamsConfig{L1: p.L1, L2: p.L2, M1: p.M1, M2: p.M2},
		Gravity:    physics.DefaultGravity,
		InitState:  StateConfig{Phi1: s.Phi1, Phi2: s.Phi2},
		Pivot:      PivotConfig{X: physics.DefaultPivot.X, Y: physics.DefaultPivot.Y},
		Step:       DefaultStep,
		Horizon:    DefaultHorizon,
		Duration:   DefaultDuration,
		Integrator: DefaultIntegrator,
		Slider: SliderConfig{
			Min:         DefaultSliderMin,
			Max:         DefaultSliderMax,
			LengthScale: DefaultLengthScale,
		},
		MaxRate: physics.DefaultMaxRate,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

// Validate collects every problem in the configuration.
func (c *Config) Validate() error {
	var errs []error
	if err := c.PhysicsParams().Validate(); err != nil {
		errs = append(errs, err)
	}
	if !(c.Gravity >= 0) || math.IsInf(c.Gravity, 0) {
		errs = append(errs, fmt.Errorf("%w: gravity must be non-negative, got %g", dynamo.ErrInvalidParameter, c.Gravity))
	}
	if !c.State().Vector().IsValid() {
		errs = append(errs, fmt.Errorf("%w: init_state must be finite", dynamo.ErrInvalidState))
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"step", c.Step}, {"horizon", c.Horizon}, {"duration", c.Duration},
	} {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %g", dynamo.ErrInvalidStep, f.name, f.value))
		}
	}
	if !(c.Slider.Min > 0) || !(c.Slider.Max >= c.Slider.Min) || !(c.Slider.LengthScale > 0) {
		errs = append(errs, fmt.Errorf("%w: slider range [%g, %g] x%g", dynamo.ErrInvalidParameter,
			c.Slider.Min, c.Slider.Max, c.Slider.LengthScale))
	}
	if c.MaxRate < 0 {
		errs = append(errs, fmt.Errorf("%w: max_rate must not be negative", dynamo.ErrInvalidParameter))
	}
	return errors.Join(errs...)
}

func (c *Config) PhysicsParams() physics.Params {
	return physics.Params{L1: c.Params.L1, L2: c.Params.L2, M1: c.Params.M1, M2: c.Params.M2}
}

func (c *Config) State() physics.State {
	return physics.State{
		Phi1: c.InitState.Phi1, Phi2: c.InitState.Phi2,
		Omega1: c.InitState.Omega1, Omega2: c.InitState.Omega2,
	}
}

// System builds the pendulum described by the configuration.
func (c *Config) System() *physics.DoublePendulum {
	sys := physics.NewDoublePendulum(c.PhysicsParams())
	sys.Gravity = c.Gravity
	if c.MaxRate > 0 {
		sys.MaxRate = c.MaxRate
	}
	return sys
}

// SimConfig converts to the batch simulator settings.
func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Step,
		Horizon:       c.Horizon,
		Duration:      c.Duration,
		ValidateState: true,
	}
}
