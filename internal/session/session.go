// Package session owns the evolving pendulum of an interactive run: the
// current state, the parameters requested by the user and the clock. Each
// Tick advances one render frame.
//
// A Session is not safe for concurrent use.
package session

import (
	"fmt"
	"math"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// SliderNames lists the adjustable parameters in display order.
var SliderNames = []string{"l1", "l2", "m1", "m2"}

type Settings struct {
	Params     physics.Params
	Gravity    float64
	Initial    physics.State
	Pivot      r2.Vec
	Step       float64
	Horizon    float64
	Integrator dynamo.Integrator
	MaxRate    float64

	SliderMin   float64
	SliderMax   float64
	LengthScale float64
}

// DefaultSettings is the stock scene of [config.DefaultConfig].
func DefaultSettings() Settings {
	s, err := FromConfig(config.DefaultConfig())
	if err != nil {
		// config.DefaultIntegrator is always registered.
		panic(err)
	}
	return s
}

func FromConfig(cfg *config.Config) (Settings, error) {
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Params:      cfg.PhysicsParams(),
		Gravity:     cfg.Gravity,
		Initial:     cfg.State(),
		Pivot:       r2.Vec{X: cfg.Pivot.X, Y: cfg.Pivot.Y},
		Step:        cfg.Step,
		Horizon:     cfg.Horizon,
		Integrator:  integ,
		MaxRate:     cfg.MaxRate,
		SliderMin:   cfg.Slider.Min,
		SliderMax:   cfg.Slider.Max,
		LengthScale: cfg.Slider.LengthScale,
	}, nil
}

// Frame is everything a renderer needs for one tick.
type Frame struct {
	Time       float64
	State      physics.State
	Bob1, Bob2 r2.Vec
	Rot1, Rot2 float64
	Energy     float64
}

type Session struct {
	settings Settings
	sys      *physics.DoublePendulum
	integ    dynamo.Integrator

	// requested may differ from sys.Params while pending is set.
	requested physics.Params
	pending   error

	state     physics.State
	t         float64
	observers []dynamo.Observer
}

func New(cfg Settings) (*Session, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if !(cfg.Step > 0) || !(cfg.Horizon > 0) || math.IsInf(cfg.Step, 0) || math.IsInf(cfg.Horizon, 0) {
		return nil, fmt.Errorf("%w: step %g, horizon %g", dynamo.ErrInvalidStep, cfg.Step, cfg.Horizon)
	}
	if !cfg.Initial.Vector().IsValid() {
		return nil, fmt.Errorf("%w: initial state %+v", dynamo.ErrInvalidState, cfg.Initial)
	}
	if cfg.Integrator == nil {
		cfg.Integrator = integrators.NewRK4()
	}
	if cfg.LengthScale <= 0 {
		cfg.LengthScale = config.DefaultLengthScale
	}
	if cfg.SliderMax < cfg.SliderMin || cfg.SliderMin <= 0 {
		cfg.SliderMin, cfg.SliderMax = config.DefaultSliderMin, config.DefaultSliderMax
	}

	sys := physics.NewDoublePendulum(cfg.Params)
	sys.Gravity = cfg.Gravity
	if cfg.MaxRate > 0 {
		sys.MaxRate = cfg.MaxRate
	}

	return &Session{
		settings:  cfg,
		sys:       sys,
		integ:     cfg.Integrator,
		requested: cfg.Params,
		state:     cfg.Initial,
	}, nil
}

func (s *Session) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Tick integrates one horizon forward and returns the new frame. While
// the requested parameters are invalid, or when integration fails, the
// state and clock stay where they were and the error is returned.
func (s *Session) Tick() (Frame, error) {
	if s.pending != nil {
		return s.Current(), s.pending
	}

	tEnd := s.t + s.settings.Horizon
	x, err := dynamo.Advance(s.integ, s.sys, s.state.Vector(), s.t, tEnd, s.settings.Step)
	if err != nil {
		return s.Current(), err
	}
	next, err := physics.StateFromVector(x)
	if err != nil {
		return s.Current(), err
	}

	s.state = next
	s.t = tEnd
	for _, o := range s.observers {
		o.OnStep(x, s.t)
	}
	return s.Current(), nil
}

// Current renders the present state without advancing.
func (s *Session) Current() Frame {
	bob1, bob2 := physics.Positions(s.sys.Params, s.state, s.settings.Pivot)
	rot1, rot2 := physics.BobOrientation(s.state)
	return Frame{
		Time:   s.t,
		State:  s.state,
		Bob1:   bob1,
		Bob2:   bob2,
		Rot1:   rot1,
		Rot2:   rot2,
		Energy: s.sys.Energy(s.state.Vector()),
	}
}

// SetParams requests new parameters. Valid parameters take effect on the
// next Tick. Invalid ones are remembered and block every Tick until a
// valid set replaces them.
func (s *Session) SetParams(p physics.Params) error {
	s.requested = p
	if err := p.Validate(); err != nil {
		s.pending = err
		return err
	}
	s.pending = nil
	s.sys.Params = p
	return nil
}

// SetSlider moves one slider. The value is clamped to the slider range;
// lengths are the value times the length scale, masses the value itself.
func (s *Session) SetSlider(name string, value float64) error {
	v := clamp(value, s.settings.SliderMin, s.settings.SliderMax)
	p := s.requested
	switch name {
	case "l1":
		p.L1 = v * s.settings.LengthScale
	case "l2":
		p.L2 = v * s.settings.LengthScale
	case "m1":
		p.M1 = v
	case "m2":
		p.M2 = v
	default:
		return fmt.Errorf("unknown slider: %s", name)
	}
	return s.SetParams(p)
}

// Slider reports the slider position that corresponds to the requested
// parameters.
func (s *Session) Slider(name string) float64 {
	switch name {
	case "l1":
		return s.requested.L1 / s.settings.LengthScale
	case "l2":
		return s.requested.L2 / s.settings.LengthScale
	case "m1":
		return s.requested.M1
	case "m2":
		return s.requested.M2
	}
	return 0
}

func (s *Session) SliderRange() (lo, hi float64) {
	return s.settings.SliderMin, s.settings.SliderMax
}

// Reset restores the initial state and clock. Parameters are kept.
func (s *Session) Reset() {
	s.state = s.settings.Initial
	s.t = 0
}

func (s *Session) State() physics.State { return s.state }

// Params returns the parameters in effect for integration.
func (s *Session) Params() physics.Params { return s.sys.Params }

// Pending returns the error blocking integration, if any.
func (s *Session) Pending() error { return s.pending }

func (s *Session) Time() float64 { return s.t }

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Max(lo, math.Min(hi, x))
}
