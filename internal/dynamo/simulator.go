package dynamo

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	sys        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(sys System, integrator Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates x0 over cfg.Duration, one Horizon-long frame at a time,
// and records the state at every frame boundary. The partial result is
// returned alongside any error.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if len(x0) != s.sys.StateDim() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}
	frames, err := validateConfig(cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		States:  make([]State, 0, min(frames, maxPrealloc)+1),
		Times:   make([]float64, 0, min(frames, maxPrealloc)+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	initialEnergy := s.computeEnergy(x)

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		tEnd := math.Min(float64(i+1)*cfg.Horizon, cfg.Duration)
		newX, err := Advance(s.integrator, s.sys, x, t, tEnd, cfg.Dt)
		if err != nil {
			result.Errors = append(result.Errors, err)
			return result, err
		}

		if cfg.ValidateState && !newX.IsValid() {
			err := &SimulationError{Step: i, Time: t, State: newX, Wrapped: ErrInvalidState}
			result.Errors = append(result.Errors, err)
			return result, err
		}

		x = newX
		t = tEnd
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		m.Observe(x, t)
	}

	finalEnergy := s.computeEnergy(x)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// validateConfig returns the number of frames cfg asks for.
func validateConfig(cfg Config) (int, error) {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"dt", cfg.Dt},
		{"horizon", cfg.Horizon},
		{"duration", cfg.Duration},
	} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) || v.val <= 0 {
			return 0, fmt.Errorf("%w: %s must be positive and finite, got %g", ErrInvalidStep, v.name, v.val)
		}
	}

	frames := math.Ceil(cfg.Duration/cfg.Horizon - stepTolerance)
	if frames > MaxSteps {
		return 0, fmt.Errorf("%w: %g frames exceed the limit of %d", ErrInvalidStep, frames, MaxSteps)
	}
	return int(math.Max(frames, 1)), nil
}

func (s *Simulator) computeEnergy(x State) float64 {
	if h, ok := s.sys.(Hamiltonian); ok {
		return h.Energy(x)
	}
	return 0
}
