package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
)

// DivergenceSeries is the separation between a reference run and a run
// whose first component was shifted by Delta.
type DivergenceSeries struct {
	Delta      float64
	Times      []float64
	Separation []float64 // |x_a[0] - x_b[0]|
	Distance   []float64 // Euclidean distance in state space
}

// MaxSeparation is the largest first-component separation seen.
func (d *DivergenceSeries) MaxSeparation() float64 {
	peak := 0.0
	for _, s := range d.Separation {
		peak = math.Max(peak, s)
	}
	return peak
}

// Divergence runs x0 and a perturbed copy side by side, sampling once per
// horizon. Both runs use the same integrator instance sequentially.
func Divergence(
	ctx context.Context,
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	delta, step, horizon, duration float64,
) (*DivergenceSeries, error) {
	if len(x0) == 0 {
		return nil, fmt.Errorf("%w: empty state", dynamo.ErrDimensionMismatch)
	}
	if !(horizon > 0) || !(duration > 0) {
		return nil, fmt.Errorf("%w: horizon %g, duration %g", dynamo.ErrInvalidStep, horizon, duration)
	}
	frames, err := dynamo.StepCount(0, duration, horizon)
	if err != nil {
		return nil, err
	}

	a := x0.Clone()
	b := dynamo.Perturb(x0, 0, delta, 2)[1]

	out := &DivergenceSeries{
		Delta:      delta,
		Times:      make([]float64, 0, min(frames, 1<<16)+1),
		Separation: make([]float64, 0, min(frames, 1<<16)+1),
		Distance:   make([]float64, 0, min(frames, 1<<16)+1),
	}
	record := func(t float64) {
		out.Times = append(out.Times, t)
		out.Separation = append(out.Separation, math.Abs(a[0]-b[0]))
		out.Distance = append(out.Distance, a.Distance(b))
	}
	record(0)

	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
		}
		t0 := float64(i) * horizon
		t1 := math.Min(float64(i+1)*horizon, duration)
		if a, err = dynamo.Advance(integ, sys, a, t0, t1, step); err != nil {
			return out, fmt.Errorf("reference run: %w", err)
		}
		if b, err = dynamo.Advance(integ, sys, b, t0, t1, step); err != nil {
			return out, fmt.Errorf("perturbed run: %w", err)
		}
		record(t1)
	}
	return out, nil
}

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Two nearby trajectories are advanced together; after every step the
// log of the growth of their separation is accumulated and the perturbed
// trajectory is pulled back to distance perturbation. The exponent is the
// accumulated log divided by the elapsed time.
func LyapunovExponent(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) (float64, error) {
	if len(x0) == 0 {
		return 0, fmt.Errorf("%w: empty state", dynamo.ErrDimensionMismatch)
	}
	xp := dynamo.Perturb(x0, 0, perturbation, 2)[1]
	return lyapunovForPerturbation(sys, integ, x0, xp, dt, duration, perturbation)
}

// LyapunovSpectrum perturbs each state dimension independently and
// reports the separation exponent for each.
func LyapunovSpectrum(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) ([]float64, error) {
	spectrum := make([]float64, len(x0))
	for i := range x0 {
		xp := dynamo.Perturb(x0, i, perturbation, 2)[1]
		lambda, err := lyapunovForPerturbation(sys, integ, x0, xp, dt, duration, perturbation)
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i, err)
		}
		spectrum[i] = lambda
	}
	return spectrum, nil
}

func lyapunovForPerturbation(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0, x0p dynamo.State,
	dt, duration, d0 float64,
) (float64, error) {
	if !(dt > 0) || !(duration > 0) {
		return 0, fmt.Errorf("%w: dt %g, duration %g", dynamo.ErrInvalidStep, dt, duration)
	}
	if !(d0 > 0) {
		return 0, fmt.Errorf("%w: perturbation must be positive, got %g", dynamo.ErrInvalidParameter, d0)
	}

	x := x0.Clone()
	xp := x0p.Clone()
	n, err := dynamo.StepCount(0, duration, dt)
	if err != nil {
		return 0, err
	}

	sumLog := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		if x, err = integ.Step(sys, x, t, dt); err != nil {
			return 0, err
		}
		if xp, err = integ.Step(sys, xp, t, dt); err != nil {
			return 0, err
		}

		sep := xp.Distance(x)
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)

		scale := d0 / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
	}

	return sumLog / (float64(n) * dt), nil
}
