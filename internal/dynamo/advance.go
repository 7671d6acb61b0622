package dynamo

import (
	"fmt"
	"math"
)

// stepTolerance absorbs representation error in span/step so that a
// horizon of 0.1 at step 0.01 yields 10 sub-steps rather than 11.
const stepTolerance = 1e-9

// MaxSteps bounds the sub-steps of one Advance call and the frames of one
// Run. Larger counts are rejected rather than truncated by int conversion.
const MaxSteps = math.MaxInt32

// maxPrealloc caps up-front slice capacity for long runs.
const maxPrealloc = 1 << 16

// StepCount returns ceil((tEnd-tStart)/step), the number of sub-steps
// Advance takes to cover the horizon.
func StepCount(tStart, tEnd, step float64) (int, error) {
	for _, v := range []float64{tStart, tEnd, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: non-finite bound", ErrInvalidStep)
		}
	}
	if step <= 0 {
		return 0, fmt.Errorf("%w: step must be positive, got %g", ErrInvalidStep, step)
	}
	if tEnd < tStart {
		return 0, fmt.Errorf("%w: end %g before start %g", ErrInvalidStep, tEnd, tStart)
	}

	span := tEnd - tStart
	if span == 0 {
		return 0, nil
	}
	n := math.Ceil(span/step - stepTolerance)
	if n < 1 {
		n = 1
	}
	if n > MaxSteps {
		return 0, fmt.Errorf("%w: %g sub-steps exceed the limit of %d", ErrInvalidStep, n, MaxSteps)
	}
	return int(n), nil
}

// Advance integrates sys from tStart to tEnd with fixed sub-steps of size
// step. The final sub-step is truncated so the result lands exactly on
// tEnd. x0 is never modified.
func Advance(integ Integrator, sys System, x0 State, tStart, tEnd, step float64) (State, error) {
	if len(x0) != sys.StateDim() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x0), sys.StateDim())
	}
	if !x0.IsValid() {
		return nil, ErrInvalidState
	}

	n, err := StepCount(tStart, tEnd, step)
	if err != nil {
		return nil, err
	}

	x := x0.Clone()
	for i := 0; i < n; i++ {
		t := tStart + float64(i)*step
		h := step
		if i == n-1 {
			h = tEnd - t
		}

		next, err := integ.Step(sys, x, t, h)
		if err != nil {
			return nil, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
		}
		x = next
	}

	return x, nil
}
