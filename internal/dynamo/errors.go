package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a non-positive length or mass, or a
	// parameter combination that drives an equation-of-motion denominator to zero.
	ErrInvalidParameter = errors.New("dynamo: invalid physical parameter")

	// ErrNumericOverflow indicates an angular rate or acceleration beyond the
	// model's sanity bound, or one that is no longer finite.
	ErrNumericOverflow = errors.New("dynamo: numeric overflow (rate out of bounds)")

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidStep indicates a non-positive step or a reversed time horizon.
	ErrInvalidStep = errors.New("dynamo: invalid step or horizon")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
