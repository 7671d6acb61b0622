package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
)

const (
	DefaultLength  = 150.0
	DefaultMass    = 50.0
	DefaultGravity = 9.81
)

// Params are the rod lengths and bob masses of a double pendulum.
type Params struct {
	L1, L2 float64
	M1, M2 float64
}

func DefaultParams() Params {
	return Params{
		L1: DefaultLength, L2: DefaultLength,
		M1: DefaultMass, M2: DefaultMass,
	}
}

// Validate reports the first non-positive or non-finite field.
func (p Params) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"l1", p.L1}, {"l2", p.L2}, {"m1", p.M1}, {"m2", p.M2},
	} {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be positive and finite, got %g", dynamo.ErrInvalidParameter, f.name, f.value)
		}
	}
	return nil
}

// Clamp limits every field to [lo, hi].
func (p Params) Clamp(lo, hi float64) Params {
	return Params{
		L1: clamp(p.L1, lo, hi), L2: clamp(p.L2, lo, hi),
		M1: clamp(p.M1, lo, hi), M2: clamp(p.M2, lo, hi),
	}
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
