package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
)

// State is (phi1, phi2, omega1, omega2). Angles are measured from the
// downward vertical and are never wrapped.
type State struct {
	Phi1, Phi2     float64
	Omega1, Omega2 float64
}

// Derivative is the time derivative of a State.
type Derivative struct {
	DPhi1, DPhi2     float64
	DOmega1, DOmega2 float64
}

// DefaultState is both rods at pi/5, released from rest.
func DefaultState() State {
	return State{Phi1: math.Pi / 5, Phi2: math.Pi / 5}
}

func (s State) Vector() dynamo.State {
	return dynamo.State{s.Phi1, s.Phi2, s.Omega1, s.Omega2}
}

func StateFromVector(x dynamo.State) (State, error) {
	if len(x) != 4 {
		return State{}, fmt.Errorf("%w: double pendulum state has 4 components, got %d", dynamo.ErrDimensionMismatch, len(x))
	}
	return State{Phi1: x[0], Phi2: x[1], Omega1: x[2], Omega2: x[3]}, nil
}

func (d Derivative) Vector() dynamo.State {
	return dynamo.State{d.DPhi1, d.DPhi2, d.DOmega1, d.DOmega2}
}

// Wrapped returns the state with both angles folded into [-pi, pi) for
// display. Integration never needs it.
func (s State) Wrapped() State {
	s.Phi1 = wrapAngle(s.Phi1)
	s.Phi2 = wrapAngle(s.Phi2)
	return s
}

func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
