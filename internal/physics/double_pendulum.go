package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
)

const (
	// MinDenominator is the smallest equation-of-motion denominator
	// accepted before the parameters are rejected.
	MinDenominator = 1e-12

	// DefaultMaxRate bounds |omega| and |alpha|. Beyond it the state can
	// no longer be drawn meaningfully.
	DefaultMaxRate = 1e6
)

// DoublePendulum is a frictionless double pendulum with point masses on
// massless rods.
type DoublePendulum struct {
	Params
	Gravity float64
	MaxRate float64
}

func NewDoublePendulum(p Params) *DoublePendulum {
	return &DoublePendulum{
		Params:  p,
		Gravity: DefaultGravity,
		MaxRate: DefaultMaxRate,
	}
}

// Derive evaluates the equations of motion with standard gravity. t is
// accepted for solver compatibility and otherwise ignored.
func Derive(p Params, s State, t float64) (Derivative, error) {
	return NewDoublePendulum(p).Evaluate(s)
}

func (d *DoublePendulum) StateDim() int { return 4 }

func (d *DoublePendulum) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	s, err := StateFromVector(x)
	if err != nil {
		return nil, err
	}
	dx, err := d.Evaluate(s)
	if err != nil {
		return nil, err
	}
	return dx.Vector(), nil
}

// Evaluate returns (omega1, omega2, alpha1, alpha2) for s.
func (d *DoublePendulum) Evaluate(s State) (Derivative, error) {
	if err := d.Params.Validate(); err != nil {
		return Derivative{}, err
	}
	if !(d.Gravity >= 0) || math.IsInf(d.Gravity, 0) {
		return Derivative{}, fmt.Errorf("%w: gravity must be non-negative and finite, got %g", dynamo.ErrInvalidParameter, d.Gravity)
	}
	if !s.Vector().IsValid() {
		return Derivative{}, dynamo.ErrInvalidState
	}

	phi1, phi2, omega1, omega2 := s.Phi1, s.Phi2, s.Omega1, s.Omega2
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.Gravity

	delta := phi1 - phi2
	sinD, cosD := math.Sin(delta), math.Cos(delta)

	base := 2*m1 + m2 - m2*math.Cos(2*delta)
	den1 := l1 * base
	den2 := l2 * base
	if math.Abs(den1) < MinDenominator || math.Abs(den2) < MinDenominator {
		return Derivative{}, fmt.Errorf("%w: degenerate denominator (%g, %g)", dynamo.ErrInvalidParameter, den1, den2)
	}

	w1sq, w2sq := omega1*omega1, omega2*omega2

	alpha1 := (-g*(2*m1+m2)*math.Sin(phi1) -
		m2*g*math.Sin(phi1-2*phi2) -
		2*sinD*m2*(w2sq*l2+w1sq*l1*cosD)) / den1

	alpha2 := (2 * sinD * (w1sq*l1*(m1+m2) +
		g*(m1+m2)*math.Cos(phi1) +
		w2sq*l2*m2*cosD)) / den2

	dx := Derivative{DPhi1: omega1, DPhi2: omega2, DOmega1: alpha1, DOmega2: alpha2}
	if err := d.checkRates(dx); err != nil {
		return Derivative{}, err
	}
	return dx, nil
}

func (d *DoublePendulum) checkRates(dx Derivative) error {
	limit := d.MaxRate
	if limit <= 0 {
		limit = DefaultMaxRate
	}
	for _, v := range []float64{dx.DPhi1, dx.DPhi2, dx.DOmega1, dx.DOmega2} {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
			return fmt.Errorf("%w: |%g| exceeds %g", dynamo.ErrNumericOverflow, v, limit)
		}
	}
	return nil
}

// Energy is the total mechanical energy. Potential energy is measured
// from the pivot with y pointing down, so the hanging rest state has the
// lowest energy.
func (d *DoublePendulum) Energy(x dynamo.State) float64 {
	phi1, phi2, omega1, omega2 := x[0], x[1], x[2], x[3]
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.Gravity

	v1sq := l1 * l1 * omega1 * omega1
	v2sq := l1*l1*omega1*omega1 + l2*l2*omega2*omega2 +
		2*l1*l2*omega1*omega2*math.Cos(phi1-phi2)

	ke := 0.5*m1*v1sq + 0.5*m2*v2sq
	y1 := l1 * math.Cos(phi1)
	y2 := y1 + l2*math.Cos(phi2)
	pe := -m1*g*y1 - m2*g*y2

	return ke + pe
}

func (d *DoublePendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"l1": d.L1,
		"l2": d.L2,
		"m1": d.M1,
		"m2": d.M2,
		"g":  d.Gravity,
	}
}

func (d *DoublePendulum) SetParam(name string, value float64) error {
	if !(value > 0) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s must be positive and finite, got %g", dynamo.ErrInvalidParameter, name, value)
	}
	switch name {
	case "l1":
		d.L1 = value
	case "l2":
		d.L2 = value
	case "m1":
		d.M1 = value
	case "m2":
		d.M2 = value
	case "g":
		d.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
