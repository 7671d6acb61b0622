package metrics

import (
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
)

// Stability is the fraction of samples whose angular velocities all stay
// within threshold. The angles themselves are unbounded and not checked.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, t float64) {
	s.samples++
	for _, w := range omegas(x) {
		if math.IsNaN(w) || math.Abs(w) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxAngularSpeed is the peak |omega| of either rod.
type MaxAngularSpeed struct {
	peak float64
}

func NewMaxAngularSpeed() *MaxAngularSpeed {
	return &MaxAngularSpeed{}
}

func (m *MaxAngularSpeed) Name() string { return "max_angular_speed" }

func (m *MaxAngularSpeed) Observe(x dynamo.State, t float64) {
	for _, w := range omegas(x) {
		m.peak = math.Max(m.peak, math.Abs(w))
	}
}

func (m *MaxAngularSpeed) Value() float64 { return m.peak }

func (m *MaxAngularSpeed) Reset() { m.peak = 0 }

// omegas returns the velocity half of a (phi1, phi2, omega1, omega2) state.
func omegas(x dynamo.State) dynamo.State {
	if len(x) < 4 {
		return nil
	}
	return x[2:4]
}
