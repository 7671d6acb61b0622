package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
)

func unitPendulum() *physics.DoublePendulum {
	return physics.NewDoublePendulum(physics.Params{L1: 1, L2: 1, M1: 1, M2: 1})
}

func TestEnergyMean(t *testing.T) {
	sys := unitPendulum()
	m := NewEnergy(sys)

	rest := dynamo.State{0, 0, 0, 0}
	spin := dynamo.State{0, 0, 2, 0}
	m.Observe(rest, 0)
	m.Observe(spin, 0.1)

	want := (sys.Energy(rest) + sys.Energy(spin)) / 2
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected mean energy %f, got %f", want, m.Value())
	}

	// rest: -3g; spin adds 0.5*(1*4) + 0.5*(1*4).
	if math.Abs(sys.Energy(spin)-sys.Energy(rest)-4) > 1e-12 {
		t.Errorf("unexpected kinetic energy %f", sys.Energy(spin)-sys.Energy(rest))
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy(unitPendulum())

	m.Observe(dynamo.State{1.0, 1.0, 0, 0}, 0)
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	sys := unitPendulum()
	m := NewEnergyDrift(sys)

	x0 := dynamo.State{0.5, 0.5, 0, 0}
	e0 := sys.Energy(x0)
	m.Observe(x0, 0)
	if m.Value() != 0 {
		t.Errorf("expected zero drift after one sample, got %g", m.Value())
	}

	x1 := dynamo.State{0.5, 0.5, 0.3, 0}
	m.Observe(x1, 0.1)
	m.Observe(x0, 0.2)

	want := math.Abs(sys.Energy(x1)-e0) / math.Abs(e0)
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected max drift %g, got %g", want, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

type noEnergy struct{}

func (noEnergy) StateDim() int { return 4 }
func (noEnergy) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	return make(dynamo.State, 4), nil
}

func TestEnergyDriftWithoutHamiltonian(t *testing.T) {
	m := NewEnergyDrift(noEnergy{})
	m.Observe(dynamo.State{1, 2, 3, 4}, 0)
	m.Observe(dynamo.State{4, 3, 2, 1}, 1)
	if m.Value() != 0 {
		t.Errorf("expected zero drift, got %g", m.Value())
	}
}
