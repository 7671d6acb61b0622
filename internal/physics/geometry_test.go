package physics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func near(a, b r2.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestPositions(t *testing.T) {
	p := Params{L1: 100, L2: 50, M1: 1, M2: 1}
	pivot := r2.Vec{X: 10, Y: 20}

	tests := []struct {
		name       string
		s          State
		bob1, bob2 r2.Vec
	}{
		{"hanging", State{}, r2.Vec{X: 10, Y: 120}, r2.Vec{X: 10, Y: 170}},
		{"horizontal", State{Phi1: math.Pi / 2, Phi2: math.Pi / 2}, r2.Vec{X: 110, Y: 20}, r2.Vec{X: 160, Y: 20}},
		{"inverted", State{Phi1: math.Pi, Phi2: math.Pi}, r2.Vec{X: 10, Y: -80}, r2.Vec{X: 10, Y: -130}},
		{"folded", State{Phi1: math.Pi / 2, Phi2: -math.Pi / 2}, r2.Vec{X: 110, Y: 20}, r2.Vec{X: 60, Y: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b1, b2 := Positions(p, tt.s, pivot)
			if !near(b1, tt.bob1) {
				t.Errorf("bob1 = %v, want %v", b1, tt.bob1)
			}
			if !near(b2, tt.bob2) {
				t.Errorf("bob2 = %v, want %v", b2, tt.bob2)
			}
		})
	}
}

func TestPositionsRodLengths(t *testing.T) {
	p := DefaultParams()
	for _, s := range []State{DefaultState(), {Phi1: -2.1, Phi2: 4.4}, {Phi1: 17, Phi2: -9}} {
		b1, b2 := Positions(p, s, DefaultPivot)
		if d := r2.Norm(r2.Sub(b1, DefaultPivot)); math.Abs(d-p.L1) > 1e-9 {
			t.Errorf("%+v: first rod length %g, want %g", s, d, p.L1)
		}
		if d := r2.Norm(r2.Sub(b2, b1)); math.Abs(d-p.L2) > 1e-9 {
			t.Errorf("%+v: second rod length %g, want %g", s, d, p.L2)
		}
	}
}

func TestPositionsIgnoreOmega(t *testing.T) {
	p := DefaultParams()
	a1, a2 := Positions(p, State{Phi1: 0.3, Phi2: 0.7}, DefaultPivot)
	b1, b2 := Positions(p, State{Phi1: 0.3, Phi2: 0.7, Omega1: 9, Omega2: -4}, DefaultPivot)
	if a1 != b1 || a2 != b2 {
		t.Error("positions must depend on angles only")
	}
}

func TestBobOrientation(t *testing.T) {
	r1, r2 := BobOrientation(State{Phi1: 0.25, Phi2: -1.5})
	if r1 != -0.25 || r2 != 1.5 {
		t.Errorf("BobOrientation = (%g, %g), want (-0.25, 1.5)", r1, r2)
	}
}
