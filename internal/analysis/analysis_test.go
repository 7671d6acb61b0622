package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/physics"
)

type oscillator struct{}

func (oscillator) StateDim() int { return 2 }
func (oscillator) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	return dynamo.State{x[1], -x[0]}, nil
}

func unitPendulum() *physics.DoublePendulum {
	return physics.NewDoublePendulum(physics.Params{L1: 1, L2: 1, M1: 1, M2: 1})
}

func TestDivergenceChaotic(t *testing.T) {
	x0 := physics.State{Phi1: 2.5, Phi2: 2.5}.Vector()
	d, err := Divergence(context.Background(), unitPendulum(), integrators.NewRK4(), x0, 1e-6, 0.01, 0.1, 30)
	if err != nil {
		t.Fatalf("divergence failed: %v", err)
	}

	if len(d.Times) != 301 {
		t.Errorf("expected 301 samples, got %d", len(d.Times))
	}
	if math.Abs(d.Separation[0]-1e-6) > 1e-12 {
		t.Errorf("initial separation %g, want 1e-6", d.Separation[0])
	}
	if d.MaxSeparation() <= 0.1 {
		t.Errorf("expected separation above 0.1 rad, got %g", d.MaxSeparation())
	}
}

func TestDivergenceRegular(t *testing.T) {
	x0 := physics.State{Phi1: 0.1, Phi2: 0.1}.Vector()
	d, err := Divergence(context.Background(), unitPendulum(), integrators.NewRK4(), x0, 1e-6, 0.01, 0.1, 10)
	if err != nil {
		t.Fatalf("divergence failed: %v", err)
	}
	if d.MaxSeparation() > 1e-4 {
		t.Errorf("small oscillations should stay close, got %g", d.MaxSeparation())
	}
}

func TestDivergenceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Divergence(ctx, unitPendulum(), integrators.NewRK4(), physics.DefaultState().Vector(), 1e-6, 0.01, 0.1, 1)
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
}

func TestDivergenceRejectsUnboundedRun(t *testing.T) {
	x0 := physics.DefaultState().Vector()
	for _, duration := range []float64{math.Inf(1), 1e300} {
		_, err := Divergence(context.Background(), unitPendulum(), integrators.NewRK4(), x0, 1e-6, 0.01, 0.1, duration)
		if !errors.Is(err, dynamo.ErrInvalidStep) {
			t.Errorf("duration %g: expected ErrInvalidStep, got %v", duration, err)
		}
	}
}

func TestLyapunovExponent(t *testing.T) {
	regular, err := LyapunovExponent(oscillator{}, integrators.NewRK4(), dynamo.State{1, 0}, 0.01, 50, 1e-8)
	if err != nil {
		t.Fatalf("oscillator: %v", err)
	}
	if math.Abs(regular) > 0.01 {
		t.Errorf("linear oscillator should have zero exponent, got %g", regular)
	}

	chaotic, err := LyapunovExponent(unitPendulum(), integrators.NewRK4(), physics.State{Phi1: 2.5, Phi2: 2.5}.Vector(), 0.01, 50, 1e-8)
	if err != nil {
		t.Fatalf("pendulum: %v", err)
	}
	if chaotic < 0.1 {
		t.Errorf("expected positive exponent for large swings, got %g", chaotic)
	}
}

func TestLyapunovInvalid(t *testing.T) {
	if _, err := LyapunovExponent(oscillator{}, integrators.NewRK4(), nil, 0.01, 1, 1e-8); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := LyapunovExponent(oscillator{}, integrators.NewRK4(), dynamo.State{1, 0}, 0, 1, 1e-8); !errors.Is(err, dynamo.ErrInvalidStep) {
		t.Errorf("expected ErrInvalidStep, got %v", err)
	}
	if _, err := LyapunovExponent(oscillator{}, integrators.NewRK4(), dynamo.State{1, 0}, 1e-14, 1e6, 1e-8); !errors.Is(err, dynamo.ErrInvalidStep) {
		t.Errorf("expected ErrInvalidStep for too many steps, got %v", err)
	}
	if _, err := LyapunovExponent(oscillator{}, integrators.NewRK4(), dynamo.State{1, 0}, 0.01, 1, 0); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestLyapunovSpectrum(t *testing.T) {
	spectrum, err := LyapunovSpectrum(oscillator{}, integrators.NewRK4(), dynamo.State{1, 0}, 0.01, 10, 1e-8)
	if err != nil {
		t.Fatal(err)
	}
	if len(spectrum) != 2 {
		t.Fatalf("expected 2 exponents, got %d", len(spectrum))
	}
	for i, l := range spectrum {
		if math.Abs(l) > 0.01 {
			t.Errorf("exponent %d = %g, want ~0", i, l)
		}
	}
}

func TestPhasePortrait(t *testing.T) {
	p, err := GeneratePhasePortrait(oscillator{}, integrators.NewRK4(), dynamo.State{1, 0}, 0, 1, 0.01, 2*math.Pi)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Points) != 629 {
		t.Errorf("expected 629 points, got %d", len(p.Points))
	}
	for _, pt := range p.Points {
		if r := math.Hypot(pt.X, pt.Y); math.Abs(r-1) > 1e-6 {
			t.Fatalf("point %v off the unit circle", pt)
		}
	}

	art := PhasePortraitToASCII(p, 40, 20)
	lines := strings.Split(strings.TrimSuffix(art, "\n"), "\n")
	if len(lines) != 20 {
		t.Errorf("expected 20 rows, got %d", len(lines))
	}
	for _, l := range lines {
		if n := len([]rune(l)); n != 40 {
			t.Fatalf("expected 40 columns, got %d", n)
		}
	}
	if !strings.ContainsRune(art, '•') {
		t.Error("expected plotted points")
	}
}

func TestPhasePortraitInvalid(t *testing.T) {
	if _, err := GeneratePhasePortrait(oscillator{}, integrators.NewRK4(), dynamo.State{1, 0}, 0, 4, 0.01, 1); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if PhasePortraitToASCII(nil, 10, 10) != "" {
		t.Error("expected empty art for nil portrait")
	}
}

func TestPoincareSection(t *testing.T) {
	// v crosses zero upward at x = -1, at t = pi, 3pi, 5pi.
	s, err := GeneratePoincareSection(oscillator{}, integrators.NewRK4(), dynamo.State{1, 0}, 1, 0, 0, 1, 0.01, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Points) != 3 {
		t.Fatalf("expected 3 crossings, got %d", len(s.Points))
	}
	for _, p := range s.Points {
		if math.Abs(p.X+1) > 1e-3 || math.Abs(p.Y) > 1e-9 {
			t.Errorf("unexpected crossing %v", p)
		}
	}

	if PoincareSectionToASCII(&PoincareSection{}, 10, 5) != "No crossings detected" {
		t.Error("expected placeholder for empty section")
	}
}

func TestBifurcationDiagram(t *testing.T) {
	sys := unitPendulum()
	x0 := physics.State{Phi1: 0.3, Phi2: -0.2}.Vector()

	data, err := BifurcationDiagram(sys, integrators.NewRK4(), "m2", 1, 2, 3, 1, x0, 0.01, 5, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 3 {
		t.Fatalf("expected 3 parameter values, got %d", len(data))
	}
	for i, want := range []float64{1, 1.5, 2} {
		if data[i].Param != want {
			t.Errorf("param %d = %g, want %g", i, data[i].Param, want)
		}
		if len(data[i].Values) == 0 {
			t.Errorf("param %g: no section values", want)
		}
	}
	if sys.M2 != 1 {
		t.Errorf("m2 not restored, got %g", sys.M2)
	}
	if BifurcationToASCII(data, 30, 10) == "" {
		t.Error("expected bifurcation art")
	}

	if _, err := BifurcationDiagram(oscillator{}, integrators.NewRK4(), "m2", 1, 2, 3, 1, dynamo.State{1, 0}, 0.01, 1, 1); err == nil {
		t.Error("expected error for non-tunable system")
	}
	if _, err := BifurcationDiagram(sys, integrators.NewRK4(), "k", 1, 2, 3, 1, x0, 0.01, 1, 1); err == nil {
		t.Error("expected error for unknown param")
	}
}

func TestDominantFrequency(t *testing.T) {
	const dt = 0.01
	samples := make([]float64, 1024)
	for i := range samples {
		samples[i] = 3 + math.Sin(2*math.Pi*2*float64(i)*dt)
	}

	f, err := DominantFrequency(samples, dt)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-2) > 0.1 {
		t.Errorf("expected ~2 Hz, got %g", f)
	}

	if _, err := DominantFrequency(samples, 0); !errors.Is(err, dynamo.ErrInvalidStep) {
		t.Errorf("expected ErrInvalidStep, got %v", err)
	}
	if _, err := DominantFrequency(samples[:3], dt); err == nil {
		t.Error("expected error for short signal")
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	ps := PowerSpectrum([]float64{5, 5, 5, 5, 5, 5, 5, 5})
	for i, v := range ps {
		if v > 1e-12 {
			t.Errorf("bin %d = %g, want 0 for a constant signal", i, v)
		}
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for empty input")
	}
}
