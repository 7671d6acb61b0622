package integrators

import (
	"testing"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
)

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	dyn := physics.NewDoublePendulum(physics.DefaultParams())
	x := physics.DefaultState().Vector()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integrator.Step(dyn, x, 0, 0.001)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := physics.NewDoublePendulum(physics.DefaultParams())
	x := physics.DefaultState().Vector()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integrator.Step(dyn, x, 0, 0.01)
	}
}

// BenchmarkRK4_Frame measures one render tick: a 0.1 horizon at step 0.01.
func BenchmarkRK4_Frame(b *testing.B) {
	integrator := NewRK4()
	dyn := physics.NewDoublePendulum(physics.DefaultParams())
	x0 := physics.DefaultState().Vector()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := dynamo.Advance(integrator, dyn, x0, 0, 0.1, 0.01); err != nil {
			b.Fatal(err)
		}
	}
}
