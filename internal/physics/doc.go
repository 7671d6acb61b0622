// Package physics provides the double pendulum model.
//
// [DoublePendulum] implements [dynamo.System] with the closed-form
// equations of motion for two point masses on massless rods, along with
// [dynamo.Hamiltonian] for energy monitoring and [dynamo.Configurable]
// for runtime parameter adjustment.
//
//	sys := physics.NewDoublePendulum(physics.DefaultParams())
//	next, err := integrators.NewRK4().Advance(sys, physics.DefaultState().Vector(), 0, 0.1, 0.01)
//
// [Positions] maps a state onto screen coordinates relative to a pivot.
//
// # Failure modes
//
// Non-positive lengths or masses and degenerate denominators yield
// [dynamo.ErrInvalidParameter]. Rates beyond [DoublePendulum.MaxRate]
// yield [dynamo.ErrNumericOverflow]. NaN is never returned silently.
package physics
