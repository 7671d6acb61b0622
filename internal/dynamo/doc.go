// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical integrator interface
//   - [Simulator]: orchestrates batch simulation runs
//   - [Ensemble]: runs perturbed copies of a simulation in parallel
//
// # Example
//
//	sys := physics.NewDoublePendulum(physics.DefaultParams())
//	sim := dynamo.New(sys, integrators.NewRK4())
//	result, _ := sim.Run(ctx, x0, dynamo.DefaultConfig())
//
// # Errors
//
// Failures are reported with the sentinel errors in this package, usually
// wrapped in a [SimulationError]. Use [errors.Is] to classify them.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel simulations,
// use the [Ensemble] type which builds an independent system and
// integrator for every run.
package dynamo
