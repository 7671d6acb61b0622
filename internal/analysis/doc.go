// Package analysis provides chaos and dynamics analysis tools.
//
// The package includes tools for characterizing the pendulum:
//
//   - [Divergence]: separation of a run and a slightly perturbed copy
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [LyapunovSpectrum]: separation exponent per perturbed dimension
//   - [BifurcationDiagram]: parameter sweep over Poincaré section values
//   - [GeneratePhasePortrait]: 2D phase space trajectories
//   - [GeneratePoincareSection]: section of phase space at a crossing
//   - [DominantFrequency]: strongest oscillation frequency of a signal
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(sys, integ, x0, dt, duration, 1e-8)
//	if err == nil && lambda > 0 {
//	    // chaotic
//	}
package analysis
