package dynamo

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh system and integrator for one ensemble member.
// Integrators keep scratch buffers, so members must never share one.
type Factory func() (System, Integrator)

type Ensemble struct {
	build   Factory
	workers int
}

func NewEnsemble(build Factory, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{build: build, workers: workers}
}

// Run simulates every initial state with the same config. Results are
// returned in the order of initial.
func (e *Ensemble) Run(ctx context.Context, initial []State, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(initial))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, x0 := range initial {
		x0 := x0.Clone()
		g.Go(func() error {
			sys, integ := e.build()
			res, err := New(sys, integ).Run(ctx, x0, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Perturb returns n copies of x0 where copy k has component index shifted
// by k*delta. Copy 0 is the unperturbed reference.
func Perturb(x0 State, index int, delta float64, n int) []State {
	out := make([]State, n)
	for k := 0; k < n; k++ {
		x := x0.Clone()
		if index >= 0 && index < len(x) {
			x[index] += float64(k) * delta
		}
		out[k] = x
	}
	return out
}
