// Package automation runs scripted batches of pendulum simulations:
// YAML scenarios, parameter sweeps and Monte Carlo trials around an
// initial state.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/export"
	"github.com/san-kum/dpsim/internal/integrators"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

// Scenario is a named sequence of runs loaded from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides a preset (or the defaults) for one run. Zero
// fields keep the base value.
type ScenarioStep struct {
	Name       string              `yaml:"name"`
	Preset     string              `yaml:"preset"`
	Integrator string              `yaml:"integrator"`
	Duration   float64             `yaml:"duration"`
	Step       float64             `yaml:"step"`
	InitState  *config.StateConfig `yaml:"init_state"`
	Params     map[string]float64  `yaml:"params"`
	SaveAs     string              `yaml:"save_as"`
}

type StepResult struct {
	Name   string
	Config *config.Config
	Result *dynamo.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step into a validated configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Step > 0 {
		cfg.Step = s.Step
	}
	if s.InitState != nil {
		cfg.InitState = *s.InitState
	}
	for name, v := range s.Params {
		if err := SetParam(cfg, name, v); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetParam sets one physical parameter by the names the pendulum
// reports: l1, l2, m1, m2 and g.
func SetParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "l1":
		cfg.Params.L1 = v
	case "l2":
		cfg.Params.L2 = v
	case "m1":
		cfg.Params.M1 = v
	case "m2":
		cfg.Params.M2 = v
	case "g":
		cfg.Gravity = v
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

// RunScenario executes the steps in order and stops at the first failure.
// Steps with save_as also write their trajectory as CSV.
func RunScenario(ctx context.Context, scenario *Scenario, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		logger.Info("running scenario step", "scenario", scenario.Name, "step", name, "index", i+1, "of", len(scenario.Steps))

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		result, err := runConfig(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		if step.SaveAs != "" {
			if err := saveCSV(step.SaveAs, cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			logger.Debug("trajectory saved", "path", step.SaveAs)
		}

		results = append(results, StepResult{Name: name, Config: cfg, Result: result})
	}

	return results, nil
}

func runConfig(ctx context.Context, cfg *config.Config) (*dynamo.Result, error) {
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	return dynamo.New(cfg.System(), integ).Run(ctx, cfg.State().Vector(), cfg.SimConfig())
}

func saveCSV(path string, cfg *config.Config, result *dynamo.Result) error {
	samples, err := export.Trajectory(result, cfg.System(), r2.Vec{X: cfg.Pivot.X, Y: cfg.Pivot.Y})
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ParameterSweep varies one parameter of Base over [Min, Max].
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min, Max float64
	Steps    int
	Workers  int
}

type SweepResult struct {
	Value      float64
	FinalState dynamo.State
	MinEnergy  float64
	MaxEnergy  float64
	Drift      float64
}

// RunSweep runs every parameter value concurrently. Results are ordered
// by parameter value.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.Steps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.Steps)
	}
	base := sweep.Base
	if base == nil {
		base = config.DefaultConfig()
	}

	cfgs := make([]*config.Config, sweep.Steps)
	width := (sweep.Max - sweep.Min) / float64(sweep.Steps-1)
	for i := range cfgs {
		c := *base
		if err := SetParam(&c, sweep.Param, sweep.Min+float64(i)*width); err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, sweep.Min+float64(i)*width, err)
		}
		cfgs[i] = &c
	}

	results := make([]SweepResult, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	if sweep.Workers > 0 {
		g.SetLimit(sweep.Workers)
	}
	for i, cfg := range cfgs {
		g.Go(func() error {
			result, err := runConfig(ctx, cfg)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.Param, sweep.Min+float64(i)*width, err)
			}
			sys := cfg.System()
			minE, maxE := math.Inf(1), math.Inf(-1)
			for _, x := range result.States {
				e := sys.Energy(x)
				minE = math.Min(minE, e)
				maxE = math.Max(maxE, e)
			}
			results[i] = SweepResult{
				Value:      sweep.Min + float64(i)*width,
				FinalState: result.States[len(result.States)-1],
				MinEnergy:  minE,
				MaxEnergy:  maxE,
				Drift:      result.EnergyDrift,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MonteCarloConfig perturbs every component of the base initial state
// uniformly in [-Perturbation, Perturbation].
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
	SpeedLimit   float64
	Workers      int
}

type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	MaxSpeed   float64
	Stable     bool // angular speeds stayed below SpeedLimit
}

func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig) ([]MonteCarloResult, error) {
	if mc.NumTrials <= 0 {
		return nil, fmt.Errorf("monte carlo needs at least one trial")
	}
	base := mc.Base
	if base == nil {
		base = config.DefaultConfig()
	}

	newInteg, err := integrators.Constructor(base.Integrator)
	if err != nil {
		return nil, err
	}

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	x0 := base.State().Vector()
	initial := make([]dynamo.State, mc.NumTrials)
	for k := range initial {
		x := x0.Clone()
		for i := range x {
			x[i] += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		}
		initial[k] = x
	}

	ensemble := dynamo.NewEnsemble(func() (dynamo.System, dynamo.Integrator) {
		return base.System(), newInteg()
	}, mc.Workers)

	runs, err := ensemble.Run(ctx, initial, base.SimConfig())
	if err != nil {
		return nil, err
	}

	limit := mc.SpeedLimit
	if limit <= 0 {
		limit = math.Inf(1)
	}
	results := make([]MonteCarloResult, len(runs))
	for k, run := range runs {
		peak := 0.0
		for _, x := range run.States {
			peak = math.Max(peak, math.Max(math.Abs(x[2]), math.Abs(x[3])))
		}
		results[k] = MonteCarloResult{
			TrialID:    k,
			InitState:  initial[k],
			FinalState: run.States[len(run.States)-1],
			MaxSpeed:   peak,
			Stable:     peak < limit,
		}
	}
	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
