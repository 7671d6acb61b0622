package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	envFile    string
	verbose    bool

	step       float64
	horizon    float64
	duration   float64
	integrator string
	gravity    float64
	phi1       float64
	phi2       float64
	omega1     float64
	omega2     float64
	l1, l2     float64
	m1, m2     float64

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dpsim",
		Short:         "double pendulum simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
		RunE: runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&envFile, "env", ".env", "dotenv file with DPSIM_* overrides")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.Float64Var(&step, "step", config.DefaultStep, "integration sub-step")
	pf.Float64Var(&horizon, "horizon", config.DefaultHorizon, "time advanced per frame")
	pf.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	pf.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (rk4, euler)")
	pf.Float64Var(&gravity, "gravity", 9.81, "gravitational acceleration")
	pf.Float64Var(&phi1, "phi1", 0, "initial angle of the upper rod")
	pf.Float64Var(&phi2, "phi2", 0, "initial angle of the lower rod")
	pf.Float64Var(&omega1, "omega1", 0, "initial angular velocity of the upper rod")
	pf.Float64Var(&omega2, "omega2", 0, "initial angular velocity of the lower rod")
	pf.Float64Var(&l1, "l1", 0, "upper rod length")
	pf.Float64Var(&l2, "l2", 0, "lower rod length")
	pf.Float64Var(&m1, "m1", 0, "upper bob mass")
	pf.Float64Var(&m2, "m2", 0, "lower bob mass")
	addLiveFlags(rootCmd)

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newChaosCmd(),
		newPhaseCmd(),
		newSpectrumCmd(),
		newPlotCmd(),
		newCompareCmd(),
		newBifurcationCmd(),
		newScenarioCmd(),
		newSweepCmd(),
		newMonteCarloCmd(),
		newBenchCmd(),
		newPresetsCmd(),
	)
	return rootCmd
}

// loadConfig resolves the configuration in order: defaults, preset,
// config file, environment, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		logger.Debug("preset loaded", "name", preset)
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger.Debug("config loaded", "path", configFile)
	}

	if err := config.ApplyEnv(cfg, envFile); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	for _, f := range []struct {
		name string
		src  float64
		dst  *float64
	}{
		{"step", step, &cfg.Step},
		{"horizon", horizon, &cfg.Horizon},
		{"time", duration, &cfg.Duration},
		{"gravity", gravity, &cfg.Gravity},
		{"phi1", phi1, &cfg.InitState.Phi1},
		{"phi2", phi2, &cfg.InitState.Phi2},
		{"omega1", omega1, &cfg.InitState.Omega1},
		{"omega2", omega2, &cfg.InitState.Omega2},
		{"l1", l1, &cfg.Params.L1},
		{"l2", l2, &cfg.Params.L2},
		{"m1", m1, &cfg.Params.M1},
		{"m2", m2, &cfg.Params.M2},
	} {
		if flags.Changed(f.name) {
			*f.dst = f.src
		}
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("configuration",
		"params", cfg.PhysicsParams(),
		"state", cfg.State(),
		"step", cfg.Step,
		"horizon", cfg.Horizon,
		"duration", cfg.Duration,
		"integrator", cfg.Integrator,
	)
	return cfg, nil
}
