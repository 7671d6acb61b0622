package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/san-kum/dpsim/internal/automation"
	"github.com/spf13/cobra"
)

var (
	trials       int
	seed         int64
	perturbation float64
)

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the configured simulation across a range of one parameter",
		RunE:  runSweep,
	}
	cmd.Flags().StringVar(&sweepParam, "param", "m2", "parameter to sweep (l1, l2, m1, m2, g)")
	cmd.Flags().Float64Var(&sweepMin, "min", 1, "sweep start")
	cmd.Flags().Float64Var(&sweepMax, "max", 100, "sweep end")
	cmd.Flags().IntVar(&sweepSteps, "steps", 20, "number of parameter values")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = unlimited)")
	return cmd
}

func newMonteCarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run randomly perturbed copies of the initial state",
		RunE:  runMonteCarlo,
	}
	cmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed (0 = time based)")
	cmd.Flags().Float64Var(&perturbation, "perturbation", 0.01, "max perturbation per component")
	cmd.Flags().Float64Var(&speedLimit, "speed-limit", 50, "angular speed counted as unstable")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.Description != "" {
		fmt.Printf("%s: %s\n\n", sc.Name, sc.Description)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunScenario(ctx, sc, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tINTEGRATOR\tDURATION\tFINAL PHI1\tFINAL PHI2\tDRIFT")
	for _, r := range results {
		last := r.Result.States[len(r.Result.States)-1]
		fmt.Fprintf(w, "%s\t%s\t%.1fs\t%.4f\t%.4f\t%.2e\n",
			r.Name, r.Config.Integrator, r.Config.Duration, last[0], last[1], r.Result.EnergyDrift)
	}
	w.Flush()
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:    cfg,
		Param:   sweepParam,
		Min:     sweepMin,
		Max:     sweepMax,
		Steps:   sweepSteps,
		Workers: workers,
	})
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s over [%g, %g]\n\n", sweepParam, sweepMin, sweepMax)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL PHI1\tFINAL PHI2\tMIN E\tMAX E\tDRIFT\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.4g\t%.4g\t%.2e\n",
			r.Value, r.FinalState[0], r.FinalState[1], r.MinEnergy, r.MaxEnergy, r.Drift)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         seed,
		SpeedLimit:   speedLimit,
		Workers:      workers,
	})
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	logger.Debug("monte carlo finished", "trials", len(results), "stable", stable)
	fmt.Printf("%d trials, %d stable, %d exceeded %.3g rad/s\n", len(results), stable, unstable, speedLimit)
	return nil
}
