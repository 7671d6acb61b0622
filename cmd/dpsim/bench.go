package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare [integrators...]",
		Short: "compare integrators on the same run",
		RunE:  compareIntegrators,
	}
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "benchmark the simulation over several durations and steps",
		RunE:  benchSimulation,
	}
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	fmt.Printf("comparing integrators (step=%.4f, duration=%.1fs)\n\n", cfg.Step, cfg.Duration)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s\n", "integrator", "final_phi1", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 54))

	for _, name := range names {
		integ, err := integrators.Get(name)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := dynamo.New(cfg.System(), integ).Run(context.Background(), cfg.State().Vector(), cfg.SimConfig())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		final := result.States[len(result.States)-1]
		fmt.Printf("%-12s  %12.6f  %12.2e  %12.2f\n", name, final[0], result.EnergyDrift, float64(elapsed.Microseconds())/1000)
	}
	return nil
}

func benchSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	durations := []float64{1.0, 10.0, 60.0}
	steps := []float64{0.001, 0.01, 0.05}

	fmt.Printf("benchmarking %s\n\n", cfg.Integrator)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tSTEP\tSTEPS\tTIME\tSTEPS/SEC\tDRIFT")

	for _, dur := range durations {
		for _, h := range steps {
			integ, err := integrators.Get(cfg.Integrator)
			if err != nil {
				return err
			}
			simCfg := cfg.SimConfig()
			simCfg.Dt = h
			simCfg.Duration = dur

			start := time.Now()
			result, err := dynamo.New(cfg.System(), integ).Run(context.Background(), cfg.State().Vector(), simCfg)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			n, err := dynamo.StepCount(0, dur, h)
			if err != nil {
				return err
			}
			stepsPerSec := float64(n) / elapsed.Seconds()

			fmt.Fprintf(w, "%.1fs\t%.4f\t%d\t%v\t%.0f\t%.2e\n",
				dur, h, n, elapsed.Round(time.Microsecond), stepsPerSec, result.EnergyDrift)
		}
	}

	return w.Flush()
}
