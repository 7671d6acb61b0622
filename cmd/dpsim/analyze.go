package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/export"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	delta     float64
	runs      int
	workers   int
	lyapunov  bool
	xAxis     int
	yAxis     int
	poincare  bool
	component int

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	transient  float64
)

var stateNames = []string{"phi1", "phi2", "omega1", "omega2"}

func newChaosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chaos",
		Short: "compare runs whose initial phi1 differs slightly",
		RunE:  runChaos,
	}
	cmd.Flags().Float64Var(&delta, "delta", 1e-6, "perturbation of phi1")
	cmd.Flags().IntVar(&runs, "runs", 5, "ensemble size")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "also estimate the largest Lyapunov exponent")
	return cmd
}

func newPhaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "phase portrait or Poincare section in the terminal",
		RunE:  runPhase,
	}
	cmd.Flags().IntVar(&xAxis, "x", 0, "x axis component (0 phi1, 1 phi2, 2 omega1, 3 omega2)")
	cmd.Flags().IntVar(&yAxis, "y", 2, "y axis component")
	cmd.Flags().BoolVar(&poincare, "poincare", false, "plot (phi2, omega2) at upward zero crossings of phi1")
	return cmd
}

func newSpectrumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spectrum",
		Short: "power spectrum of one state component",
		RunE:  runSpectrum,
	}
	cmd.Flags().IntVar(&component, "component", 0, "state component (0 phi1, 1 phi2, 2 omega1, 3 omega2)")
	return cmd
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "plot angles and energy in the terminal or to PNG files",
		RunE:  runPlot,
	}
	cmd.Flags().StringVar(&plotDir, "out", "", "write PNG plots to this directory instead")
	return cmd
}

func newBifurcationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "sweep a parameter and plot the Poincare values of phi2",
		RunE:  runBifurcation,
	}
	cmd.Flags().StringVar(&sweepParam, "param", "m2", "parameter to sweep (l1, l2, m1, m2, g)")
	cmd.Flags().Float64Var(&sweepMin, "min", 1, "sweep start")
	cmd.Flags().Float64Var(&sweepMax, "max", 100, "sweep end")
	cmd.Flags().IntVar(&sweepSteps, "steps", 20, "number of parameter values")
	cmd.Flags().Float64Var(&transient, "transient", 5, "time discarded before recording")
	return cmd
}

func runChaos(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	x0 := cfg.State().Vector()
	series, err := analysis.Divergence(ctx, cfg.System(), integ, x0, delta, cfg.Step, cfg.Horizon, cfg.Duration)
	if err != nil {
		return err
	}

	logSep := make([]float64, len(series.Separation))
	for i, s := range series.Separation {
		logSep[i] = math.Log10(math.Max(s, 1e-16))
	}
	fmt.Println(asciigraph.Plot(logSep,
		asciigraph.Height(12),
		asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("log10 |dphi1| (delta=%g)", delta)),
	))
	fmt.Printf("\nmax separation: %.4f rad\n\n", series.MaxSeparation())

	newInteg, err := integrators.Constructor(cfg.Integrator)
	if err != nil {
		return err
	}
	ensemble := dynamo.NewEnsemble(func() (dynamo.System, dynamo.Integrator) {
		return cfg.System(), newInteg()
	}, workers)
	results, err := ensemble.Run(ctx, dynamo.Perturb(x0, 0, delta, runs), cfg.SimConfig())
	if err != nil {
		return err
	}

	finals := make([]float64, len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "run\tphi1(0)\tphi1(T)\tphi2(T)\tdrift")
	for i, res := range results {
		last := res.States[len(res.States)-1]
		finals[i] = last[0]
		fmt.Fprintf(w, "%d\t%.8f\t%.4f\t%.4f\t%.2e\n", i, res.States[0][0], last[0], last[1], res.EnergyDrift)
	}
	w.Flush()
	if len(finals) > 1 {
		fmt.Printf("\nfinal phi1 spread: %.4f rad\n", floats.Max(finals)-floats.Min(finals))
	}

	if lyapunov {
		lambda, err := analysis.LyapunovExponent(cfg.System(), integ, x0, cfg.Step, cfg.Duration, 1e-8)
		if err != nil {
			return err
		}
		fmt.Printf("largest Lyapunov exponent: %.4f\n", lambda)
	}
	return nil
}

func runPhase(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return err
	}
	x0 := cfg.State().Vector()

	if poincare {
		section, err := analysis.GeneratePoincareSection(cfg.System(), integ, x0, 0, 0, 1, 3, cfg.Step, cfg.Duration)
		if err != nil {
			return err
		}
		fmt.Printf("Poincare section phi1=0, %d crossings (phi2 vs omega2)\n", len(section.Points))
		fmt.Println(analysis.PoincareSectionToASCII(section, 70, 24))
		return nil
	}

	portrait, err := analysis.GeneratePhasePortrait(cfg.System(), integ, x0, xAxis, yAxis, cfg.Step, cfg.Duration)
	if err != nil {
		return err
	}
	fmt.Printf("phase portrait %s vs %s\n", stateNames[xAxis], stateNames[yAxis])
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 70, 24))
	return nil
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	if component < 0 || component >= len(stateNames) {
		return fmt.Errorf("component must be in [0, %d)", len(stateNames))
	}
	cfg, result, err := simulate(cmd)
	if err != nil {
		return err
	}

	samples := make([]float64, len(result.States))
	for i, x := range result.States {
		samples[i] = x[component]
	}

	freq, err := analysis.DominantFrequency(samples, cfg.Horizon)
	if err != nil {
		return err
	}
	power := analysis.PowerSpectrum(samples)
	half := power[:len(power)/2]
	fmt.Println(asciigraph.Plot(half,
		asciigraph.Height(12),
		asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("power spectrum of %s", stateNames[component])),
	))
	if freq > 0 {
		fmt.Printf("\ndominant frequency: %.4f Hz (period %.3f s)\n", freq, 1/freq)
	} else {
		fmt.Println("\nno oscillation detected")
	}
	return nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, result, err := simulate(cmd)
	if err != nil {
		return err
	}

	pivot := r2.Vec{X: cfg.Pivot.X, Y: cfg.Pivot.Y}
	samples, err := export.Trajectory(result, cfg.System(), pivot)
	if err != nil {
		return err
	}

	if plotDir != "" {
		paths, err := export.SavePlots(plotDir, samples)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	}

	phi1s := make([]float64, len(samples))
	phi2s := make([]float64, len(samples))
	energy := make([]float64, len(samples))
	for i, s := range samples {
		phi1s[i], phi2s[i], energy[i] = s.Phi1, s.Phi2, s.Energy
	}

	fmt.Println(asciigraph.PlotMany([][]float64{phi1s, phi2s},
		asciigraph.Height(15),
		asciigraph.Width(70),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta),
		asciigraph.Caption("phi1 (cyan), phi2 (magenta)"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(8),
		asciigraph.Width(70),
		asciigraph.Caption("energy"),
	))
	return nil
}

func runBifurcation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return err
	}

	data, err := analysis.BifurcationDiagram(cfg.System(), integ, sweepParam, sweepMin, sweepMax, sweepSteps,
		1, cfg.State().Vector(), cfg.Step, transient, cfg.Duration)
	if err != nil {
		return err
	}
	fmt.Printf("bifurcation of phi2 over %s in [%g, %g]\n", sweepParam, sweepMin, sweepMax)
	fmt.Println(analysis.BifurcationToASCII(data, 70, 24))
	return nil
}

// simulate runs the configured batch without metrics.
func simulate(cmd *cobra.Command) (*config.Config, *dynamo.Result, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return nil, nil, err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := dynamo.New(cfg.System(), integ).Run(ctx, cfg.State().Vector(), cfg.SimConfig())
	if err != nil {
		return nil, nil, err
	}
	return cfg, result, nil
}
