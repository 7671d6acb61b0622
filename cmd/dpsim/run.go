package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/export"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/metrics"
	"github.com/san-kum/dpsim/internal/session"
	"github.com/san-kum/dpsim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	format     string
	outputPath string
	plotDir    string
	speedLimit float64

	fps       int
	themeName string
	width     int
	height    int
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch simulation and print or export the trajectory",
		RunE:  runBatch,
	}
	cmd.Flags().StringVarP(&format, "format", "f", "summary", "output format (summary, csv, json)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&plotDir, "plot", "", "also write PNG plots to this directory")
	cmd.Flags().Float64Var(&speedLimit, "speed-limit", 50, "angular speed counted as unstable")
	return cmd
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view with parameter sliders",
		RunE:  runLive,
	}
	addLiveFlags(cmd)
	return cmd
}

func addLiveFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&fps, "fps", 30, "frames per second")
	cmd.Flags().StringVar(&themeName, "theme", viz.Themes[0].Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))
	cmd.Flags().IntVar(&width, "width", 80, "canvas width in characters")
	cmd.Flags().IntVar(&height, "height", 30, "canvas height in characters")
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("available presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s  l=(%g, %g) m=(%g, %g) phi=(%.3f, %.3f) t=%gs\n",
					name,
					p.Params.L1, p.Params.L2, p.Params.M1, p.Params.M2,
					p.InitState.Phi1, p.InitState.Phi2, p.Duration)
			}
		},
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	settings, err := session.FromConfig(cfg)
	if err != nil {
		return err
	}
	sess, err := session.New(settings)
	if err != nil {
		return err
	}

	model := viz.NewModel(sess, viz.Options{
		Width:  width,
		Height: height,
		FPS:    fps,
		Pivot:  settings.Pivot,
		Theme:  themeName,
	})

	logger.Debug("starting live view", "fps", fps, "theme", themeName)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return err
	}

	sys := cfg.System()
	sim := dynamo.New(sys, integ)
	sim.AddMetric(metrics.NewEnergy(sys))
	sim.AddMetric(metrics.NewEnergyDrift(sys))
	sim.AddMetric(metrics.NewStability(speedLimit))
	sim.AddMetric(metrics.NewMaxAngularSpeed())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, runErr := sim.Run(ctx, cfg.State().Vector(), cfg.SimConfig())
	elapsed := time.Since(start)
	if runErr != nil {
		if result == nil || len(result.States) < 2 {
			return runErr
		}
		logger.Warn("simulation stopped early, writing partial output", "err", runErr, "frames", result.StepsTaken)
	}
	logger.Info("simulation finished", "frames", result.StepsTaken, "elapsed", elapsed)

	pivot := r2.Vec{X: cfg.Pivot.X, Y: cfg.Pivot.Y}
	samples, err := export.Trajectory(result, sys, pivot)
	if err != nil {
		return err
	}

	if plotDir != "" {
		paths, err := export.SavePlots(plotDir, samples)
		if err != nil {
			return err
		}
		for _, p := range paths {
			logger.Info("plot written", "path", p)
		}
	}

	out, closeOut, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := writeOutput(out, cfg, samples, result, elapsed); err != nil {
		return err
	}
	return runErr
}

func writeOutput(out io.Writer, cfg *config.Config, samples []export.Sample, result *dynamo.Result, elapsed time.Duration) error {
	switch format {
	case "csv":
		return export.WriteCSV(out, samples)
	case "json":
		return export.WriteJSON(out, &export.Run{
			Params:      cfg.PhysicsParams(),
			Gravity:     cfg.Gravity,
			Integrator:  cfg.Integrator,
			Step:        cfg.Step,
			Horizon:     cfg.Horizon,
			Duration:    cfg.Duration,
			Frames:      result.StepsTaken,
			EnergyDrift: result.EnergyDrift,
			Metrics:     result.Metrics,
			Samples:     samples,
		})
	case "summary":
		printSummary(out, cfg, samples, result, elapsed)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func printSummary(w io.Writer, cfg *config.Config, samples []export.Sample, result *dynamo.Result, elapsed time.Duration) {
	last := samples[len(samples)-1]
	fmt.Fprintf(w, "integrator:   %s (step %g, horizon %g)\n", cfg.Integrator, cfg.Step, cfg.Horizon)
	fmt.Fprintf(w, "frames:       %d in %v\n", result.StepsTaken, elapsed.Round(time.Microsecond))
	fmt.Fprintf(w, "final time:   %.3f\n", last.Time)
	fmt.Fprintf(w, "final state:  phi1=%.4f phi2=%.4f omega1=%.4f omega2=%.4f\n",
		last.Phi1, last.Phi2, last.Omega1, last.Omega2)
	fmt.Fprintf(w, "bob2:         (%.2f, %.2f)\n", last.X2, last.Y2)
	fmt.Fprintf(w, "energy drift: %.3e\n", result.EnergyDrift)

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-18s %.6g\n", name, result.Metrics[name])
	}
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
