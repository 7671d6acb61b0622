package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

func series(samples []Sample, x, y func(Sample) float64) plotter.XYs {
	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i].X = x(s)
		pts[i].Y = y(s)
	}
	return pts
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

// AnglePlot draws phi1(t) and phi2(t).
func AnglePlot(samples []Sample) (*plot.Plot, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d", len(samples))
	}
	p := newPlot("Rod angles", "time (s)", "angle (rad)")
	t := func(s Sample) float64 { return s.Time }
	err := plotutil.AddLines(p,
		"phi1", series(samples, t, func(s Sample) float64 { return s.Phi1 }),
		"phi2", series(samples, t, func(s Sample) float64 { return s.Phi2 }),
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// PathPlot draws the path of the lower bob. Screen y points down, so it
// is negated to keep the pendulum hanging below the pivot.
func PathPlot(samples []Sample) (*plot.Plot, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d", len(samples))
	}
	p := newPlot("Lower bob path", "x", "-y")
	line, err := plotter.NewLine(series(samples,
		func(s Sample) float64 { return s.X2 },
		func(s Sample) float64 { return -s.Y2 },
	))
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = plotutil.Color(2)
	p.Add(line)
	return p, nil
}

// EnergyPlot draws total energy over time.
func EnergyPlot(samples []Sample) (*plot.Plot, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d", len(samples))
	}
	p := newPlot("Total energy", "time (s)", "E")
	line, err := plotter.NewLine(series(samples,
		func(s Sample) float64 { return s.Time },
		func(s Sample) float64 { return s.Energy },
	))
	if err != nil {
		return nil, err
	}
	p.Add(line)
	return p, nil
}

// WritePlot renders p in the given format ("png", "svg", "pdf", ...).
func WritePlot(w io.Writer, p *plot.Plot, format string) error {
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SavePlot writes p to path; the format follows the file extension.
func SavePlot(path string, p *plot.Plot) error {
	if err := p.Save(DefaultWidth, DefaultHeight, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// SavePlots writes the angle, path and energy plots into dir.
func SavePlots(dir string, samples []Sample) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	builders := []struct {
		name  string
		build func([]Sample) (*plot.Plot, error)
	}{
		{"angles.png", AnglePlot},
		{"path.png", PathPlot},
		{"energy.png", EnergyPlot},
	}

	written := make([]string, 0, len(builders))
	for _, b := range builders {
		p, err := b.build(samples)
		if err != nil {
			return written, fmt.Errorf("%s: %w", b.name, err)
		}
		path := filepath.Join(dir, b.name)
		if err := SavePlot(path, p); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
