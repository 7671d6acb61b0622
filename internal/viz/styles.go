package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

type styles struct {
	canvas  lipgloss.Style
	panel   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	active  lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	errLine lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2).Foreground(t.Canvas),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(46),
		header:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		active:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		running: lipgloss.NewStyle().Foreground(t.Canvas).Bold(true),
		paused:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		errLine: lipgloss.NewStyle().Foreground(t.Error).Width(40),
		graph:   lipgloss.NewStyle().Foreground(t.Canvas).Padding(1, 0),
		help:    lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
	}
}

// SliderBar draws value's position in [lo, hi] as a fixed-width bar.
func SliderBar(value, lo, hi float64, width int) string {
	ratio := 0.0
	if hi > lo {
		ratio = (value - lo) / (hi - lo)
	}
	ratio = math.Max(0, math.Min(1, ratio))
	filled := int(math.Round(ratio * float64(width)))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

// EnergyChart plots the recent energy history. A flat history has no
// useful scale and renders as a single line.
func EnergyChart(values []float64, width int) string {
	if len(values) < 2 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if hi-lo <= 1e-12*math.Max(1, math.Abs(hi)) {
		return "Energy " + strings.Repeat("─", width)
	}
	return asciigraph.Plot(values,
		asciigraph.Height(4),
		asciigraph.Width(width),
		asciigraph.Caption("Energy"),
	)
}
