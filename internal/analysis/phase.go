package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/dpsim/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// GeneratePhasePortrait runs a simulation and records the (xIdx, yIdx)
// projection of the trajectory after every step.
func GeneratePhasePortrait(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	xIdx, yIdx int,
	dt, duration float64,
) (*PhasePortrait2D, error) {
	if xIdx < 0 || yIdx < 0 || xIdx >= len(x0) || yIdx >= len(x0) {
		return nil, fmt.Errorf("%w: indices (%d, %d) for %d-dim state", dynamo.ErrDimensionMismatch, xIdx, yIdx, len(x0))
	}
	n, err := dynamo.StepCount(0, duration, dt)
	if err != nil {
		return nil, err
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, min(n, 1<<16)),
	}

	x := x0.Clone()
	for i := 0; i < n; i++ {
		if x, err = integ.Step(sys, x, float64(i)*dt, dt); err != nil {
			return portrait, err
		}
		portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}

	return portrait, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	// 10% padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Axes, where they cross the visible area.
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection records points when a trajectory crosses a plane
type PoincareSection struct {
	Points []Point
}

// GeneratePoincareSection records (recordX, recordY) each time component
// crossIdx crosses threshold upward, linearly interpolated to the
// crossing. For the double pendulum the usual choice is crossIdx 0 at
// threshold 0, recording (phi2, omega2).
func GeneratePoincareSection(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	crossIdx int,
	threshold float64,
	recordX, recordY int,
	dt, duration float64,
) (*PoincareSection, error) {
	for _, idx := range []int{crossIdx, recordX, recordY} {
		if idx < 0 || idx >= len(x0) {
			return nil, fmt.Errorf("%w: index %d for %d-dim state", dynamo.ErrDimensionMismatch, idx, len(x0))
		}
	}
	n, err := dynamo.StepCount(0, duration, dt)
	if err != nil {
		return nil, err
	}

	section := &PoincareSection{}
	x := x0.Clone()
	for i := 0; i < n; i++ {
		prev := x
		if x, err = integ.Step(sys, x, float64(i)*dt, dt); err != nil {
			return section, err
		}

		before, after := prev[crossIdx], x[crossIdx]
		if before < threshold && after >= threshold {
			frac := (threshold - before) / (after - before)
			section.Points = append(section.Points, Point{
				X: prev[recordX] + frac*(x[recordX]-prev[recordX]),
				Y: prev[recordY] + frac*(x[recordY]-prev[recordY]),
			})
		}
	}

	return section, nil
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}
	return PhasePortraitToASCII(&PhasePortrait2D{Points: section.Points}, width, height)
}
