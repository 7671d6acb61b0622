package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const blank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a character grid where each cell holds 2x4 sub-pixels.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Size is the canvas size in sub-pixels.
func (c *Canvas) Size() (w, h int) {
	return c.Width * 2, c.Height * 4
}

// Set lights the sub-pixel at (x, y). Out of range pixels are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawDisc fills a disc of radius r sub-pixels.
func (c *Canvas) DrawDisc(cx, cy, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.Set(cx+dx, cy+dy)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Projection maps world coordinates (screen convention, y down) onto
// canvas sub-pixels.
type Projection struct {
	Origin r2.Vec // world point drawn at Center
	Center r2.Vec
	Scale  float64
}

// FitPendulum centers pivot on the canvas, slightly above the middle, and
// scales so a fully extended pendulum of the given reach stays visible.
func FitPendulum(c *Canvas, pivot r2.Vec, reach float64) Projection {
	w, h := c.Size()
	scale := 1.0
	if reach > 0 {
		scale = 0.45 * math.Min(float64(w), float64(h)) / reach
	}
	return Projection{
		Origin: pivot,
		Center: r2.Vec{X: float64(w) / 2, Y: float64(h) / 2},
		Scale:  scale,
	}
}

func (p Projection) Apply(v r2.Vec) (int, int) {
	s := r2.Add(p.Center, r2.Scale(p.Scale, r2.Sub(v, p.Origin)))
	return int(math.Round(s.X)), int(math.Round(s.Y))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
