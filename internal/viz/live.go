package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/session"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	defaultWidth  = 60
	defaultHeight = 24
	trailCapacity = 200
	energyWindow  = 300
)

type Options struct {
	Width, Height int // canvas size in characters
	FPS           int
	Pivot         r2.Vec
	Theme         string
}

type TickMsg time.Time

// Model is the live view of a session. Every tick advances the session
// by one frame and redraws the canvas.
type Model struct {
	sess     *session.Session
	canvas   *Canvas
	pivot    r2.Vec
	interval time.Duration

	frame    session.Frame
	trail    []r2.Vec
	energy   []float64
	running  bool
	selected int
	status   error
	theme    int
	showHelp bool
}

func NewModel(sess *session.Session, opts Options) Model {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Pivot == (r2.Vec{}) {
		opts.Pivot = physics.DefaultPivot
	}

	theme := 0
	for i, name := range ThemeNames() {
		if name == opts.Theme {
			theme = i
		}
	}

	return Model{
		sess:     sess,
		canvas:   NewCanvas(opts.Width, opts.Height),
		pivot:    opts.Pivot,
		interval: time.Second / time.Duration(opts.FPS),
		frame:    sess.Current(),
		trail:    make([]r2.Vec, 0, trailCapacity),
		energy:   make([]float64, 0, energyWindow),
		running:  true,
		theme:    theme,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(session.SliderNames)
		case "shift+tab":
			m.selected = (m.selected + len(session.SliderNames) - 1) % len(session.SliderNames)
		case "up", "k":
			m.adjust(1)
		case "down", "j":
			m.adjust(-1)
		case "pgup", "K":
			m.adjust(10)
		case "pgdown", "J":
			m.adjust(-10)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the session by one frame. Errors are shown in the status
// line and the last valid frame stays on screen.
func (m *Model) step() {
	frame, err := m.sess.Tick()
	m.status = err
	if err != nil {
		return
	}
	m.frame = frame

	m.trail = append(m.trail, frame.Bob2)
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
	m.energy = append(m.energy, frame.Energy)
	if len(m.energy) > energyWindow {
		m.energy = m.energy[1:]
	}
}

func (m *Model) adjust(delta float64) {
	name := session.SliderNames[m.selected]
	m.status = m.sess.SetSlider(name, m.sess.Slider(name)+delta)
	m.frame = m.sess.Current()
}

// reset restores the initial state. Slider positions are kept.
func (m *Model) reset() {
	m.sess.Reset()
	m.frame = m.sess.Current()
	m.trail = m.trail[:0]
	m.energy = m.energy[:0]
	m.status = nil
}

// draw renders rods, bobs and the lower bob's trail.
func (m *Model) draw() {
	m.canvas.Clear()
	p := m.sess.Params()
	proj := FitPendulum(m.canvas, m.pivot, p.L1+p.L2)

	for _, pt := range m.trail {
		x, y := proj.Apply(pt)
		m.canvas.Set(x, y)
	}

	px, py := proj.Apply(m.pivot)
	x1, y1 := proj.Apply(m.frame.Bob1)
	x2, y2 := proj.Apply(m.frame.Bob2)
	m.canvas.DrawLine(px, py, x1, y1)
	m.canvas.DrawLine(x1, y1, x2, y2)
	m.canvas.DrawDisc(px, py, 1)
	m.canvas.DrawDisc(x1, y1, bobRadius(p.M1))
	m.canvas.DrawDisc(x2, y2, bobRadius(p.M2))
}

// bobRadius grows with the cube root of mass, 1 to 4 sub-pixels.
func bobRadius(mass float64) int {
	r := int(math.Round(math.Cbrt(mass)))
	return max(1, min(4, r))
}

func (m Model) statusLine(st styles) string {
	switch {
	case m.status != nil:
		return st.errLine.Render("HOLD: " + m.status.Error())
	case !m.running:
		return st.paused.Render("PAUSED")
	default:
		return st.running.Render("RUNNING")
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	st := newStyles(Themes[m.theme])
	m.draw()
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render("DOUBLE PENDULUM") + "\n")
	s.WriteString(m.statusLine(st) + "\n")

	if chart := EnergyChart(m.energy, 30); chart != "" {
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	w := m.frame.State.Wrapped()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.frame.Time))
	row("Energy", fmt.Sprintf("%.4g", m.frame.Energy))
	row("phi1", fmt.Sprintf("%7.2f°  ω %+.3f", w.Phi1*180/math.Pi, w.Omega1))
	row("phi2", fmt.Sprintf("%7.2f°  ω %+.3f", w.Phi2*180/math.Pi, w.Omega2))

	s.WriteString("\nSLIDERS\n")
	lo, hi := m.sess.SliderRange()
	for i, name := range session.SliderNames {
		v := m.sess.Slider(name)
		line := fmt.Sprintf("%-4s %s %5.1f", name, SliderBar(v, lo, hi, 12), v)
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.value.Render(line) + "\n")
		}
	}

	help := "SP:Pause R:Reset Q:Quit ?:Help"
	if m.showHelp {
		help = strings.Join([]string{
			"Space     pause / resume",
			"R         reset to the initial state",
			"Tab       next slider (Shift+Tab back)",
			"Up/Down   slider ±1 (K/J ±10)",
			"T         cycle theme (" + Themes[m.theme].Name + ")",
			"Q         quit",
		}, "\n")
	}
	s.WriteString(st.help.Render(help))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
}

// Frame returns the frame currently on screen.
func (m Model) Frame() session.Frame { return m.frame }

func (m Model) Running() bool { return m.running }

func (m Model) Status() error { return m.status }
