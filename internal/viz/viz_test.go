package viz

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/session"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != blank|0x1 {
		t.Errorf("cell 0 = %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != blank|0x80 {
		t.Errorf("cell 1 = %U", c.Grid[0][1])
	}

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("expected blank canvas after clear")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 3)
	c.DrawLine(0, 0, 19, 11)

	w, h := c.Size()
	if w != 20 || h != 12 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
	if c.Grid[0][0]&0x1 == 0 || c.Grid[2][9]&0x80 == 0 {
		t.Error("line endpoints not set")
	}
}

func TestProjection(t *testing.T) {
	c := NewCanvas(40, 20)
	pivot := r2.Vec{X: 400, Y: 200}
	proj := FitPendulum(c, pivot, 300)

	x, y := proj.Apply(pivot)
	if x != 40 || y != 40 {
		t.Errorf("pivot at (%d, %d), want canvas center (40, 40)", x, y)
	}

	// Straight down by the full reach stays on the canvas.
	_, y = proj.Apply(r2.Vec{X: 400, Y: 500})
	if _, h := c.Size(); y < 0 || y >= h {
		t.Errorf("extended pendulum off canvas: y = %d", y)
	}
}

func TestSliderBar(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1, "[----]"},
		{100, "[====]"},
		{50.5, "[==--]"},
		{500, "[====]"},
	}
	for _, tt := range tests {
		if got := SliderBar(tt.value, 1, 100, 4); got != tt.want {
			t.Errorf("SliderBar(%g) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestEnergyChart(t *testing.T) {
	if EnergyChart([]float64{1}, 10) != "" {
		t.Error("expected no chart for one value")
	}
	if got := EnergyChart([]float64{5, 5, 5}, 10); !strings.HasPrefix(got, "Energy") {
		t.Errorf("flat history should render a line, got %q", got)
	}
	if got := EnergyChart([]float64{1, 3, 2, 5}, 10); !strings.Contains(got, "Energy") {
		t.Errorf("expected caption, got %q", got)
	}
}

func newModel(t *testing.T) Model {
	t.Helper()
	sess, err := session.New(session.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(sess, Options{Width: 30, Height: 12})
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelTick(t *testing.T) {
	m := newModel(t)
	for i := 0; i < 3; i++ {
		m = update(m, TickMsg(time.Now()))
	}
	if got := m.Frame().Time; got < 0.3-1e-9 || got > 0.3+1e-9 {
		t.Errorf("expected t = 0.3 after three ticks, got %g", got)
	}
	if m.Status() != nil {
		t.Errorf("unexpected status %v", m.Status())
	}

	view := m.View()
	for _, want := range []string{"DOUBLE PENDULUM", "RUNNING", "l1", "m2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelPause(t *testing.T) {
	m := newModel(t)
	m = update(m, key(" "))
	if m.Running() {
		t.Fatal("expected paused model")
	}
	m = update(m, TickMsg(time.Now()))
	if m.Frame().Time != 0 {
		t.Errorf("paused model advanced to %g", m.Frame().Time)
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("expected PAUSED in view")
	}
}

func TestModelSliders(t *testing.T) {
	m := newModel(t)

	m = update(m, key("up"))
	if got := m.sess.Params().L1; got != 153 {
		t.Errorf("expected l1 153 after one step up, got %g", got)
	}

	m = update(m, key("tab"))
	m = update(m, key("tab"))
	m = update(m, key("down"))
	if got := m.sess.Params().M1; got != 49 {
		t.Errorf("expected m1 49, got %g", got)
	}

	for i := 0; i < 20; i++ {
		m = update(m, key("J"))
	}
	if got := m.sess.Params().M1; got != 1 {
		t.Errorf("expected m1 clamped to 1, got %g", got)
	}
}

func TestModelReset(t *testing.T) {
	m := newModel(t)
	for i := 0; i < 5; i++ {
		m = update(m, TickMsg(time.Now()))
	}
	m = update(m, key("r"))
	if m.Frame().Time != 0 || m.Frame().State != physics.DefaultState() {
		t.Errorf("reset did not restore the initial frame: %+v", m.Frame())
	}
}

func TestModelHoldsOnInvalidParams(t *testing.T) {
	m := newModel(t)
	m = update(m, TickMsg(time.Now()))
	held := m.Frame()

	bad := physics.DefaultParams()
	bad.M2 = -1
	if err := m.sess.SetParams(bad); err == nil {
		t.Fatal("expected rejection")
	}

	m = update(m, TickMsg(time.Now()))
	if !errors.Is(m.Status(), dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter status, got %v", m.Status())
	}
	if m.Frame() != held {
		t.Error("frame changed while parameters were invalid")
	}
	if !strings.Contains(m.View(), "HOLD") {
		t.Error("expected HOLD status in view")
	}
}

func TestModelQuit(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
