// Package tui hosts the interaction loop in a terminal: bubbletea feeds
// input events in and a lipgloss canvas draws the map.
package tui

import (
	"sync/atomic"
	"time"

	"github.com/OCAP2/mapview/internal/camera"
	"github.com/OCAP2/mapview/internal/hints"
	"github.com/OCAP2/mapview/internal/input"
	"github.com/OCAP2/mapview/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// A terminal cell is about twice as tall as it is wide, so one row spans two
// screen units.
const cellHeight = 2

// Frontend is the loop driven by the terminal. *ui.UI implements it.
type Frontend interface {
	Event(ev input.Event) (hints.Mode, *hints.RenderingHints)
	Draw(r ui.Renderer, h *hints.RenderingHints)
	Camera() *camera.Camera
}

// Quitter replaces os.Exit as the loop's exit hook so the terminal is
// restored before the process ends.
type Quitter struct {
	requested atomic.Bool
	code      atomic.Int32
}

func (q *Quitter) Exit(code int) {
	q.code.Store(int32(code))
	q.requested.Store(true)
}

func (q *Quitter) Requested() bool {
	return q.requested.Load()
}

func (q *Quitter) Code() int {
	return int(q.code.Load())
}

type tickMsg time.Time

// Model adapts a Frontend to tea.Model.
type Model struct {
	ui       Frontend
	quit     *Quitter
	interval time.Duration

	width  int
	height int

	mode    hints.Mode
	hints   *hints.RenderingHints
	ticking bool
}

func NewModel(f Frontend, q *Quitter, interval time.Duration) *Model {
	if q == nil {
		q = &Quitter{}
	}
	return &Model{ui: f, quit: q, interval: interval}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.dispatch(input.Resize(float64(msg.Width), float64(msg.Height*cellHeight)))
	case tea.KeyMsg:
		return m.dispatch(input.KeyPress(keyName(msg)))
	case tea.MouseMsg:
		if ev, ok := mouseEvent(msg); ok {
			return m.dispatch(ev)
		}
	case tickMsg:
		m.ticking = false
		return m.dispatch(input.Update(m.interval))
	}
	return m, nil
}

func (m *Model) dispatch(ev input.Event) (tea.Model, tea.Cmd) {
	m.mode, m.hints = m.ui.Event(ev)
	if m.quit.Requested() {
		return m, tea.Quit
	}
	if m.mode == hints.ModeAnimation && !m.ticking {
		m.ticking = true
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})
	}
	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 || m.quit.Requested() {
		return ""
	}
	c := NewCanvas(m.width, m.height, m.ui.Camera())
	m.ui.Draw(c, m.hints)
	return c.String()
}

// keyName maps bubbletea key names onto the names plugins bind. ctrl+c is
// treated as esc so the usual quit path saves state.
func keyName(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeySpace:
		return "space"
	case tea.KeyCtrlC, tea.KeyEsc:
		return "esc"
	case tea.KeyEnter:
		return "enter"
	}
	return msg.String()
}

func mouseEvent(msg tea.MouseMsg) (input.Event, bool) {
	x := float64(msg.X) + 0.5
	y := float64(msg.Y*cellHeight) + cellHeight/2
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		return input.Scroll(x, y, 1), true
	case msg.Button == tea.MouseButtonWheelDown:
		return input.Scroll(x, y, -1), true
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		return input.LeftDown(x, y), true
	case msg.Action == tea.MouseActionRelease:
		return input.LeftUp(x, y), true
	case msg.Action == tea.MouseActionMotion:
		return input.MouseMove(x, y), true
	}
	return input.Event{}, false
}

// Run blocks until the user quits.
func Run(f Frontend, q *Quitter, interval time.Duration, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}, opts...)
	p := tea.NewProgram(NewModel(f, q, interval), opts...)
	_, err := p.Run()
	return err
}
