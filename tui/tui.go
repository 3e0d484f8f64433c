// Package tui runs an animation in the terminal. Frames are drawn as ASCII
// art and mouse motion over the grid hovers the vertices under the pointer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TFMV/giantgraph/animation"
	"github.com/TFMV/giantgraph/models"
	"github.com/TFMV/giantgraph/render"
)

// Styles
var (
	statusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFF00"))

	stoppedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// footerLines is the status line plus the help line
const footerLines = 2

type keyMap struct {
	Pause key.Binding
	Start key.Binding
	End   key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Pause: key.NewBinding(
		key.WithKeys("p", " "),
		key.WithHelp("p", "pause/unpause"),
	),
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	End: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "end"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Start, k.End, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type tickMsg time.Time

// Model is the bubbletea model driving one controller
type Model struct {
	ctrl     *animation.Controller
	sched    *animation.ManualScheduler
	buf      *render.Buffer
	interval time.Duration
	keys     keyMap
	help     help.Model
	width    int
	height   int
	hovered  int
}

// New creates a model. ctrl must paint on buf and schedule on sched; the
// model steps sched once per tick at fps.
func New(ctrl *animation.Controller, sched *animation.ManualScheduler, buf *render.Buffer, fps int) Model {
	if fps <= 0 {
		fps = animation.DefaultFPS
	}
	return Model{
		ctrl:     ctrl,
		sched:    sched,
		buf:      buf,
		interval: time.Second / time.Duration(fps),
		keys:     keys,
		help:     help.New(),
		width:    80,
		height:   24,
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.sched.Step()
		return m, m.tickCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.ctrl.End()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			switch m.ctrl.State() {
			case animation.Running:
				m.ctrl.Pause()
			case animation.Paused:
				m.ctrl.Unpause()
			}
		case key.Matches(msg, m.keys.Start):
			m.ctrl.Start()
		case key.Matches(msg, m.keys.End):
			m.ctrl.End()
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionMotion {
			if p, ok := m.cellToPoint(msg.X, msg.Y); ok {
				m.hovered += m.ctrl.Hover(p)
			}
		}
	}

	return m, nil
}

// grid returns the ASCII grid size
func (m Model) grid() (int, int) {
	return m.width, m.height - footerLines
}

// cellToPoint maps a terminal cell inside the border to the viewport point at
// the cell's center
func (m Model) cellToPoint(x, y int) (models.Point, bool) {
	cols, rows := m.grid()
	if cols < 3 || rows < 3 {
		return models.Point{}, false
	}
	if x < 1 || x > cols-2 || y < 1 || y > rows-2 {
		return models.Point{}, false
	}

	vp := m.ctrl.Viewport()
	return models.Point{
		X: (float64(x-1) + 0.5) * vp.Width / float64(cols-2),
		Y: (float64(y-1) + 0.5) * vp.Height / float64(rows-2),
	}, true
}

func (m Model) View() string {
	cols, rows := m.grid()
	if cols < 3 || rows < 3 {
		return "terminal too small\n"
	}

	frame := m.buf.Latest()
	if frame == nil {
		frame = m.ctrl.Frame()
	}

	options := render.NewDefaultOptions("ascii")
	options.Columns = cols
	options.Rows = rows
	art, err := render.GenerateWithOptions(frame, options)
	if err != nil {
		return fmt.Sprintf("render failed: %v\n", err)
	}

	return string(art) + m.status(frame) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

func (m Model) status(frame *models.Frame) string {
	text := fmt.Sprintf("%s  frame %d  edges %d/%d  revealed %d/%d  hovered %d",
		frame.State, frame.Number, frame.EdgeCount, frame.MaxEdges,
		frame.Revealed, len(frame.Vertices), m.hovered)

	switch m.ctrl.State() {
	case animation.Paused:
		return pausedStyle.Render(text)
	case animation.Stopped:
		return stoppedStyle.Render(text)
	default:
		return statusStyle.Render(text)
	}
}

// Run starts the controller and runs the program until quit or ctx is done
func Run(ctx context.Context, m Model) error {
	m.ctrl.Start()

	program := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal: %w", err)
	}
	m.ctrl.End()
	return nil
}
