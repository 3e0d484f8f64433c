package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/giantgraph/animation"
	"github.com/TFMV/giantgraph/render"
)

func newModel(t *testing.T) (Model, *animation.Controller, *animation.ManualScheduler) {
	return newModelWithSensitivity(t, 10)
}

func newModelWithSensitivity(t *testing.T, sensitivity float64) (Model, *animation.Controller, *animation.ManualScheduler) {
	t.Helper()
	sched := animation.NewManualScheduler()
	buf := render.NewBuffer()
	ctrl, err := animation.New(animation.Options{
		Surface:                buf,
		Scheduler:              sched,
		Width:                  400,
		Height:                 200,
		VertexRadius:           1,
		VertexCount:            8,
		VertexColor:            render.White(),
		VertexMaxSpeed:         4,
		VertexMouseSensitivity: sensitivity,
		EdgeWidth:              1,
		EdgeThreshold:          200,
		EdgeColor:              render.White(),
		Seed:                   3,
	})
	require.NoError(t, err)

	m := New(ctrl, sched, buf, 30)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 42, Height: 14})
	return updated.(Model), ctrl, sched
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTickStepsScheduler(t *testing.T) {
	m, ctrl, sched := newModel(t)
	ctrl.Start()
	require.Equal(t, 1, sched.Pending())

	updated, cmd := m.Update(tickMsg{})
	assert.NotNil(t, cmd)
	assert.Equal(t, 2, ctrl.Stats().EdgeCount)

	_, _ = updated.Update(tickMsg{})
	assert.Equal(t, 3, ctrl.Stats().EdgeCount)
}

func TestPauseKeyToggles(t *testing.T) {
	m, ctrl, _ := newModel(t)

	// no effect while stopped
	m.Update(runes("p"))
	assert.Equal(t, animation.Stopped, ctrl.State())

	m.Update(runes("s"))
	assert.Equal(t, animation.Running, ctrl.State())

	m.Update(runes("p"))
	assert.Equal(t, animation.Paused, ctrl.State())

	m.Update(runes("p"))
	assert.Equal(t, animation.Running, ctrl.State())

	m.Update(runes("e"))
	assert.Equal(t, animation.Stopped, ctrl.State())
}

func TestQuitEndsAnimation(t *testing.T) {
	m, ctrl, _ := newModel(t)
	ctrl.Start()

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, animation.Stopped, ctrl.State())
}

func TestCellToPoint(t *testing.T) {
	m, _, _ := newModel(t)

	// 40x10 interior cells over a 400x200 viewport
	p, ok := m.cellToPoint(1, 1)
	require.True(t, ok)
	assert.InDelta(t, 5.0, p.X, 1e-9)
	assert.InDelta(t, 10.0, p.Y, 1e-9)

	p, ok = m.cellToPoint(40, 10)
	require.True(t, ok)
	assert.InDelta(t, 395.0, p.X, 1e-9)
	assert.InDelta(t, 190.0, p.Y, 1e-9)

	for _, cell := range [][2]int{{0, 5}, {41, 5}, {5, 0}, {5, 11}} {
		_, ok := m.cellToPoint(cell[0], cell[1])
		assert.False(t, ok, cell)
	}
}

func TestMouseMotionHovers(t *testing.T) {
	m, ctrl, _ := newModelWithSensitivity(t, 1000)
	ctrl.Start()

	var model tea.Model = m
	model, _ = model.Update(tea.MouseMsg{X: 20, Y: 5, Action: tea.MouseActionMotion})
	assert.Equal(t, 8, model.(Model).hovered)

	// the border and presses are ignored
	model, _ = model.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion})
	model, _ = model.Update(tea.MouseMsg{X: 20, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, 8, model.(Model).hovered)

	for _, v := range ctrl.Vertices() {
		assert.Equal(t, 50, v.BoostRemaining())
	}
}

func TestViewDrawsGridAndStatus(t *testing.T) {
	m, ctrl, _ := newModel(t)
	ctrl.Start()

	view := m.View()
	lines := strings.Split(view, "\n")
	require.GreaterOrEqual(t, len(lines), 14)
	assert.Equal(t, 42, len([]rune(lines[0])))
	assert.Contains(t, view, "running  frame 1  edges 1/28")
}

func TestViewTooSmall(t *testing.T) {
	m, _, _ := newModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 2, Height: 3})
	assert.Equal(t, "terminal too small\n", updated.View())
}
