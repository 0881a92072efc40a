// SPDX-License-Identifier: MIT
/*
Package render draws the bar collection.

The terminal renderer is a Bubble Tea program: every terminal cell stands
for a block of surface pixels, window resizes rebuild the collection, mouse
clicks add bars and focus changes pause or resume capture. The headless
renderer only logs summaries.
*/
package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"decibel/internal/animator"
	"decibel/internal/bars"
	"decibel/internal/config"
	"decibel/internal/driver"
	"decibel/internal/log"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E8B04B")).
			Bold(true)
)

// statusRows is the number of rows below the canvas.
const statusRows = 1

type frameMsg time.Time

// Model is the Bubble Tea model of the terminal renderer.
type Model struct {
	anim    *animator.Animator
	drv     *driver.Driver
	display config.DisplayConfig
	keys    keyMap

	canvas   *Canvas
	offsetX  float64 // Surface x of the leftmost visible pixel
	targetX  float64 // Where scrolling is heading
	velocity float64
	spring   harmonica.Spring
	surface  int // Surface width in pixels
	ready    bool
	err      error
}

// NewModel creates a terminal renderer for anim, pausing and resuming drv.
func NewModel(anim *animator.Animator, drv *driver.Driver, display config.DisplayConfig) *Model {
	return &Model{
		anim:    anim,
		drv:     drv,
		display: display,
		keys:    newKeyMap(),
		canvas:  NewCanvas(0, 0, display.CellWidth, display.CellHeight),
		spring:  harmonica.NewSpring(harmonica.FPS(int(time.Second/drv.Interval())), 8.0, 1.0),
	}
}

// Init starts the redraw loop.
func (m *Model) Init() tea.Cmd {
	return m.frame()
}

func (m *Model) frame() tea.Cmd {
	return tea.Tick(m.drv.Interval(), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update handles input and redraw ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case frameMsg:
		m.glide()
		return m, m.frame()

	case tea.FocusMsg:
		m.drv.Resume()

	case tea.BlurMsg:
		m.drv.Pause()

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.tap(msg.X, msg.Y)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.drv.TogglePause()
		case key.Matches(msg, m.keys.Left):
			m.scroll(-1)
		case key.Matches(msg, m.keys.Right):
			m.scroll(1)
		}
	}

	return m, nil
}

// resize rebuilds the collection for a terminal of cols x rows cells. A
// failed rebuild keeps the previous collection.
func (m *Model) resize(cols, rows int) {
	rows -= statusRows
	m.canvas = NewCanvas(cols, rows, m.display.CellWidth, m.display.CellHeight)

	pages := max(m.display.Pages, 1)
	width := cols * m.canvas.CellWidth * pages
	height := rows * m.canvas.CellHeight

	if err := m.anim.Rebuild(width, height); err != nil {
		log.Warnf("Render: Keeping previous bars: %v", err)
		m.err = err
		return
	}
	m.err = nil
	m.ready = true
	m.surface = width
	m.scroll(0)
	m.offsetX, m.velocity = m.targetX, 0
}

// scroll moves the scroll target by a quarter of the visible width per
// step, clamped to the surface. The window glides there on later frames.
func (m *Model) scroll(steps int) {
	visible := m.canvas.VisibleWidth()
	m.targetX += float64(steps) * visible / 4
	m.targetX = min(max(m.targetX, 0), max(float64(m.surface)-visible, 0))
}

// glide advances the visible window one frame towards the scroll target.
func (m *Model) glide() {
	if m.offsetX == m.targetX {
		return
	}
	m.offsetX, m.velocity = m.spring.Update(m.offsetX, m.velocity, m.targetX)
	if math.Abs(m.offsetX-m.targetX) < 0.5 && math.Abs(m.velocity) < 0.5 {
		m.offsetX, m.velocity = m.targetX, 0
	}
}

// tap adds a bar under the clicked cell.
func (m *Model) tap(col, row int) {
	x := m.offsetX + float64(col*m.canvas.CellWidth)
	y := float64(row * m.canvas.CellHeight)
	if err := m.anim.CreateAt(x, 0); err != nil {
		log.Warnf("Render: Ignoring tap at (%.0f, %.0f): %v", x, y, err)
	}
}

// OffsetX returns the surface x of the leftmost visible pixel.
func (m *Model) OffsetX() float64 {
	return m.offsetX
}

// TargetX returns the offset scrolling is heading to.
func (m *Model) TargetX() float64 {
	return m.targetX
}

// View renders the bars and a status line.
func (m *Model) View() string {
	if !m.ready {
		if m.err != nil {
			return fmt.Sprintf("Error: %v", m.err)
		}
		return "Initializing..."
	}

	m.canvas.Reset(m.offsetX)
	m.anim.Each(func(_ int, b bars.Bar) {
		m.canvas.Draw(b)
	})

	return m.canvas.Render() + "\n" + m.status()
}

func (m *Model) status() string {
	state := "live"
	switch {
	case m.drv.Silent():
		state = warnStyle.Render("silent")
	case m.drv.Paused():
		state = warnStyle.Render("paused")
	}

	return titleStyle.Render("decibel") + infoStyle.Render(fmt.Sprintf(" %d bars • %s • ",
		m.anim.Len(), state)) +
		infoStyle.Render(fmt.Sprintf("%s/%s: Scroll • %s: Pause • %s: Quit",
			m.keys.Left.Help().Key, m.keys.Right.Help().Key, m.keys.Pause.Help().Key, m.keys.Quit.Help().Key))
}

// Run starts the terminal renderer and blocks until it quits or ctx is
// cancelled.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(
		m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
