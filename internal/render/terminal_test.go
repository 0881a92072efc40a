// SPDX-License-Identifier: MIT
package render

import (
	"strings"
	"testing"

	"decibel/internal/animator"
	"decibel/internal/bars"
	"decibel/internal/config"
	"decibel/internal/driver"
	"decibel/internal/spectrum"
	"decibel/pkg/utils"

	tea "github.com/charmbracelet/bubbletea"
)

var testDisplay = config.DisplayConfig{CellWidth: 8, CellHeight: 16, Pages: 2}

func newSilentModel(t *testing.T) (*Model, *animator.Animator) {
	t.Helper()
	anim := animator.New(animator.DefaultLayout(), bars.DefaultParams(), 1)
	drv, err := driver.New(anim, nil, nil, 30, 1)
	if err != nil {
		t.Fatalf("driver.New error: %v", err)
	}
	return NewModel(anim, drv, testDisplay), anim
}

func newLiveModel(t *testing.T) (*Model, *utils.MockSource) {
	t.Helper()
	anim := animator.New(animator.DefaultLayout(), bars.DefaultParams(), 1)
	est, err := spectrum.New(8, 8000, spectrum.Options{})
	if err != nil {
		t.Fatal(err)
	}
	src := &utils.MockSource{Frames: [][]int16{utils.Impulse(8, 1000)}}
	src.Start()
	drv, err := driver.New(anim, src, est, 30, 1)
	if err != nil {
		t.Fatalf("driver.New error: %v", err)
	}
	return NewModel(anim, drv, testDisplay), src
}

func TestModelResizeRebuilds(t *testing.T) {
	m, anim := newSilentModel(t)

	if got := m.View(); got != "Initializing..." {
		t.Errorf("View before resize = %q", got)
	}

	// 25 columns x 2 pages x 8px = 400px wide, 10 rows x 16px = 160px high.
	m.Update(tea.WindowSizeMsg{Width: 25, Height: 11})

	if anim.Len() != 10 {
		t.Errorf("Len = %d, want 10", anim.Len())
	}
	if w, h := anim.Surface(); w != 400 || h != 160 {
		t.Errorf("Surface = %dx%d, want 400x160", w, h)
	}

	view := m.View()
	if !strings.Contains(view, "10 bars") || !strings.Contains(view, "silent") {
		t.Errorf("status line missing from view:\n%s", view)
	}
	if lines := strings.Split(view, "\n"); len(lines) != 11 {
		t.Errorf("view has %d lines, want 11", len(lines))
	}
}

func TestModelResizeTooSmallKeepsBars(t *testing.T) {
	m, anim := newSilentModel(t)
	m.Update(tea.WindowSizeMsg{Width: 25, Height: 11})

	m.Update(tea.WindowSizeMsg{Width: 25, Height: 1})
	if anim.Len() != 10 {
		t.Errorf("Len = %d after failed rebuild, want 10", anim.Len())
	}
}

func TestModelScroll(t *testing.T) {
	m, _ := newSilentModel(t)
	m.Update(tea.WindowSizeMsg{Width: 25, Height: 11})

	right := tea.KeyMsg{Type: tea.KeyRight}
	left := tea.KeyMsg{Type: tea.KeyLeft}

	m.Update(right)
	if m.TargetX() != 50 {
		t.Errorf("TargetX = %.0f after one step, want 50", m.TargetX())
	}
	if m.OffsetX() != 0 {
		t.Errorf("OffsetX = %.0f before any frame, want 0", m.OffsetX())
	}
	for i := 0; i < 10; i++ {
		m.Update(right)
	}
	if m.TargetX() != 200 {
		t.Errorf("TargetX = %.0f, want clamped to 200", m.TargetX())
	}

	settle(m)
	if m.OffsetX() != 200 {
		t.Errorf("OffsetX = %.2f after settling, want 200", m.OffsetX())
	}

	for i := 0; i < 10; i++ {
		m.Update(left)
	}
	if m.TargetX() != 0 {
		t.Errorf("TargetX = %.0f, want clamped to 0", m.TargetX())
	}
	settle(m)
	if m.OffsetX() != 0 {
		t.Errorf("OffsetX = %.2f after settling, want 0", m.OffsetX())
	}
}

func TestModelScrollGlides(t *testing.T) {
	m, _ := newSilentModel(t)
	m.Update(tea.WindowSizeMsg{Width: 25, Height: 11})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})

	m.Update(frameMsg{})
	if got := m.OffsetX(); got <= 0 || got >= 50 {
		t.Errorf("OffsetX = %.2f after one frame, want between 0 and 50", got)
	}
}

// settle feeds frames until the scroll animation has finished.
func settle(m *Model) {
	for i := 0; i < 600 && m.OffsetX() != m.TargetX(); i++ {
		m.Update(frameMsg{})
	}
}

func TestModelTapCreatesBar(t *testing.T) {
	m, anim := newSilentModel(t)
	m.Update(tea.WindowSizeMsg{Width: 25, Height: 11})

	click := tea.MouseMsg{X: 3, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m.Update(click)
	if anim.Len() != 11 {
		t.Fatalf("Len = %d after tap, want 11", anim.Len())
	}
	last := anim.Snapshot()[10]
	if last.Rect.Left != 24 || last.Rect.Width() != 25 {
		t.Errorf("tapped bar at %.0f width %.0f, want 24 width 25", last.Rect.Left, last.Rect.Width())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	settle(m)
	m.Update(click)
	if got := anim.Snapshot()[11].Rect.Left; got != 74 {
		t.Errorf("tapped bar after scroll at %.0f, want 74", got)
	}

	release := tea.MouseMsg{X: 3, Y: 2, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
	m.Update(release)
	if anim.Len() != 12 {
		t.Errorf("release added a bar, Len = %d", anim.Len())
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newSilentModel(t)

	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%v: no command returned", msg)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: command did not quit", msg)
		}
	}
}

func TestModelPauseAndFocus(t *testing.T) {
	m, src := newLiveModel(t)
	m.Update(tea.WindowSizeMsg{Width: 25, Height: 11})

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if src.IsRunning() {
		t.Fatal("space should pause capture")
	}
	if !strings.Contains(m.View(), "paused") {
		t.Error("status line should show paused")
	}

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !src.IsRunning() {
		t.Fatal("space should resume capture")
	}

	m.Update(tea.BlurMsg{})
	if src.IsRunning() {
		t.Error("focus loss should pause capture")
	}
	m.Update(tea.FocusMsg{})
	if !src.IsRunning() {
		t.Error("focus gain should resume capture")
	}
}

func TestModelFrameSchedulesNext(t *testing.T) {
	m, _ := newSilentModel(t)
	if m.Init() == nil {
		t.Fatal("Init should schedule a frame")
	}
	if _, cmd := m.Update(frameMsg{}); cmd == nil {
		t.Error("frame should schedule the next frame")
	}
}
