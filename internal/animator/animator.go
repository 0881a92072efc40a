// SPDX-License-Identifier: MIT
/*
Package animator owns the ordered bar collection.

Thread Safety:
  - One mutex guards the whole collection and the round-robin pointer
  - Rebuild builds the new row first and swaps it in under the lock
  - Readers only see bars through Each and Snapshot, which copy under the lock
*/
package animator

import (
	"decibel/internal/bars"
	"decibel/internal/log"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Layout holds the grid constants, in surface pixels.
type Layout struct {
	BarWidth    int // Width of each grid bar
	BarPitch    int // Distance between consecutive grid bar left edges
	FirstBarX   int // Left edge of the first grid bar
	TapBarWidth int // Width of bars created by CreateAt callers
}

// DefaultLayout returns the stock grid: 25 wide bars every 40 pixels from x=5.
func DefaultLayout() Layout {
	return Layout{
		BarWidth:    25,
		BarPitch:    40,
		FirstBarX:   5,
		TapBarWidth: 25,
	}
}

// Offer describes what one Advance did.
type Offer struct {
	Index     int  // Bar offered the amplitude, -1 for an empty collection
	Triggered bool // Whether that bar was WAITING and got triggered
}

// Animator is the BarAnimator: an ordered, index-addressable collection of
// bars advanced together once per frame.
type Animator struct {
	mu     sync.Mutex
	bars   []*bars.Bar
	index  int // Round-robin pointer, always in [0, len(bars)) when non-empty
	width  int
	height int
	ticks  uint64

	layout Layout
	params bars.Params
	rng    *rand.Rand // Hue jitter, owned by this animator
}

// New creates an empty animator. The seed fixes the hue jitter sequence.
func New(layout Layout, params bars.Params, seed uint64) *Animator {
	return &Animator{
		layout: layout,
		params: params,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Rebuild replaces the collection with a fresh row laid out left to right
// at the grid pitch. The first bar is always placed; further bars are added
// while their right edge stays below totalWidth.
func (a *Animator) Rebuild(totalWidth, totalHeight int) error {
	if totalHeight <= 0 {
		return fmt.Errorf("%w: surface height %d", bars.ErrInvalidGeometry, totalHeight)
	}

	var row []*bars.Bar
	x := a.layout.FirstBarX
	for {
		b, err := bars.New(float64(x), float64(a.layout.BarWidth), totalHeight, a.params)
		if err != nil {
			return err
		}
		row = append(row, b)
		x += a.layout.BarPitch
		if x+a.layout.BarWidth >= totalWidth {
			break
		}
	}

	a.mu.Lock()
	a.bars = row
	a.width, a.height = totalWidth, totalHeight
	if a.index >= len(row) {
		a.index %= len(row)
	}
	a.mu.Unlock()

	log.Infof("Animator: Rebuilt %d bars for %dx%d surface", len(row), totalWidth, totalHeight)
	return nil
}

// CreateAt appends one bar at x, outside the grid. It becomes the last bar
// reached by the round-robin pointer. Width <= 0 uses the layout tap width.
func (a *Animator) CreateAt(x float64, width int) error {
	if width <= 0 {
		width = a.layout.TapBarWidth
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	b, err := bars.New(x, float64(width), a.height, a.params)
	if err != nil {
		return err
	}
	a.bars = append(a.bars, b)

	log.Debugf("Animator: Created bar %d at x=%.0f (width %d)", len(a.bars)-1, x, width)
	return nil
}

// Advance runs one frame: when hasAmplitude is set the bar under the
// round-robin pointer is triggered if it is WAITING, then every bar ticks in
// index order and the pointer moves on.
func (a *Animator) Advance(amplitude float64, hasAmplitude bool) Offer {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.bars)
	if n == 0 {
		return Offer{Index: -1}
	}

	idx := a.index % n
	offer := Offer{Index: idx}
	if hasAmplitude && a.bars[idx].State == bars.Waiting {
		a.bars[idx].Trigger(amplitude)
		offer.Triggered = true
	}

	for _, b := range a.bars {
		b.Tick(a.rng)
	}

	a.index = (idx + 1) % n
	a.ticks++
	return offer
}

// Each calls fn with a copy of every bar, in order, while holding the
// collection lock. fn must not call back into the animator.
func (a *Animator) Each(fn func(i int, b bars.Bar)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, b := range a.bars {
		fn(i, *b)
	}
}

// Snapshot returns a copy of every bar.
func (a *Animator) Snapshot() []bars.Bar {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]bars.Bar, len(a.bars))
	for i, b := range a.bars {
		out[i] = *b
	}
	return out
}

// Len returns the number of bars.
func (a *Animator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.bars)
}

// Index returns the round-robin pointer.
func (a *Animator) Index() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.index
}

// Ticks returns the number of frames advanced so far.
func (a *Animator) Ticks() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ticks
}

// Surface returns the geometry of the last successful Rebuild.
func (a *Animator) Surface() (width, height int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.width, a.height
}
