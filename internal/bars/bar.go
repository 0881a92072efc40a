// SPDX-License-Identifier: MIT
/*
Package bars implements a single animated bar: its geometry, its
WAITING/UP/PAUSED/DOWN state machine and the alpha and hue mapping that
is recomputed on every tick.

A bar is armed by Trigger, which jumps straight to the fully risen point
and holds there for Pause+1 ticks before falling back one step per tick.
UP is never entered through Trigger; it is kept so a rising animation can
be driven by setting the state directly.
*/
package bars

import (
	"fmt"
	"image/color"
	"math"
)

// State is the animation phase of a bar.
type State int

const (
	Waiting State = iota
	Up
	Down
	Paused
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "WAITING"
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Paused:
		return "PAUSED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Rect is the bar geometry in surface pixels, y growing downwards.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Width returns Right-Left.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Params are the per-bar constants shared by every bar of an animator.
type Params struct {
	Steps       int     // Steps between baseline and full level, > 0
	Pause       int     // Extra ticks held at full level
	OriginLevel float64 // Resting height above the baseline
	AlphaFloor  int     // Minimum alpha after every tick

	// BaselineFraction places the bar bottom this fraction of the surface
	// height above the surface bottom.
	BaselineFraction float64
}

// DefaultParams returns the stock bar constants.
func DefaultParams() Params {
	return Params{
		Steps:            20,
		Pause:            3,
		OriginLevel:      10,
		AlphaFloor:       50,
		BaselineFraction: 0.05,
	}
}

// Random is the hue jitter source. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

// Bar is one animated vertical element. Fields are exported for the
// renderer; only the animator that owns a bar mutates it.
type Bar struct {
	Rect      Rect
	Height    int // Surface height the bar was built for
	MaxHeight int // 80% of Height, kept for renderers
	XOffset   int // Baseline offset above the surface bottom

	Color color.NRGBA // Hue at full saturation and value, A = Alpha
	Alpha int

	Level       float64 // Target displacement, replaced by Trigger
	OriginLevel float64

	Steps       int
	CurrentStep int
	Pause       int
	PausedStep  int

	AlphaFloor int
	State      State
}

// New creates a bar in WAITING at the given rectangle. The rectangle's top
// is derived from its bottom and the origin level.
func New(left, width float64, height int, params Params) (*Bar, error) {
	if height <= 0 {
		return nil, fmt.Errorf("%w: surface height %d", ErrInvalidGeometry, height)
	}
	if params.Steps <= 0 {
		return nil, fmt.Errorf("%w: steps %d", ErrInvalidGeometry, params.Steps)
	}

	offset := int(float64(height) * params.BaselineFraction)
	bottom := float64(height - offset)

	return &Bar{
		Rect: Rect{
			Left:   left,
			Right:  left + width,
			Bottom: bottom,
			Top:    bottom - params.OriginLevel,
		},
		Height:      height,
		MaxHeight:   int(float64(height) * 0.8),
		XOffset:     offset,
		Color:       color.NRGBA{B: 100},
		Alpha:       0,
		Level:       params.OriginLevel,
		OriginLevel: params.OriginLevel,
		Steps:       params.Steps,
		Pause:       params.Pause,
		AlphaFloor:  params.AlphaFloor,
		State:       Waiting,
	}, nil
}

// Trigger arms the bar with a new level. The caller must only trigger a
// bar that is WAITING.
func (b *Bar) Trigger(level float64) {
	b.CurrentStep = b.Steps
	b.Level = level
	b.State = Paused
	b.PausedStep = 0
}

// Tick advances the state machine by one step and recomputes the top edge,
// alpha and colour.
func (b *Bar) Tick(rng Random) {
	switch b.State {
	case Up:
		b.CurrentStep++
		if b.CurrentStep >= b.Steps {
			b.CurrentStep = b.Steps // a bar set UP at the top must not overshoot
			b.State = Paused
			b.PausedStep = 0
		}
	case Down:
		if b.CurrentStep > 0 {
			b.CurrentStep--
		} else {
			b.State = Waiting
		}
	case Paused:
		b.PausedStep++
		if b.PausedStep > b.Pause {
			b.State = Down
		}
	}

	fraction := b.Fraction()
	drawAt := b.Level * fraction
	b.Rect.Top = b.Rect.Bottom - b.OriginLevel - drawAt

	b.Alpha = AlphaFor(fraction, b.AlphaFloor)

	yFraction := b.Rect.Top/float64(b.Height) + 0.05 - 0.1*rng.Float64()
	b.Color = HueColor(WrapUnit(yFraction), b.Alpha)
}

// Fraction returns CurrentStep/Steps.
func (b *Bar) Fraction() float64 {
	return float64(b.CurrentStep) / float64(b.Steps)
}

// AlphaFor maps a rise fraction to an alpha: a ramp up to 128 over the
// first quarter, then a ramp back down to 0 at the top, clamped to floor.
func AlphaFor(fraction float64, floor int) int {
	var alpha int
	if fraction <= 0.25 {
		alpha = int(math.Round(128 * 4 * fraction))
	} else {
		alpha = int(math.Round(-128 * (fraction - 1) / 0.75))
	}
	if alpha < floor {
		alpha = floor
	}
	if alpha > 255 {
		alpha = 255
	}
	return alpha
}

// WrapUnit folds f into [0,1) with a single correction of one unit in
// either direction. Values further out are left as is.
func WrapUnit(f float64) float64 {
	if f < 0 {
		f += 1
	}
	if f >= 1 {
		f -= 1
	}
	return f
}
