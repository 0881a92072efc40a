// SPDX-License-Identifier: MIT
package bars

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// HueColor returns the fully saturated, full value colour at hue
// 360*yFraction, carrying alpha. Hues outside [0,360) are pinned to 0.
func HueColor(yFraction float64, alpha int) color.NRGBA {
	hue := 360 * yFraction
	if hue < 0 || hue >= 360 {
		hue = 0
	}
	r, g, b := colorful.Hsv(hue, 1.0, 1.0).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha)}
}

// OutlineColor returns the lighter stroke tone for a fill colour: each
// channel moves a quarter of the way towards 255 from a base of 63.
func OutlineColor(c color.NRGBA) color.NRGBA {
	lift := func(v uint8) uint8 { return uint8(63 + 3*int(v)/4) }
	return color.NRGBA{R: lift(c.R), G: lift(c.G), B: lift(c.B), A: c.A}
}
