// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"sync/atomic"
)

// Gate silences frames whose peak sample does not exceed a threshold.
// The zero value is an open gate.
type Gate struct {
	threshold atomic.Int32 // Peak level in 16-bit sample units, 0 = open.
}

// SetGateThreshold adjusts the noise gate threshold.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (g *Gate) SetGateThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}

	g.threshold.Store(int32(threshold * float64(math.MaxInt16)))
}

// GateThreshold returns the current threshold in the range 0.0-1.0.
func (g *Gate) GateThreshold() float64 {
	return float64(g.threshold.Load()) / float64(math.MaxInt16)
}

// Apply zeroes frame in place when its peak is at or below the threshold
// and reports whether the frame was silenced.
func (g *Gate) Apply(frame []int16) bool {
	threshold := g.threshold.Load()
	if threshold == 0 {
		return false
	}

	if peakAmplitude(frame) > threshold {
		return false
	}
	clear(frame)
	return true
}

// peakAmplitude returns the largest absolute sample value of frame.
func peakAmplitude(frame []int16) int32 {
	var peak int32
	for _, s := range frame {
		// Get absolute value without branching.
		sample := int32(s)
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask

		// Update max using math instead of branching.
		diff := amplitude - peak
		peak += diff & ^(diff >> 31)
	}
	return peak
}
