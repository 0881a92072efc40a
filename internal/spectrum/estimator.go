// SPDX-License-Identifier: MIT
/*
Package spectrum turns one captured sample frame into a single amplitude
estimate: the samples are widened into an interleaved real/imaginary
buffer, a complex forward transform runs over it, and the largest bin
magnitude is returned.

Two buffer layouts are supported. Interleaved (the default) reuses the N
widened samples directly as N/2 complex pairs, so odd samples act as the
imaginary parts; this matches the behaviour the bars were tuned against.
Padded places each sample in the real slot of its own complex value with
a zero imaginary part, which is the conventional spectrum of the frame.
*/
package spectrum

import (
	"decibel/internal/log"
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Layout selects how a frame of N real samples fills the complex buffer.
type Layout int

const (
	// Interleaved reads the N samples as N/2 complex pairs.
	Interleaved Layout = iota
	// Padded widens each sample to a complex value with zero imaginary part.
	Padded
)

func (l Layout) String() string {
	switch l {
	case Interleaved:
		return "interleaved"
	case Padded:
		return "padded"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout converts a layout name (case-insensitive) to a Layout.
func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(name) {
	case "", "interleaved":
		return Interleaved, nil
	case "padded":
		return Padded, nil
	default:
		return Interleaved, fmt.Errorf("unknown spectrum layout: '%s'", name)
	}
}

// Options tune the estimator. The zero value is the unrestricted peak
// search over the interleaved layout with no window.
type Options struct {
	Layout Layout
	Window WindowFunc

	// BandLimited restricts the peak search to bins whose centre frequency
	// lies in [MinHz, MaxHz] and divides the result by the frame length.
	BandLimited bool
	MinHz       float64
	MaxHz       float64
}

// Pre-allocated buffers for one estimate.
type workspace struct {
	buffer []float64    // Interleaved re/im slots.
	coeffs []complex128 // Transform input and output, in place.
	window []float64    // Window coefficients, nil when no window is used.
	mu     sync.Mutex   // Serialises estimates sharing the buffers.
}

// Estimator converts fixed-size sample frames into amplitude estimates.
// The frame size is fixed at construction from the negotiated capture
// buffer size.
type Estimator struct {
	frameSize  int
	sampleRate float64
	opts       Options
	fft        *fourier.CmplxFFT
	bins       int // Bins searched for the peak, always frameSize/2.
	bandLo     int // First bin of the band-limited search.
	bandHi     int // One past the last bin of the band-limited search.
	workspace  workspace
}

// New creates an Estimator for frames of frameSize samples captured at
// sampleRate Hz. The sample rate is only used to map bins to frequencies.
func New(frameSize int, sampleRate float64, opts Options) (*Estimator, error) {
	if frameSize < 2 {
		return nil, fmt.Errorf("%w: frame size must be at least 2, got %d", ErrInvalidTransformSize, frameSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %f", ErrInvalidTransformSize, sampleRate)
	}

	var slots int
	switch opts.Layout {
	case Interleaved:
		slots = frameSize - frameSize%2
	case Padded:
		slots = 2 * frameSize
	default:
		return nil, fmt.Errorf("%w: unknown layout %v", ErrInvalidTransformSize, opts.Layout)
	}

	e := &Estimator{
		frameSize:  frameSize,
		sampleRate: sampleRate,
		opts:       opts,
		fft:        fourier.NewCmplxFFT(slots / 2),
		bins:       frameSize / 2,
		workspace: workspace{
			buffer: make([]float64, slots),
			coeffs: make([]complex128, slots/2),
			window: windowCoefficients(frameSize, opts.Window),
		},
	}

	e.bandLo, e.bandHi = 0, e.bins
	if opts.BandLimited {
		e.bandLo, e.bandHi = e.bins, e.bins
		for i := 0; i < e.bins; i++ {
			f := e.FrequencyForBin(i)
			if f >= opts.MinHz && e.bandLo == e.bins {
				e.bandLo = i
			}
			if f <= opts.MaxHz {
				e.bandHi = i + 1
			}
		}
		if e.bandHi < e.bandLo {
			e.bandHi = e.bandLo
		}
	}

	log.Infof("Spectrum: Initializing Estimator (Frame: %d, SampleRate: %.1f Hz, Layout: %v, Window: %v, Bins: %d..%d)",
		frameSize, sampleRate, opts.Layout, opts.Window, e.bandLo, e.bandHi)

	return e, nil
}

// EstimateAmplitude returns the largest bin magnitude of the frame's
// spectrum. The frame must hold exactly FrameSize samples.
func (e *Estimator) EstimateAmplitude(frame []int16) (float64, error) {
	if len(frame) != e.frameSize {
		return 0, fmt.Errorf("%w: got %d samples, want %d", ErrInvalidFrameSize, len(frame), e.frameSize)
	}

	ws := &e.workspace
	ws.mu.Lock()
	defer ws.mu.Unlock()

	// --- 1. Widen into the interleaved buffer ---
	switch e.opts.Layout {
	case Interleaved:
		for i := range ws.buffer {
			ws.buffer[i] = float64(frame[i])
		}
		if ws.window != nil {
			for i := range ws.buffer {
				ws.buffer[i] *= ws.window[i]
			}
		}
	case Padded:
		for i, s := range frame {
			v := float64(s)
			if ws.window != nil {
				v *= ws.window[i]
			}
			ws.buffer[2*i] = v
			ws.buffer[2*i+1] = 0
		}
	}

	// --- 2. Forward transform in place ---
	for i := range ws.coeffs {
		ws.coeffs[i] = complex(ws.buffer[2*i], ws.buffer[2*i+1])
	}
	e.fft.Coefficients(ws.coeffs, ws.coeffs)

	// --- 3. Peak bin magnitude ---
	var peak float64
	for i := e.bandLo; i < e.bandHi; i++ {
		if m := cmplx.Abs(ws.coeffs[i]); m > peak {
			peak = m
		}
	}

	if e.opts.BandLimited {
		peak /= float64(e.frameSize)
	}
	return peak, nil
}

// FrequencyForBin returns the centre frequency (Hz) of a bin, or 0 for
// out of range indexes. Reporting only.
func (e *Estimator) FrequencyForBin(binIndex int) float64 {
	if binIndex < 0 || binIndex >= e.bins {
		return 0.0
	}
	return float64(binIndex) * (e.sampleRate / float64(e.frameSize))
}

// PeakFrequency returns the frequency of the loudest searched bin of the
// most recent estimate.
func (e *Estimator) PeakFrequency() float64 {
	e.workspace.mu.Lock()
	defer e.workspace.mu.Unlock()

	best, bestMag := e.bandLo, math.Inf(-1)
	for i := e.bandLo; i < e.bandHi; i++ {
		if m := cmplx.Abs(e.workspace.coeffs[i]); m > bestMag {
			best, bestMag = i, m
		}
	}
	return e.FrequencyForBin(best)
}

// FrameSize returns the number of samples every frame must hold.
func (e *Estimator) FrameSize() int {
	return e.frameSize
}

// SampleRate returns the configured sample rate (Hz).
func (e *Estimator) SampleRate() float64 {
	return e.sampleRate
}
