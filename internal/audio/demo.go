// SPDX-License-Identifier: MIT
package audio

import (
	"decibel/pkg/utils"
	"math"
	"sync"
)

const (
	demoBaseHz    = 110.0
	demoStepHz    = 55.0
	demoSteps     = 16 // Tones in one sweep.
	demoEnvelope  = 24 // Frames in one loudness cycle.
	demoMinVolume = 0.05
)

// DemoSource synthesises a repeating tone sweep with a rising and falling
// volume. It needs no device and produces the same frames on every run.
type DemoSource struct {
	Gate

	framesPerBuffer int
	sampleRate      float64

	mu       sync.Mutex
	frameNo  int
	frame    []int16
	running  bool
	released bool
}

// NewDemoSource creates a stopped demo source.
func NewDemoSource(framesPerBuffer int, sampleRate float64) *DemoSource {
	return &DemoSource{
		framesPerBuffer: framesPerBuffer,
		sampleRate:      sampleRate,
		frame:           make([]int16, 0, framesPerBuffer),
	}
}

// FrameSize returns the number of samples in every frame.
func (d *DemoSource) FrameSize() int {
	return d.framesPerBuffer
}

// SampleRate returns the synthesis rate (Hz).
func (d *DemoSource) SampleRate() float64 {
	return d.sampleRate
}

func (d *DemoSource) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return ErrSourceStopped
	}
	d.running = true
	return nil
}

func (d *DemoSource) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
	return nil
}

func (d *DemoSource) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
	d.running = false
	return nil
}

func (d *DemoSource) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// ReadFrame synthesises the next frame. The returned slice is only valid
// until the next call.
func (d *DemoSource) ReadFrame() ([]int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil, ErrSourceStopped
	}

	n := d.frameNo
	d.frameNo++

	freq := demoBaseHz + demoStepHz*float64(n%demoSteps)
	volume := demoMinVolume + (1-demoMinVolume)*triangle(n, demoEnvelope)

	d.frame = utils.AppendSineWave(d.frame[:0], d.framesPerBuffer, n*d.framesPerBuffer,
		d.sampleRate, freq, volume*math.MaxInt16)

	d.Apply(d.frame)
	return d.frame, nil
}

// triangle returns a 0..1..0 ramp of the given period evaluated at n.
func triangle(n, period int) float64 {
	half := float64(period) / 2
	p := math.Mod(float64(n), float64(period))
	return 1 - math.Abs(p-half)/half
}
