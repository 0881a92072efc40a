// SPDX-License-Identifier: MIT
package audio

import (
	"decibel/internal/config"
	"fmt"
	"strings"
)

// Source delivers fixed-size mono 16-bit frames. Capture, FileSource and
// DemoSource implement it.
type Source interface {
	Start() error
	Stop() error
	Release() error
	IsRunning() bool
	ReadFrame() ([]int16, error)
	FrameSize() int
	SampleRate() float64
	SetGateThreshold(threshold float64)
}

var (
	_ Source = (*Capture)(nil)
	_ Source = (*FileSource)(nil)
	_ Source = (*DemoSource)(nil)
)

// demoSampleRate is the rate DemoSource synthesises at.
const demoSampleRate = 22050.0

// Open builds the source selected by the audio configuration. A "none"
// source returns a nil Source and no error. The device source requires
// Initialize to have been called.
func Open(cfg config.AudioConfig) (Source, error) {
	var (
		src Source
		err error
	)

	switch strings.ToLower(cfg.Source) {
	case config.SourceNone:
		return nil, nil
	case config.SourceDemo:
		src = NewDemoSource(cfg.FramesPerBuffer, demoSampleRate)
	case config.SourceFile:
		src, err = NewFileSource(cfg.File, cfg.FramesPerBuffer, cfg.Loop)
	case config.SourceDevice:
		device, derr := InputDevice(cfg.InputDevice)
		if derr != nil {
			return nil, fmt.Errorf("%w: %w", ErrCaptureUnavailable, derr)
		}
		src, err = Negotiate(device, cfg.FramesPerBuffer, device.DefaultHighInputLatency,
			cfg.SampleRates, cfg.BitDepths, cfg.Channels)
	default:
		return nil, fmt.Errorf("unknown audio source: '%s'", cfg.Source)
	}
	if err != nil {
		return nil, err
	}

	src.SetGateThreshold(cfg.GateThreshold)
	return src, nil
}
