// SPDX-License-Identifier: MIT
package audio

import (
	"decibel/internal/log"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Format is one capture configuration offered to the device.
type Format struct {
	SampleRate float64
	BitDepth   int // 8 or 16
	Channels   int
}

func (f Format) String() string {
	return fmt.Sprintf("%.0fHz, %d-bit, %d channel(s)", f.SampleRate, f.BitDepth, f.Channels)
}

// stream is the subset of *portaudio.Stream used by Capture.
type stream interface {
	Start() error
	Stop() error
	Close() error
	Read() error
}

// openStream opens a blocking input stream reading into buf, which is
// either []int8 or []int16. Swapped out in tests.
var openStream = func(params portaudio.StreamParameters, buf any) (stream, error) {
	return portaudio.OpenStream(params, buf)
}

// Capture is a blocking PortAudio input stream delivering mono 16-bit
// frames of a fixed size.
type Capture struct {
	Gate

	format          Format
	framesPerBuffer int

	stream stream
	raw8   []int8  // Interleaved device buffer for 8-bit formats.
	raw16  []int16 // Interleaved device buffer for 16-bit formats.
	frame  []int16 // First channel, widened. Reused by every read.

	mu       sync.Mutex
	running  bool
	released bool
}

// Negotiate opens the first format the device accepts, trying every
// sample rate, then bit depth, then channel count in the given order.
// The returned capture is stopped.
func Negotiate(device *portaudio.DeviceInfo, framesPerBuffer int, latency time.Duration,
	rates []float64, bitDepths, channels []int) (*Capture, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: no input device", ErrCaptureUnavailable)
	}
	if framesPerBuffer <= 0 {
		return nil, fmt.Errorf("%w: frames per buffer must be positive, got %d", ErrCaptureUnavailable, framesPerBuffer)
	}

	for _, rate := range rates {
		for _, depth := range bitDepths {
			for _, ch := range channels {
				format := Format{SampleRate: rate, BitDepth: depth, Channels: ch}
				log.Debugf("Audio: Attempting %v on '%s'", format, device.Name)

				c, err := openCapture(device, framesPerBuffer, latency, format)
				if err != nil {
					log.Warnf("Audio: %v rejected, keep trying: %v", format, err)
					continue
				}

				log.Infof("Audio: Opened '%s' at %v, %d frames per buffer", device.Name, format, framesPerBuffer)
				return c, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: no supported format on '%s'", ErrCaptureUnavailable, device.Name)
}

func openCapture(device *portaudio.DeviceInfo, framesPerBuffer int, latency time.Duration, format Format) (*Capture, error) {
	if format.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", format.Channels)
	}

	c := &Capture{
		format:          format,
		framesPerBuffer: framesPerBuffer,
		frame:           make([]int16, framesPerBuffer),
	}

	var buf any
	switch format.BitDepth {
	case 8:
		c.raw8 = make([]int8, framesPerBuffer*format.Channels)
		buf = c.raw8
	case 16:
		c.raw16 = make([]int16, framesPerBuffer*format.Channels)
		buf = c.raw16
	default:
		return nil, fmt.Errorf("unsupported bit depth %d", format.BitDepth)
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: format.Channels,
			Device:   device,
			Latency:  latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: framesPerBuffer,
		SampleRate:      format.SampleRate,
	}

	s, err := openStream(params, buf)
	if err != nil {
		return nil, err
	}
	c.stream = s
	return c, nil
}

// Format returns the negotiated capture format.
func (c *Capture) Format() Format {
	return c.format
}

// FrameSize returns the number of mono samples in every frame.
func (c *Capture) FrameSize() int {
	return c.framesPerBuffer
}

// SampleRate returns the negotiated sample rate (Hz).
func (c *Capture) SampleRate() float64 {
	return c.format.SampleRate
}

// Start begins capturing. Starting a running capture is a no-op.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return ErrSourceStopped
	}
	if c.running {
		return nil
	}
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	c.running = true
	return nil
}

// Stop halts capturing. The capture can be started again.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	c.running = false
	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop input stream: %w", err)
	}
	return nil
}

// Release stops the capture and closes the stream. It is terminal.
func (c *Capture) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil
	}
	c.released = true

	var errs []error
	if c.running {
		c.running = false
		errs = append(errs, c.stream.Stop())
	}
	errs = append(errs, c.stream.Close())
	return errors.Join(errs...)
}

// IsRunning reports whether the capture is started.
func (c *Capture) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// ReadFrame blocks until one buffer has been captured and returns its first
// channel as 16-bit samples. The returned slice is only valid until the
// next call.
func (c *Capture) ReadFrame() ([]int16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrSourceStopped
	}

	// An overflow means samples were dropped before this buffer; the buffer
	// itself is still complete.
	if err := c.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
		return nil, fmt.Errorf("failed to read input stream: %w", err)
	}

	ch := c.format.Channels
	if c.raw8 != nil {
		for i := range c.frame {
			c.frame[i] = int16(c.raw8[i*ch]) << 8
		}
	} else {
		for i := range c.frame {
			c.frame[i] = c.raw16[i*ch]
		}
	}

	c.Apply(c.frame)
	return c.frame, nil
}
