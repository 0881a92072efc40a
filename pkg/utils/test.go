// SPDX-License-Identifier: MIT
package utils

import (
	"errors"
	"math"
	"sync"
)

// ErrMockStopped is returned by MockSource.ReadFrame while stopped.
var ErrMockStopped = errors.New("mock source stopped")

// MockSource is a scripted audio source for tests. It replays Frames in
// order, repeating the last one once the script is exhausted, and records
// how it was driven.
type MockSource struct {
	Frames   [][]int16
	StartErr error
	StopErr  error
	ReadErr  error

	mu       sync.Mutex
	running  bool
	released bool
	next     int
	Reads    int // Successful ReadFrame calls
	Starts   int
	Stops    int
}

// Start marks the source running.
func (m *MockSource) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Starts++
	if m.StartErr != nil {
		return m.StartErr
	}
	m.running = true
	return nil
}

// Stop marks the source stopped.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stops++
	m.running = false
	return m.StopErr
}

// Release stops the source for good.
func (m *MockSource) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.released = true
	return nil
}

// Released reports whether Release was called.
func (m *MockSource) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

// IsRunning reports whether the source is started.
func (m *MockSource) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// ReadFrame returns a copy of the next scripted frame.
func (m *MockSource) ReadFrame() ([]int16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil, ErrMockStopped
	}
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if len(m.Frames) == 0 {
		return nil, nil
	}
	idx := m.next
	if idx >= len(m.Frames) {
		idx = len(m.Frames) - 1
	} else {
		m.next++
	}
	m.Reads++
	frame := make([]int16, len(m.Frames[idx]))
	copy(frame, m.Frames[idx])
	return frame, nil
}

// GenerateComplexWave returns a 440Hz fundamental plus two harmonics at 90%
// of 16-bit full scale.
func GenerateComplexWave(size int, sampleRate float64) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = int16(math.Round(signal * math.MaxInt16 * 0.9))
	}
	return buffer
}

// GenerateSineWave returns a sine of the given frequency and peak amplitude
// (in sample units, clamped to the int16 range).
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []int16 {
	return AppendSineWave(make([]int16, 0, size), size, 0, sampleRate, frequency, amplitude)
}

// AppendSineWave appends size samples of a sine starting at sample offset
// start, so consecutive calls produce a continuous tone.
func AppendSineWave(dst []int16, size, start int, sampleRate, frequency, amplitude float64) []int16 {
	amplitude = math.Min(math.Abs(amplitude), math.MaxInt16)
	for i := range size {
		t := float64(start+i) / sampleRate
		dst = append(dst, int16(math.Round(math.Sin(2*math.Pi*frequency*t)*amplitude)))
	}
	return dst
}

// Impulse returns a frame of zeros with value at index 0.
func Impulse(size int, value int16) []int16 {
	buffer := make([]int16, size)
	if size > 0 {
		buffer[0] = value
	}
	return buffer
}
