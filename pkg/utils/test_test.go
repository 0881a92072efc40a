// SPDX-License-Identifier: MIT
package utils

import (
	"errors"
	"math"
	"testing"
)

const (
	testSize       = 1024
	testSampleRate = 44100
	testFrequency  = 440.0 // A4 note
)

func TestMockSource(t *testing.T) {
	m := &MockSource{Frames: [][]int16{{1, 2}, {3, 4}}}

	if _, err := m.ReadFrame(); !errors.Is(err, ErrMockStopped) {
		t.Fatalf("ReadFrame before Start: err = %v, want ErrMockStopped", err)
	}

	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	want := [][]int16{{1, 2}, {3, 4}, {3, 4}}
	for i, w := range want {
		got, err := m.ReadFrame()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got[0] != w[0] || got[1] != w[1] {
			t.Errorf("read %d = %v, want %v", i, got, w)
		}
	}
	if m.Reads != 3 {
		t.Errorf("Reads = %d, want 3", m.Reads)
	}

	// Returned frames are copies.
	got, _ := m.ReadFrame()
	got[0] = 99
	if m.Frames[1][0] != 3 {
		t.Error("ReadFrame returned the scripted slice instead of a copy")
	}

	_ = m.Stop()
	if m.IsRunning() {
		t.Error("IsRunning after Stop")
	}
	_ = m.Release()
	if !m.Released() {
		t.Error("Released() = false after Release")
	}
}

func TestGenerateComplexWave(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
	}{
		{"Standard", 1024, 44100},
		{"Small", 16, 8000},
		{"Large", 8192, 96000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateComplexWave(tt.size, tt.sampleRate)

			if len(result) != tt.size {
				t.Errorf("GenerateComplexWave() buffer size = %d, want %d",
					len(result), tt.size)
			}

			hasNonZero := false
			for _, v := range result {
				if v != 0 {
					hasNonZero = true
					break
				}
			}
			if !hasNonZero {
				t.Errorf("GenerateComplexWave() produced all zeros")
			}
		})
	}
}

func TestGenerateSineWave(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
		frequency  float64
	}{
		{"A4 Note", testSize, testSampleRate, testFrequency},
		{"Middle C", testSize, testSampleRate, 261.63},
		{"Low Sample Rate", testSize, 8000, testFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateSineWave(tt.size, tt.sampleRate, tt.frequency, 16000)

			if len(result) != tt.size {
				t.Fatalf("GenerateSineWave() buffer size = %d, want %d", len(result), tt.size)
			}

			samplesPerCycle := tt.sampleRate / tt.frequency
			crossCount := 0
			for i := 1; i < tt.size; i++ {
				if (result[i-1] < 0 && result[i] >= 0) ||
					(result[i-1] >= 0 && result[i] < 0) {
					crossCount++
				}
			}

			// Two crossings per cycle, 20% margin for phase alignment.
			expectedCrossings := float64(tt.size) / (samplesPerCycle / 2)
			tolerance := 0.2 * expectedCrossings
			if math.Abs(float64(crossCount)-expectedCrossings) > tolerance {
				t.Errorf("zero crossings = %d, expected approximately %.1f±%.1f",
					crossCount, expectedCrossings, tolerance)
			}
		})
	}
}

func TestGenerateSineWaveClampsAmplitude(t *testing.T) {
	result := GenerateSineWave(testSize, testSampleRate, testFrequency, 1e9)
	for i, v := range result {
		if v == math.MinInt16 {
			t.Fatalf("sample %d reached MinInt16, amplitude not clamped", i)
		}
	}
}

func TestAppendSineWaveIsContinuous(t *testing.T) {
	whole := GenerateSineWave(256, 8000, 300, 10000)
	split := AppendSineWave(nil, 128, 0, 8000, 300, 10000)
	split = AppendSineWave(split, 128, 128, 8000, 300, 10000)
	for i := range whole {
		if whole[i] != split[i] {
			t.Fatalf("sample %d: %d != %d", i, whole[i], split[i])
		}
	}
}

func TestImpulse(t *testing.T) {
	frame := Impulse(8, math.MaxInt16)
	if frame[0] != math.MaxInt16 {
		t.Errorf("frame[0] = %d", frame[0])
	}
	for i := 1; i < len(frame); i++ {
		if frame[i] != 0 {
			t.Errorf("frame[%d] = %d, want 0", i, frame[i])
		}
	}
	if len(Impulse(0, 1)) != 0 {
		t.Error("Impulse(0) should be empty")
	}
}
