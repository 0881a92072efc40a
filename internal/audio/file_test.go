// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV writes interleaved 16-bit samples to a file in t.TempDir.
func writeWAV(t *testing.T, sampleRate, channels int, samples []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	return path
}

func TestFileSourceReadsFirstChannel(t *testing.T) {
	// Three stereo frames of two samples each, right channel negated.
	var samples []int
	for i := 1; i <= 6; i++ {
		samples = append(samples, i*100, -i*100)
	}
	path := writeWAV(t, 8000, 2, samples)

	s, err := NewFileSource(path, 2, false)
	if err != nil {
		t.Fatalf("NewFileSource error: %v", err)
	}
	defer s.Release()

	if s.SampleRate() != 8000 || s.FrameSize() != 2 {
		t.Errorf("SampleRate/FrameSize = %.0f/%d, want 8000/2", s.SampleRate(), s.FrameSize())
	}
	if _, err := s.ReadFrame(); !errors.Is(err, ErrSourceStopped) {
		t.Errorf("read before Start: err = %v, want ErrSourceStopped", err)
	}

	s.Start()
	want := [][]int16{{100, 200}, {300, 400}, {500, 600}}
	for n, w := range want {
		frame, err := s.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", n, err)
		}
		for i := range w {
			if frame[i] != w[i] {
				t.Errorf("frame %d[%d] = %d, want %d", n, i, frame[i], w[i])
			}
		}
	}

	if _, err := s.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("read past end: err = %v, want io.EOF", err)
	}
}

func TestFileSourceLoops(t *testing.T) {
	path := writeWAV(t, 8000, 1, []int{1, 2, 3, 4, 5})

	s, err := NewFileSource(path, 2, true)
	if err != nil {
		t.Fatalf("NewFileSource error: %v", err)
	}
	defer s.Release()
	s.Start()

	// The trailing partial frame {5} is dropped before restarting.
	want := [][]int16{{1, 2}, {3, 4}, {1, 2}, {3, 4}}
	for n, w := range want {
		frame, err := s.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", n, err)
		}
		if frame[0] != w[0] || frame[1] != w[1] {
			t.Errorf("frame %d = %v, want %v", n, frame, w)
		}
	}
}

func TestFileSourceTooShortToLoop(t *testing.T) {
	path := writeWAV(t, 8000, 1, []int{1})

	s, err := NewFileSource(path, 4, true)
	if err != nil {
		t.Fatalf("NewFileSource error: %v", err)
	}
	defer s.Release()
	s.Start()

	if _, err := s.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestFileSourceInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.wav")
	if err := os.WriteFile(junk, []byte("definitely not a RIFF file"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		frames int
	}{
		{"Missing file", filepath.Join(dir, "missing.wav"), 16},
		{"Not a WAV file", junk, 16},
		{"Zero frame size", junk, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFileSource(tt.path, tt.frames, false); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFileSourceRelease(t *testing.T) {
	path := writeWAV(t, 8000, 1, []int{1, 2})

	s, err := NewFileSource(path, 2, false)
	if err != nil {
		t.Fatalf("NewFileSource error: %v", err)
	}
	s.Start()
	if err := s.Release(); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	if s.IsRunning() {
		t.Error("released source reports running")
	}
	if err := s.Start(); !errors.Is(err, ErrSourceStopped) {
		t.Errorf("Start after Release: err = %v, want ErrSourceStopped", err)
	}
	if err := s.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}
}

func TestToInt16(t *testing.T) {
	tests := []struct {
		sample, depth int
		want          int16
	}{
		{128, 8, 0},
		{255, 8, 127 << 8},
		{0, 8, -128 << 8},
		{-1234, 16, -1234},
		{0x7fffff, 24, 0x7fff},
		{-0x800000, 24, -0x8000},
		{0x7fffffff, 32, 0x7fff},
		{40000, 16, 32767},
		{-40000, 16, -32768},
	}
	for _, tt := range tests {
		if got := toInt16(tt.sample, tt.depth); got != tt.want {
			t.Errorf("toInt16(%d, %d) = %d, want %d", tt.sample, tt.depth, got, tt.want)
		}
	}
}
