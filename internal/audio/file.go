// SPDX-License-Identifier: MIT
package audio

import (
	"decibel/internal/log"
	"fmt"
	"io"
	"os"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// FileSource replays a PCM WAV file one frame per read.
type FileSource struct {
	Gate

	path            string
	loop            bool
	framesPerBuffer int

	file       *os.File
	dec        *wav.Decoder
	buf        *goaudio.IntBuffer // Interleaved samples at source bit depth.
	frame      []int16
	channels   int
	bitDepth   int
	sampleRate float64

	mu       sync.Mutex
	running  bool
	released bool
}

// NewFileSource opens a WAV file for frame-by-frame playback. With loop set
// the file restarts at its end, otherwise reads past the end return io.EOF.
func NewFileSource(path string, framesPerBuffer int, loop bool) (*FileSource, error) {
	if framesPerBuffer <= 0 {
		return nil, fmt.Errorf("frames per buffer must be positive, got %d", framesPerBuffer)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	s := &FileSource{
		path:            path,
		loop:            loop,
		framesPerBuffer: framesPerBuffer,
		file:            f,
		frame:           make([]int16, framesPerBuffer),
	}
	if err := s.rewind(); err != nil {
		f.Close()
		return nil, err
	}

	s.channels = int(s.dec.NumChans)
	s.bitDepth = int(s.dec.BitDepth)
	s.sampleRate = float64(s.dec.SampleRate)
	if s.channels <= 0 || s.sampleRate <= 0 {
		f.Close()
		return nil, fmt.Errorf("invalid WAV format in %s: %d channel(s) at %.0fHz", path, s.channels, s.sampleRate)
	}
	switch s.bitDepth {
	case 8, 16, 24, 32:
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported WAV bit depth %d in %s", s.bitDepth, path)
	}

	s.buf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: s.channels,
			SampleRate:  int(s.sampleRate),
		},
		Data:           make([]int, framesPerBuffer*s.channels),
		SourceBitDepth: s.bitDepth,
	}

	log.Infof("Audio: Opened '%s' (%.0fHz, %d-bit, %d channel(s), loop: %v)",
		path, s.sampleRate, s.bitDepth, s.channels, loop)
	return s, nil
}

// rewind positions a fresh decoder at the start of the PCM data.
func (s *FileSource) rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind audio file: %w", err)
	}

	dec := wav.NewDecoder(s.file)
	if !dec.IsValidFile() {
		return fmt.Errorf("invalid WAV file: %s", s.path)
	}
	// FwdToPCM positions the reader at the start of PCM data
	if err := dec.FwdToPCM(); err != nil {
		return fmt.Errorf("reading WAV PCM data: %w", err)
	}
	s.dec = dec
	return nil
}

// FrameSize returns the number of mono samples in every frame.
func (s *FileSource) FrameSize() int {
	return s.framesPerBuffer
}

// SampleRate returns the file's sample rate (Hz).
func (s *FileSource) SampleRate() float64 {
	return s.sampleRate
}

// Start resumes playback from the current position.
func (s *FileSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return ErrSourceStopped
	}
	s.running = true
	return nil
}

// Stop pauses playback.
func (s *FileSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

// Release closes the file. It is terminal.
func (s *FileSource) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil
	}
	s.released = true
	s.running = false
	return s.file.Close()
}

// IsRunning reports whether playback is started.
func (s *FileSource) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// ReadFrame returns the next frame of the file's first channel rescaled to
// 16 bits. A trailing partial frame is dropped. The returned slice is only
// valid until the next call.
func (s *FileSource) ReadFrame() ([]int16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil, ErrSourceStopped
	}

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio file: %w", err)
	}
	if n < len(s.buf.Data) {
		if !s.loop {
			return nil, io.EOF
		}
		if err := s.rewind(); err != nil {
			return nil, err
		}
		if n, err = s.dec.PCMBuffer(s.buf); err != nil {
			return nil, fmt.Errorf("failed to decode audio file: %w", err)
		}
		if n < len(s.buf.Data) {
			// Shorter than one frame, nothing to loop over.
			return nil, io.EOF
		}
	}

	for i := range s.frame {
		s.frame[i] = toInt16(s.buf.Data[i*s.channels], s.bitDepth)
	}

	s.Apply(s.frame)
	return s.frame, nil
}

// toInt16 rescales a decoded WAV sample to 16 bits. 8-bit WAV is unsigned.
func toInt16(sample, bitDepth int) int16 {
	switch bitDepth {
	case 8:
		sample = (sample - 128) << 8
	case 24:
		sample >>= 8
	case 32:
		sample >>= 16
	}
	if sample > 32767 {
		sample = 32767
	} else if sample < -32768 {
		sample = -32768
	}
	return int16(sample)
}
