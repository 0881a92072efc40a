// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "decibel.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Animation.Steps != DefaultSteps || cfg.Animation.Pause != DefaultPause {
		t.Errorf("expected default steps/pause, got %d/%d", cfg.Animation.Steps, cfg.Animation.Pause)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeTempConfig(t, `
log_level: debug
audio:
  source: demo
  frames_per_buffer: 512
animation:
  fps: 60
  steps: 10
  seed: 42
spectrum:
  layout: padded
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Audio.Source != SourceDemo || cfg.Audio.FramesPerBuffer != 512 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Animation.FPS != 60 || cfg.Animation.Steps != 10 || cfg.Animation.Seed != 42 {
		t.Errorf("animation = %+v", cfg.Animation)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Animation.BarPitch != DefaultBarPitch {
		t.Errorf("BarPitch = %d, want %d", cfg.Animation.BarPitch, DefaultBarPitch)
	}
	if cfg.Spectrum.Layout != "padded" {
		t.Errorf("Layout = %q, want padded", cfg.Spectrum.Layout)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_AUDIO_SOURCE", SourceNone)
	t.Setenv("ENV_FPS", "12")
	t.Setenv("ENV_SEED", "7")
	t.Setenv("ENV_LOG_LEVEL", "warn")

	path := writeTempConfig(t, "audio:\n  source: demo\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Audio.Source != SourceNone {
		t.Errorf("Source = %q, want %q", cfg.Audio.Source, SourceNone)
	}
	if cfg.Animation.FPS != 12 || cfg.Animation.Seed != 7 || cfg.LogLevel != "warn" {
		t.Errorf("env overrides not applied: %+v %q", cfg.Animation, cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"Defaults", func(c *Config) {}, ""},
		{"UnknownSource", func(c *Config) { c.Audio.Source = "radio" }, "audio.source"},
		{"FileWithoutPath", func(c *Config) { c.Audio.Source = SourceFile }, "audio.file"},
		{"NonPowerOfTwo", func(c *Config) { c.Audio.FramesPerBuffer = 1000 }, "try 1024"},
		{"TooLarge", func(c *Config) { c.Audio.FramesPerBuffer = 16384 }, "outside"},
		{"GateRange", func(c *Config) { c.Audio.GateThreshold = 1.5 }, "gate_threshold"},
		{"BitDepth", func(c *Config) { c.Audio.BitDepths = []int{24} }, "bit_depths"},
		{"Band", func(c *Config) { c.Spectrum.BandLimited = true; c.Spectrum.MinHz = 700 }, "min_hz"},
		{"ZeroFPS", func(c *Config) { c.Animation.FPS = 0 }, "fps"},
		{"ZeroSteps", func(c *Config) { c.Animation.Steps = 0 }, "steps"},
		{"NegativePause", func(c *Config) { c.Animation.Pause = -1 }, "pause"},
		{"ZeroPitch", func(c *Config) { c.Animation.BarPitch = 0 }, "bar_pitch"},
		{"AlphaFloor", func(c *Config) { c.Animation.AlphaFloor = 300 }, "alpha_floor"},
		{"Display", func(c *Config) { c.Display.Mode = "canvas" }, "display.mode"},
		{"Cells", func(c *Config) { c.Display.CellWidth = 0 }, "cell sizes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.errMsg)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}
