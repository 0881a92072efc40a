// SPDX-License-Identifier: MIT
package config

import (
	"decibel/pkg/bitint"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "decibel.yaml"

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches the default location ("decibel.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the ranges the animator and the estimator rely on.
// Names understood by other packages (spectrum layout and window) are
// checked where they are parsed.
func (c *Config) Validate() error {
	switch c.Audio.Source {
	case SourceDevice, SourceFile, SourceDemo, SourceNone:
	default:
		return fmt.Errorf("%w: unknown audio.source %q", ErrInvalidConfig, c.Audio.Source)
	}
	if c.Audio.Source == SourceFile && c.Audio.File == "" {
		return fmt.Errorf("%w: audio.file must be set when audio.source is %q", ErrInvalidConfig, SourceFile)
	}
	if !bitint.IsPowerOfTwo(c.Audio.FramesPerBuffer) {
		return fmt.Errorf("%w: audio.frames_per_buffer %d is not a power of 2 (try %d)",
			ErrInvalidConfig, c.Audio.FramesPerBuffer, bitint.NextPowerOfTwo(c.Audio.FramesPerBuffer))
	}
	if c.Audio.FramesPerBuffer < 2 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("%w: audio.frames_per_buffer %d outside [2, %d]",
			ErrInvalidConfig, c.Audio.FramesPerBuffer, MaxBufferFrames)
	}
	if c.Audio.GateThreshold < 0 || c.Audio.GateThreshold > 1 {
		return fmt.Errorf("%w: audio.gate_threshold %.3f outside [0, 1]", ErrInvalidConfig, c.Audio.GateThreshold)
	}
	for _, depth := range c.Audio.BitDepths {
		if depth != 8 && depth != 16 {
			return fmt.Errorf("%w: audio.bit_depths entry %d (want 8 or 16)", ErrInvalidConfig, depth)
		}
	}

	if c.Spectrum.BandLimited && c.Spectrum.MinHz >= c.Spectrum.MaxHz {
		return fmt.Errorf("%w: spectrum.min_hz %.1f must be below spectrum.max_hz %.1f",
			ErrInvalidConfig, c.Spectrum.MinHz, c.Spectrum.MaxHz)
	}

	a := c.Animation
	switch {
	case a.FPS <= 0:
		return fmt.Errorf("%w: animation.fps must be positive", ErrInvalidConfig)
	case a.BarWidth <= 0 || a.TapBarWidth <= 0:
		return fmt.Errorf("%w: bar widths must be positive", ErrInvalidConfig)
	case a.BarPitch <= 0:
		return fmt.Errorf("%w: animation.bar_pitch must be positive", ErrInvalidConfig)
	case a.Steps <= 0:
		return fmt.Errorf("%w: animation.steps must be positive", ErrInvalidConfig)
	case a.Pause < 0:
		return fmt.Errorf("%w: animation.pause must not be negative", ErrInvalidConfig)
	case a.AlphaFloor < 0 || a.AlphaFloor > 255:
		return fmt.Errorf("%w: animation.alpha_floor %d outside [0, 255]", ErrInvalidConfig, a.AlphaFloor)
	case a.BaselineFraction < 0 || a.BaselineFraction >= 1:
		return fmt.Errorf("%w: animation.baseline_fraction %.3f outside [0, 1)", ErrInvalidConfig, a.BaselineFraction)
	}

	switch c.Display.Mode {
	case DisplayTerminal, DisplayHeadless:
	default:
		return fmt.Errorf("%w: unknown display.mode %q", ErrInvalidConfig, c.Display.Mode)
	}
	if c.Display.CellWidth <= 0 || c.Display.CellHeight <= 0 || c.Display.Pages <= 0 {
		return fmt.Errorf("%w: display cell sizes and pages must be positive", ErrInvalidConfig)
	}

	return nil
}

// applyEnvOverrides applies ENV_ variables on top of the loaded file.
// Malformed numeric values are ignored.
func (c *Config) applyEnvOverrides() {
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
	}

	// ENV_AUDIO_{...}
	// These are specific to the audio source.

	// ENV_AUDIO_SOURCE
	if val, ok := os.LookupEnv("ENV_AUDIO_SOURCE"); ok {
		c.Audio.Source = val
	}
	// ENV_AUDIO_FILE
	if val, ok := os.LookupEnv("ENV_AUDIO_FILE"); ok {
		c.Audio.File = val
	}

	// ENV_FPS
	if val, ok := os.LookupEnv("ENV_FPS"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Animation.FPS = n
		}
	}
	// ENV_SEED
	if val, ok := os.LookupEnv("ENV_SEED"); ok {
		if n, err := strconv.ParseUint(val, 10, 64); err == nil {
			c.Animation.Seed = n
		}
	}
}
