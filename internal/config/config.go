// SPDX-License-Identifier: MIT
package config

import "errors"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Core configuration constants that define the boundaries and defaults
// for the capture pipeline and the bar animation.
const (
	// Audio source defaults.
	DefaultSource          = SourceDevice
	DefaultDeviceID        = MinDeviceID // System default input device
	DefaultFramesPerBuffer = 1024        // Transform size, must be a power of 2
	DefaultGateThreshold   = 0.0         // Gate fully open
	DefaultLoop            = true        // File sources restart at EOF

	// Spectrum defaults.
	DefaultLayout      = "interleaved" // N real samples read as N/2 complex pairs
	DefaultWindow      = "none"        // No analysis window in the active path
	DefaultBandLimited = false         // Peak search over all bins
	DefaultMinHz       = 50.0          // Lower edge of the band-limited mode
	DefaultMaxHz       = 600.0         // Upper edge of the band-limited mode

	// Animation defaults. Bar geometry is in surface pixels.
	DefaultFPS              = 30   // Tick cadence of the driver
	DefaultBarWidth         = 25   // Width of each grid bar
	DefaultBarPitch         = 40   // Horizontal distance between grid bar left edges
	DefaultFirstBarX        = 5    // Left edge of the first grid bar
	DefaultSteps            = 20   // Steps between baseline and full level
	DefaultPause            = 3    // Ticks held at full level before falling
	DefaultOriginLevel      = 10.0 // Resting bar height above the baseline
	DefaultBaselineFraction = 0.05 // Baseline height as a fraction of the surface
	DefaultAlphaFloor       = 50   // Bars never fade below this alpha
	DefaultTapBarWidth      = 25   // Width of bars created by a tap
	DefaultAmplitudeScale   = 1.0  // Multiplier applied to each estimate
	DefaultSeed             = 0    // 0 seeds the hue jitter from the clock

	// Display defaults.
	DefaultDisplayMode    = DisplayTerminal
	DefaultCellWidth      = 8  // Surface pixels per terminal column
	DefaultCellHeight     = 16 // Surface pixels per terminal row
	DefaultPages          = 1  // Surface width in visible widths
	DefaultHeadlessWidth  = 800
	DefaultHeadlessHeight = 480

	DefaultLogLevel = "info"
	DefaultLogFile  = "decibel.log"

	// Hardware limits.
	MinDeviceID     = -1 // -1 represents the system default device
	MaxBufferFrames = 8192
)

// Source kinds.
const (
	SourceDevice = "device"
	SourceFile   = "file"
	SourceDemo   = "demo"
	SourceNone   = "none"
)

// Display modes.
const (
	DisplayTerminal = "terminal"
	DisplayHeadless = "headless"
)

// DefaultSampleRates is the negotiation order for capture sample rates.
var DefaultSampleRates = []float64{8000, 11025, 22050, 44100}

// DefaultBitDepths is the negotiation order for capture sample widths.
var DefaultBitDepths = []int{8, 16}

// DefaultChannels is the negotiation order for capture channel counts.
var DefaultChannels = []int{1, 2}

// Config holds all runtime configuration, built from defaults, an optional
// YAML file, ENV_ variables and command line flags, in that order.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	LogFile   string          `yaml:"log_file"`
	Command   string          `yaml:"-"` // One-off command such as "list"
	Audio     AudioConfig     `yaml:"audio"`
	Spectrum  SpectrumConfig  `yaml:"spectrum"`
	Animation AnimationConfig `yaml:"animation"`
	Display   DisplayConfig   `yaml:"display"`
}

// AudioConfig selects and shapes the audio source.
type AudioConfig struct {
	Source          string    `yaml:"source"`            // device, file, demo or none
	InputDevice     int       `yaml:"input_device"`      // PortAudio device index (-1 for default)
	File            string    `yaml:"file"`              // WAV path for the file source
	FramesPerBuffer int       `yaml:"frames_per_buffer"` // Samples per frame, also the transform size
	SampleRates     []float64 `yaml:"sample_rates"`      // Negotiation order
	BitDepths       []int     `yaml:"bit_depths"`        // Negotiation order (8 or 16)
	Channels        []int     `yaml:"channels"`          // Negotiation order
	GateThreshold   float64   `yaml:"gate_threshold"`    // 0.0-1.0 of full scale
	Loop            bool      `yaml:"loop"`              // Restart file sources at EOF
}

// SpectrumConfig controls the amplitude estimator.
type SpectrumConfig struct {
	Layout      string  `yaml:"layout"`       // interleaved or padded
	Window      string  `yaml:"window"`       // none, hann, hamming, ...
	BandLimited bool    `yaml:"band_limited"` // Restrict the peak search to MinHz..MaxHz
	MinHz       float64 `yaml:"min_hz"`
	MaxHz       float64 `yaml:"max_hz"`
}

// AnimationConfig holds the bar layout and state machine constants.
type AnimationConfig struct {
	FPS              int     `yaml:"fps"`
	BarWidth         int     `yaml:"bar_width"`
	BarPitch         int     `yaml:"bar_pitch"`
	FirstBarX        int     `yaml:"first_bar_x"`
	Steps            int     `yaml:"steps"`
	Pause            int     `yaml:"pause"`
	OriginLevel      float64 `yaml:"origin_level"`
	BaselineFraction float64 `yaml:"baseline_fraction"`
	AlphaFloor       int     `yaml:"alpha_floor"`
	TapBarWidth      int     `yaml:"tap_bar_width"`
	AmplitudeScale   float64 `yaml:"amplitude_scale"`
	Seed             uint64  `yaml:"seed"`
}

// DisplayConfig controls the renderer.
type DisplayConfig struct {
	Mode           string `yaml:"mode"`        // terminal or headless
	CellWidth      int    `yaml:"cell_width"`  // Surface pixels per column
	CellHeight     int    `yaml:"cell_height"` // Surface pixels per row
	Pages          int    `yaml:"pages"`       // Surface width in visible widths
	HeadlessWidth  int    `yaml:"headless_width"`
	HeadlessHeight int    `yaml:"headless_height"`
}

// NewConfig creates a new Config instance with default values.
// This is the base configuration before a config file, the
// environment or command line flags are applied.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile,
		Audio: AudioConfig{
			Source:          DefaultSource,
			InputDevice:     DefaultDeviceID,
			FramesPerBuffer: DefaultFramesPerBuffer,
			SampleRates:     append([]float64(nil), DefaultSampleRates...),
			BitDepths:       append([]int(nil), DefaultBitDepths...),
			Channels:        append([]int(nil), DefaultChannels...),
			GateThreshold:   DefaultGateThreshold,
			Loop:            DefaultLoop,
		},
		Spectrum: SpectrumConfig{
			Layout:      DefaultLayout,
			Window:      DefaultWindow,
			BandLimited: DefaultBandLimited,
			MinHz:       DefaultMinHz,
			MaxHz:       DefaultMaxHz,
		},
		Animation: AnimationConfig{
			FPS:              DefaultFPS,
			BarWidth:         DefaultBarWidth,
			BarPitch:         DefaultBarPitch,
			FirstBarX:        DefaultFirstBarX,
			Steps:            DefaultSteps,
			Pause:            DefaultPause,
			OriginLevel:      DefaultOriginLevel,
			BaselineFraction: DefaultBaselineFraction,
			AlphaFloor:       DefaultAlphaFloor,
			TapBarWidth:      DefaultTapBarWidth,
			AmplitudeScale:   DefaultAmplitudeScale,
			Seed:             DefaultSeed,
		},
		Display: DisplayConfig{
			Mode:           DefaultDisplayMode,
			CellWidth:      DefaultCellWidth,
			CellHeight:     DefaultCellHeight,
			Pages:          DefaultPages,
			HeadlessWidth:  DefaultHeadlessWidth,
			HeadlessHeight: DefaultHeadlessHeight,
		},
	}
}
