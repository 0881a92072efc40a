package cmd

import (
	"decibel/internal/config"
	"decibel/pkg/build"

	"github.com/spf13/cobra"
)

// flagValues holds raw flag values. They only reach the configuration when
// the flag was set on the command line.
type flagValues struct {
	configPath string
	device     int
	source     string
	file       string
	frames     int
	gate       float64
	layout     string
	window     string
	band       bool
	fps        int
	seed       uint64
	scale      float64
	headless   bool
	pages      int
	logLevel   string
	logFile    string
	verbose    bool
}

// ParseArgs builds the configuration from the config file, ENV_ variables
// and args, in that order of precedence (lowest first). It returns a nil
// configuration when cobra handled the invocation itself (--help, --version).
func ParseArgs(args []string) (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	var (
		options *config.Config
		flags   flagValues
	)

	load := func(cmd *cobra.Command, command string) error {
		cfg, err := config.LoadConfig(flags.configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg, &flags)
		if err := cfg.Validate(); err != nil {
			return err
		}
		cfg.Command = command
		options = cfg
		return nil
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd, "")
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd, "list")
		},
	}
	rootCmd.AddCommand(listCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "C", "",
		"Path to a YAML config file (default: ./"+config.DefaultConfigFile+" when present)")

	// Audio Source Configuration
	pf.IntVarP(&flags.device, "device", "d", config.MinDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	pf.StringVarP(&flags.source, "source", "s", config.DefaultSource,
		"Audio source: device, file, demo or none")
	pf.StringVarP(&flags.file, "file", "f", "",
		"WAV file played by the file source")
	pf.IntVarP(&flags.frames, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"Samples per captured frame, a power of two (also the transform size)")
	pf.Float64VarP(&flags.gate, "gate", "g", config.DefaultGateThreshold,
		"Noise gate threshold, 0.0-1.0 of full scale (0 = open)")

	// Spectrum Configuration
	pf.StringVar(&flags.layout, "layout", config.DefaultLayout,
		"Transform buffer layout: interleaved or padded")
	pf.StringVar(&flags.window, "window", config.DefaultWindow,
		"Analysis window: none, hann, hamming, blackman, ...")
	pf.BoolVar(&flags.band, "band-limited", false,
		"Only search bins between spectrum.min_hz and spectrum.max_hz")

	// Animation Configuration
	pf.IntVar(&flags.fps, "fps", config.DefaultFPS,
		"Animation frames per second")
	pf.Uint64Var(&flags.seed, "seed", config.DefaultSeed,
		"Hue jitter seed (0 = seed from the clock)")
	pf.Float64Var(&flags.scale, "scale", config.DefaultAmplitudeScale,
		"Multiplier applied to every amplitude before it reaches a bar")

	// Display Configuration
	pf.BoolVar(&flags.headless, "headless", false,
		"Run without a terminal UI and log bar summaries")
	pf.IntVar(&flags.pages, "pages", config.DefaultPages,
		"Surface width in screen widths, scrolled with the arrow keys")

	// Debug Configuration
	pf.StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel,
		"Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFile, "log-file", config.DefaultLogFile,
		"Log file used while the terminal UI owns the screen")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false,
		"Show verbose output (same as --log-level debug)")

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f *flagValues) {
	changed := cmd.Flags().Changed

	if changed("device") {
		cfg.Audio.InputDevice = f.device
	}
	if changed("source") {
		cfg.Audio.Source = f.source
	}
	if changed("file") {
		cfg.Audio.File = f.file
		if !changed("source") {
			cfg.Audio.Source = config.SourceFile
		}
	}
	if changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = f.frames
	}
	if changed("gate") {
		cfg.Audio.GateThreshold = f.gate
	}
	if changed("layout") {
		cfg.Spectrum.Layout = f.layout
	}
	if changed("window") {
		cfg.Spectrum.Window = f.window
	}
	if changed("band-limited") {
		cfg.Spectrum.BandLimited = f.band
	}
	if changed("fps") {
		cfg.Animation.FPS = f.fps
	}
	if changed("seed") {
		cfg.Animation.Seed = f.seed
	}
	if changed("scale") {
		cfg.Animation.AmplitudeScale = f.scale
	}
	if changed("headless") && f.headless {
		cfg.Display.Mode = config.DisplayHeadless
	}
	if changed("pages") {
		cfg.Display.Pages = f.pages
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if f.verbose {
		cfg.LogLevel = "debug"
	}
}
