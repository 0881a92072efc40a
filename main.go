package main

import (
	"context"
	"decibel/cmd"
	"decibel/internal/animator"
	"decibel/internal/audio"
	"decibel/internal/bars"
	"decibel/internal/config"
	"decibel/internal/driver"
	"decibel/internal/log"
	"decibel/internal/render"
	"decibel/internal/spectrum"
	"decibel/pkg/build"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

// main is the entry point for the visualizer.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and configuration
//   - Configure logging
//   - Execute one-off commands if requested
//   - Open the audio source, degrading to silent mode when capture fails
//
// 2. Concurrent Phase (Hot Path):
//   - Start the frame loop (capture, estimate, drive bars)
//   - Run the terminal or headless renderer
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop the frame loop and release the audio source
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Development builds have no ldflags; the defaults are reported instead.
	buildErr := build.Initialize()

	cfg, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}
	if cfg == nil {
		return // --help or --version
	}

	level, ok := log.ParseLevel(cfg.LogLevel)
	if !ok {
		log.Warnf("Unknown log level '%s', using %v", cfg.LogLevel, level)
	}
	log.SetLevel(level)

	// The terminal renderer owns the screen, so logs go to a file.
	if cfg.Command == "" && cfg.Display.Mode == config.DisplayTerminal {
		f, err := log.OpenFile(cfg.LogFile)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer f.Close()
	}

	if buildErr != nil {
		log.Debugf("Build: %v", buildErr)
	}
	log.Infof("%v", build.GetBuildFlags())

	// One thread for the frame loop and its blocking capture reads, one
	// for the renderer.
	runtime.GOMAXPROCS(2)

	// Handle one-off commands (e.g., device listing) that don't require
	// the frame loop to be running.
	if cfg.Command != "" {
		if err := executeCommand(cfg.Command); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	if cfg.Audio.Source == config.SourceDevice {
		if err := audio.Initialize(); err != nil {
			log.Errorf("%v", err)
			cfg.Audio.Source = config.SourceNone
		} else {
			defer audio.Terminate()
		}
	}

	src, err := audio.Open(cfg.Audio)
	switch {
	case errors.Is(err, audio.ErrCaptureUnavailable):
		log.Warnf("Capture: %v", err)
		src = nil
	case err != nil:
		log.Fatalf("%v", err)
	}

	var (
		drvSource driver.Source
		estimator driver.Estimator
	)
	if src != nil {
		est, err := newEstimator(cfg.Spectrum, src.FrameSize(), src.SampleRate())
		if err != nil {
			src.Release()
			log.Fatalf("%v", err)
		}
		drvSource, estimator = src, est
	}

	anim := newAnimator(cfg.Animation)
	drv, err := driver.New(anim, drvSource, estimator, cfg.Animation.FPS, cfg.Animation.AmplitudeScale)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	drv.Start()

	switch cfg.Display.Mode {
	case config.DisplayHeadless:
		h := render.NewHeadless(anim, drv, cfg.Display.HeadlessWidth, cfg.Display.HeadlessHeight, time.Second)
		err = h.Run(ctx)
	default:
		err = render.Run(ctx, render.NewModel(anim, drv, cfg.Display))
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	drv.Close()

	if err != nil {
		log.Errorf("Render: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Infof("Shutdown complete after %d frames", drv.Stats().Ticks)
}

// newEstimator builds the amplitude estimator for the negotiated frame.
func newEstimator(cfg config.SpectrumConfig, frameSize int, sampleRate float64) (*spectrum.Estimator, error) {
	layout, err := spectrum.ParseLayout(cfg.Layout)
	if err != nil {
		return nil, err
	}
	window, err := spectrum.ParseWindowFunc(cfg.Window)
	if err != nil {
		return nil, err
	}

	return spectrum.New(frameSize, sampleRate, spectrum.Options{
		Layout:      layout,
		Window:      window,
		BandLimited: cfg.BandLimited,
		MinHz:       cfg.MinHz,
		MaxHz:       cfg.MaxHz,
	})
}

// newAnimator builds the bar collection from the animation settings. A zero
// seed is replaced by the clock.
func newAnimator(cfg config.AnimationConfig) *animator.Animator {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	log.Debugf("Animator: Hue seed %d", seed)

	layout := animator.Layout{
		BarWidth:    cfg.BarWidth,
		BarPitch:    cfg.BarPitch,
		FirstBarX:   cfg.FirstBarX,
		TapBarWidth: cfg.TapBarWidth,
	}
	params := bars.Params{
		Steps:            cfg.Steps,
		Pause:            cfg.Pause,
		OriginLevel:      cfg.OriginLevel,
		AlphaFloor:       cfg.AlphaFloor,
		BaselineFraction: cfg.BaselineFraction,
	}
	return animator.New(layout, params, seed)
}

// executeCommand handles one-off commands that don't require the frame loop
// to be running, such as listing available audio devices.
func executeCommand(command string) error {
	switch command {
	case "list":
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
		return audio.ListDevices(os.Stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}
