// SPDX-License-Identifier: MIT
/*
Package driver runs the per-frame loop: pull one frame from the audio
source, estimate its amplitude and offer it to the bar under the
round-robin pointer before every bar ticks.

A driver without a source runs in silent mode: bars keep ticking back to
WAITING but are never triggered.
*/
package driver

import (
	"decibel/internal/animator"
	"decibel/internal/log"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Source is the audio collaborator. ReadFrame blocks for at most one frame
// period and may return fewer samples than a full frame on underrun.
type Source interface {
	Start() error
	Stop() error
	Release() error
	IsRunning() bool
	ReadFrame() ([]int16, error)
}

// Estimator turns one full frame into an amplitude.
type Estimator interface {
	EstimateAmplitude(frame []int16) (float64, error)
	FrameSize() int
}

// Stats counts what the loop has done since the driver was created.
type Stats struct {
	Ticks     uint64 // Frames advanced
	Triggers  uint64 // Bars triggered
	Silent    uint64 // Frames without an amplitude
	Underruns uint64 // Short frames dropped
	Errors    uint64 // Capture or estimate failures
}

// Driver is the RoundRobinDriver.
type Driver struct {
	animator  *animator.Animator
	source    Source    // nil in silent mode
	estimator Estimator // nil in silent mode
	scale     float64
	interval  time.Duration

	ticker   *time.Ticker   // Ticker that triggers frames.
	doneChan chan struct{}  // Channel used to signal the loop goroutine to stop.
	stopOnce sync.Once      // Ensures the stop logic runs only once per Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the loop goroutine to finish during Stop.
	mu       sync.Mutex     // Protects access to ticker and doneChan during Start/Stop.

	ticks, triggers, silent, underruns, errs atomic.Uint64
}

// New creates a driver advancing anim at fps frames per second. A nil
// source selects silent mode. Amplitudes are multiplied by scale before
// they reach a bar.
func New(anim *animator.Animator, source Source, estimator Estimator, fps int, scale float64) (*Driver, error) {
	if anim == nil {
		return nil, fmt.Errorf("Driver: animator cannot be nil")
	}
	if source != nil && estimator == nil {
		return nil, fmt.Errorf("Driver: a source needs an estimator")
	}

	interval := 33 * time.Millisecond
	if fps > 0 {
		interval = time.Second / time.Duration(fps)
	} else {
		log.Warnf("Driver: Invalid frame rate %d, defaulting to %s", fps, interval)
	}

	if source == nil {
		log.Warnf("Driver: No audio source, running silent")
	}
	log.Infof("Driver: Initializing (Interval: %s, Scale: %.2f)", interval, scale)

	return &Driver{
		animator:  anim,
		source:    source,
		estimator: estimator,
		scale:     scale,
		interval:  interval,
	}, nil
}

// Silent reports whether the driver runs without a source.
func (d *Driver) Silent() bool {
	return d.source == nil
}

// Interval returns the frame period.
func (d *Driver) Interval() time.Duration {
	return d.interval
}

// Tick runs one frame.
func (d *Driver) Tick() animator.Offer {
	amplitude, ok := d.sample()
	offer := d.animator.Advance(amplitude*d.scale, ok)

	d.ticks.Add(1)
	if !ok {
		d.silent.Add(1)
	}
	if offer.Triggered {
		d.triggers.Add(1)
	}
	return offer
}

// sample pulls and estimates one frame. Failures are logged and the frame
// goes without an amplitude; nothing is retried.
func (d *Driver) sample() (float64, bool) {
	if d.source == nil || !d.source.IsRunning() {
		return 0, false
	}

	frame, err := d.source.ReadFrame()
	if err != nil {
		if errors.Is(err, io.EOF) {
			log.Debugf("Driver: Source exhausted")
		} else {
			d.errs.Add(1)
			log.Errorf("Driver: Failed to read frame: %v", err)
		}
		return 0, false
	}

	if len(frame) < d.estimator.FrameSize() {
		d.underruns.Add(1)
		log.Debugf("Driver: Underrun, got %d of %d samples", len(frame), d.estimator.FrameSize())
		return 0, false
	}

	amplitude, err := d.estimator.EstimateAmplitude(frame)
	if err != nil {
		d.errs.Add(1)
		log.Errorf("Driver: Failed to estimate amplitude: %v", err)
		return 0, false
	}
	return amplitude, true
}

// Stats returns the loop counters.
func (d *Driver) Stats() Stats {
	return Stats{
		Ticks:     d.ticks.Load(),
		Triggers:  d.triggers.Load(),
		Silent:    d.silent.Load(),
		Underruns: d.underruns.Load(),
		Errors:    d.errs.Load(),
	}
}

// Start starts the source and launches the frame loop. It is safe to call
// Start multiple times; subsequent calls are no-ops while running.
func (d *Driver) Start() {
	d.mu.Lock()
	if d.ticker != nil {
		d.mu.Unlock()
		log.Warnf("Driver: Start called but already running.")
		return
	}

	d.ticker = time.NewTicker(d.interval)
	d.doneChan = make(chan struct{})
	d.stopOnce = sync.Once{}

	ticker := d.ticker
	doneChan := d.doneChan

	d.mu.Unlock()

	d.Resume()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		log.Infof("Driver: Frame loop started (Interval: %s)", d.interval)
		for {
			select {
			case <-ticker.C:
				d.Tick()
			case <-doneChan:
				log.Infof("Driver: Frame loop received stop signal.")
				return
			}
		}
	}()
}

// Stop ends the frame loop, waits for it to exit and stops the source.
// It is safe to call Stop multiple times.
func (d *Driver) Stop() {
	d.mu.Lock()
	if d.ticker == nil {
		d.mu.Unlock()
		log.Debugf("Driver: Stop called but not running.")
		return
	}

	d.stopOnce.Do(func() {
		close(d.doneChan)
		d.ticker.Stop()
		d.ticker = nil
	})

	d.mu.Unlock()

	d.wg.Wait()
	d.Pause()
	log.Infof("Driver: Frame loop finished.")
}

// Pause stops the source. Bars keep ticking without amplitudes.
// Source errors are logged and swallowed.
func (d *Driver) Pause() {
	if d.source == nil || !d.source.IsRunning() {
		return
	}
	if err := d.source.Stop(); err != nil {
		log.Errorf("Driver: Failed to stop audio source: %v", err)
		return
	}
	log.Debugf("Driver: Audio source paused")
}

// Resume restarts the source. Source errors are logged and swallowed.
func (d *Driver) Resume() {
	if d.source == nil || d.source.IsRunning() {
		return
	}
	if err := d.source.Start(); err != nil {
		log.Errorf("Driver: Failed to start audio source: %v", err)
		return
	}
	log.Debugf("Driver: Audio source resumed")
}

// Paused reports whether a configured source is currently stopped.
func (d *Driver) Paused() bool {
	return d.source != nil && !d.source.IsRunning()
}

// TogglePause pauses a running source or resumes a stopped one.
func (d *Driver) TogglePause() {
	if d.Paused() {
		d.Resume()
	} else {
		d.Pause()
	}
}

// Close stops the loop and releases the source. It is terminal.
func (d *Driver) Close() {
	d.Stop()
	if d.source == nil {
		return
	}
	if err := d.source.Release(); err != nil {
		log.Errorf("Driver: Failed to release audio source: %v", err)
	}
}
