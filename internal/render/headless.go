// SPDX-License-Identifier: MIT
package render

import (
	"context"
	"fmt"
	"time"

	"decibel/internal/animator"
	"decibel/internal/bars"
	"decibel/internal/driver"
	"decibel/internal/log"
)

// Summary describes the bar collection at one instant.
type Summary struct {
	Bars      int
	States    map[bars.State]int
	MeanAlpha float64
}

func (s Summary) String() string {
	return fmt.Sprintf("%d bars (waiting %d, paused %d, down %d, up %d), mean alpha %.1f",
		s.Bars, s.States[bars.Waiting], s.States[bars.Paused], s.States[bars.Down], s.States[bars.Up], s.MeanAlpha)
}

// Summarize reads the collection under its lock.
func Summarize(anim *animator.Animator) Summary {
	s := Summary{States: make(map[bars.State]int)}
	var alpha int
	anim.Each(func(_ int, b bars.Bar) {
		s.Bars++
		s.States[b.State]++
		alpha += b.Alpha
	})
	if s.Bars > 0 {
		s.MeanAlpha = float64(alpha) / float64(s.Bars)
	}
	return s
}

// Headless stands in for a display: it builds the collection for a fixed
// surface and logs a summary every interval.
type Headless struct {
	anim          *animator.Animator
	drv           *driver.Driver
	width, height int
	interval      time.Duration
}

// NewHeadless creates a headless renderer for a width x height surface.
func NewHeadless(anim *animator.Animator, drv *driver.Driver, width, height int, interval time.Duration) *Headless {
	if interval <= 0 {
		interval = time.Second
	}
	return &Headless{anim: anim, drv: drv, width: width, height: height, interval: interval}
}

// Run rebuilds the collection and logs summaries until ctx is cancelled.
func (h *Headless) Run(ctx context.Context) error {
	if err := h.anim.Rebuild(h.width, h.height); err != nil {
		return err
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("Render: %v", Summarize(h.anim))
			return nil
		case <-ticker.C:
			stats := h.drv.Stats()
			log.Infof("Render: %v", Summarize(h.anim))
			log.Debugf("Render: %d ticks, %d triggers, %d silent, %d underruns, %d errors",
				stats.Ticks, stats.Triggers, stats.Silent, stats.Underruns, stats.Errors)
		}
	}
}
