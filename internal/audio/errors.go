// SPDX-License-Identifier: MIT
package audio

import "errors"

var (
	// ErrCaptureUnavailable is returned when no capture format could be opened.
	ErrCaptureUnavailable = errors.New("audio capture unavailable")

	// ErrSourceStopped is returned by ReadFrame on a stopped or released source.
	ErrSourceStopped = errors.New("audio source is not running")

	// ErrInvalidDevice is returned for unknown or output-only device IDs.
	ErrInvalidDevice = errors.New("invalid audio device")
)
