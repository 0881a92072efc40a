// SPDX-License-Identifier: MIT
package spectrum

import "errors"

var (
	// ErrInvalidFrameSize is returned when a frame does not match the
	// transform size fixed at construction.
	ErrInvalidFrameSize = errors.New("frame length does not match transform size")

	// ErrInvalidTransformSize is returned by New for unusable sizes or rates.
	ErrInvalidTransformSize = errors.New("invalid transform size")
)
