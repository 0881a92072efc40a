// SPDX-License-Identifier: MIT
/*
Package bitint provides the power-of-2 helpers used to size capture
frames and transform buffers.

Usage:

	// Suggest a valid frame size for a rejected configuration
	frames := bitint.NextPowerOfTwo(1000) // Returns 1024

	// Verify a frame size before opening the capture stream
	ok := bitint.IsPowerOfTwo(frames)

NextPowerOfTwo works on size-1 so that exact powers of 2 map to
themselves: for 8, bits.Len(7) is 3 and 1<<3 is 8. Without the
subtraction bits.Len(8) is 4 and the result would double to 16.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
//
// Examples:
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
// Powers of 2 have a single bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
