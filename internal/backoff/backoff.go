// Package backoff computes the delay inserted between consecutive
// failed attempts of the same kind.
package backoff

import "time"

// Delay maps a failed-attempt count to a wait duration: base doubled
// per attempt past the first, capped at max. Attempt 1 yields exactly
// base. Counts below 1 yield zero.
func Delay(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 || base <= 0 {
		return 0
	}
	if max > 0 && base >= max {
		return max
	}

	d := base
	for i := 1; i < attempt; i++ {
		d <<= 1
		// Overflow or cap reached; either way the answer is max.
		if d <= 0 || (max > 0 && d >= max) {
			return max
		}
	}
	return d
}
