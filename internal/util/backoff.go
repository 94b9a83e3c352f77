// ABOUTME: Jittered exponential delays for polling loops
// ABOUTME: Used when waiting on ingestion jobs so long runs are not polled at a fixed rate
package util

import (
	"math/rand/v2"
	"time"
)

// PollDelay returns base doubled attempt times, capped at ceiling (when positive), with
// jitter of up to 25% either way. Attempts below zero count as zero.
func PollDelay(base, ceiling time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	// Cap attempt to avoid overflow in bit shift
	if attempt > 30 {
		attempt = 30
	}
	delay := base * time.Duration(1<<uint(attempt))
	if ceiling > 0 && (delay > ceiling || delay <= 0) {
		delay = ceiling
	}
	if delay < 4 {
		return delay
	}
	jitter := time.Duration(rand.Int64N(int64(delay)/2)) - delay/4
	return delay + jitter
}
