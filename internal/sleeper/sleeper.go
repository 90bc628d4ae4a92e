// Package sleeper provides the precise-sleep helper required by §4.4
// and §9: requested durations at or below 0.1ms return immediately,
// short durations may busy-wait, and longer durations fall back to a
// timer-backed wait. No library in the example corpus offers a
// monotonic sub-millisecond sleep primitive (see DESIGN.md), so this is
// built directly on the standard library's monotonic time.Now/time.Sleep.
package sleeper

import "time"

// spinThreshold is the duration below which a timer-backed time.Sleep's
// scheduler latency would risk under-sleeping; below it we spin on
// time.Now instead.
const spinThreshold = 2 * time.Millisecond

// immediateThreshold: requests at or below this return without waiting.
const immediateThreshold = 100 * time.Microsecond

// Precise sleeps for at least d, never less on average. Spins for short
// durations and defers to time.Sleep for longer ones so a single
// scheduler tick's jitter cannot make the caller return early.
func Precise(d time.Duration) {
	if d <= immediateThreshold {
		return
	}

	deadline := time.Now().Add(d)

	if d <= spinThreshold {
		for time.Now().Before(deadline) {
			// busy-wait: short durations cannot rely on the scheduler
			// to wake this goroutine with sub-millisecond accuracy.
		}
		return
	}

	// Sleep for most of the duration via the timer, then spin the
	// remainder so the average never undershoots the request.
	coarse := d - spinThreshold
	time.Sleep(coarse)
	for time.Now().Before(deadline) {
	}
}
