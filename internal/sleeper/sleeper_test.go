package sleeper

import (
	"testing"
	"time"
)

func TestPreciseReturnsImmediatelyBelowThreshold(t *testing.T) {
	start := time.Now()
	Precise(50 * time.Microsecond)
	if elapsed := time.Since(start); elapsed > 2*time.Millisecond {
		t.Errorf("Precise(50us) took %v, want near-immediate return", elapsed)
	}
}

func TestPreciseNeverUndershoots(t *testing.T) {
	cases := []time.Duration{
		500 * time.Microsecond,
		3 * time.Millisecond,
		15 * time.Millisecond,
	}
	for _, d := range cases {
		start := time.Now()
		Precise(d)
		if elapsed := time.Since(start); elapsed < d {
			t.Errorf("Precise(%v) returned after %v, which is shorter than requested", d, elapsed)
		}
	}
}
