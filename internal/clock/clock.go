// Package clock implements the per-instance master clock (§3 Clock,
// §4.6): a single mutex-guarded struct generalized from the teacher's
// cmd/hdx-server/state.go + stateMu pattern (one small struct behind
// one lock, mutated by named functions) rather than fine-grained
// atomics, per §9's ownership note.
package clock

import (
	"sync"
	"time"

	"hdxav/pkg/spec"
)

// Mode selects which of the two strategies in §4.6 drives
// synchronization: ModeAudioMaster updates MasterPosition from the
// audio thread's consumed sample timestamps; ModePresentationClock
// slaves both paths to a system-provided monotonic time source instead.
type Mode int

const (
	ModeAudioMaster Mode = iota
	ModePresentationClock
)

// Clock is the five-field structure described in spec.md §3, all
// access gated by one mutex. Holds are brief and never span I/O,
// matching §5's concurrency contract.
type Clock struct {
	mu sync.Mutex

	mode Mode

	masterPositionTicks int64 // last audio sample PTS observed, or seek target
	currentPositionTicks int64 // last video sample PTS presented

	playbackStartWall time.Time // zero value means "never started"
	totalPaused       time.Duration
	pauseStartWall    time.Time // zero value means "currently playing"

	speed float64

	seekInProgress bool

	// presentationStart/presentationStartTicks/presentationRunning back
	// ModePresentationClock: the wall-clock instant the presentation
	// clock was last started at, the ticks value it was started from
	// (or is frozen at while stopped), and whether it is running.
	presentationStart     time.Time
	presentationStartTicks int64
	presentationRunning    bool
}

// New returns a Clock at rest: speed 1.0, no play segment started.
func New(mode Mode) *Clock {
	return &Clock{mode: mode, speed: 1.0}
}

func clampSpeed(s float64) float64 {
	if s < spec.MinSpeed {
		return spec.MinSpeed
	}
	if s > spec.MaxSpeed {
		return spec.MaxSpeed
	}
	return s
}

// SetSpeed clamps to [0.5, 2.0] per §4.6 and stores it.
func (c *Clock) SetSpeed(s float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = clampSpeed(s)
}

// Speed returns the clamped speed currently in effect.
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Start begins a play segment if one hasn't already (idempotent): sets
// playbackStartWall to now the first time playback begins after Stop or
// construction.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playbackStartWall.IsZero() {
		c.playbackStartWall = time.Now()
	}
	if c.mode == ModePresentationClock && !c.presentationRunning {
		c.presentationStart = time.Now()
		c.presentationStartTicks = c.masterPositionTicks
		c.presentationRunning = true
	}
}

// Pause implements §4.6: if not already paused, records the pause
// start instant so Resume can later fold the interval into
// totalPaused.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pauseStartWall.IsZero() {
		c.pauseStartWall = time.Now()
	}
	if c.mode == ModePresentationClock && c.presentationRunning {
		c.presentationStartTicks = c.presentationTicksLocked(time.Now())
		c.presentationRunning = false
	}
}

// Resume implements §4.6: folds the just-ended pause interval into
// totalPaused and clears pauseStartWall.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pauseStartWall.IsZero() {
		c.totalPaused += time.Since(c.pauseStartWall)
		c.pauseStartWall = time.Time{}
	}
	if c.mode == ModePresentationClock && !c.presentationRunning {
		c.presentationStart = time.Now()
		c.presentationRunning = true
	}
}

// IsPaused reports whether a pause is currently open.
func (c *Clock) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.pauseStartWall.IsZero()
}

// Stop zeroes playbackStartWall, totalPaused, pauseStartWall and
// masterPosition, per §4.6 "On full stop".
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playbackStartWall = time.Time{}
	c.totalPaused = 0
	c.pauseStartWall = time.Time{}
	c.masterPositionTicks = 0
	c.currentPositionTicks = 0
	c.presentationRunning = false
	c.presentationStartTicks = 0
}

// EffectiveElapsedTicks returns effective_elapsed (§3 derived
// quantity), in ticks, as of now: (now - start - pausePrefix) * speed,
// with the still-open pause interval subtracted per invariant 7.
func (c *Clock) EffectiveElapsedTicks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effectiveElapsedLocked(time.Now())
}

func (c *Clock) effectiveElapsedLocked(now time.Time) int64 {
	if c.playbackStartWall.IsZero() {
		return 0
	}
	paused := c.totalPaused
	if !c.pauseStartWall.IsZero() {
		paused += now.Sub(c.pauseStartWall)
	}
	elapsed := now.Sub(c.playbackStartWall) - paused
	if elapsed < 0 {
		elapsed = 0
	}
	scaled := float64(elapsed) * c.speed
	return int64(scaled) / 100 // time.Duration is ns; ticks are 100ns
}

func (c *Clock) presentationTicksLocked(now time.Time) int64 {
	if !c.presentationRunning {
		return c.presentationStartTicks
	}
	elapsed := now.Sub(c.presentationStart)
	scaled := float64(elapsed) * c.speed
	return c.presentationStartTicks + int64(scaled)/100
}

// MasterPositionTicks returns the authoritative current playback
// position video synchronizes against (§4.6 mode dispatch).
func (c *Clock) MasterPositionTicks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModePresentationClock {
		return c.presentationTicksLocked(time.Now())
	}
	return c.masterPositionTicks
}

// UpdateMasterPosition is called by the audio renderer (§4.4 step 7):
// only updates when ts > 0. It stores ts without comparing it to the
// previous value, so the monotonic-within-a-segment invariant (§3
// invariant 3) rests on the renderer passing timestamps in decode
// order; callers are trusted not to call this mid-seek (the renderer
// checks SeekInProgress at the top of each loop iteration).
func (c *Clock) UpdateMasterPosition(ts int64) {
	if ts <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.masterPositionTicks = ts
}

// CurrentPositionTicks returns the last video sample timestamp
// presented, for get_media_position (§4.9).
func (c *Clock) CurrentPositionTicks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPositionTicks
}

// SetCurrentPosition records the last video PTS presented.
func (c *Clock) SetCurrentPosition(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentPositionTicks = ts
}

// SeekInProgress reports the mutex-guarded seek flag (§3 invariant 4).
func (c *Clock) SeekInProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekInProgress
}

// BeginSeek sets seek_in_progress, and — if currently paused — nudges
// pause_start_wall to now so later Resume accounting stays correct
// (§4.7 step 2).
func (c *Clock) BeginSeek() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seekInProgress = true
	if !c.pauseStartWall.IsZero() {
		c.pauseStartWall = time.Now()
	}
}

// CompleteSeek implements §4.7 steps 9-10: sets current/master position
// to the seek target, clears seek_in_progress, and re-anchors
// playbackStartWall so effective_elapsed reads back as t immediately
// (mode 1), or re-anchors the presentation clock at t (mode 2).
func (c *Clock) CompleteSeek(targetTicks int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentPositionTicks = targetTicks

	switch c.mode {
	case ModeAudioMaster:
		c.masterPositionTicks = targetTicks
		// effective_elapsed = (now-start)*speed must equal targetTicks,
		// so start = now - targetTicks_as_duration/speed.
		targetNs := float64(targetTicks) * 100
		wallDelta := time.Duration(targetNs / maxFloat(c.speed, 0.0001))
		c.playbackStartWall = time.Now().Add(-wallDelta)
		c.totalPaused = 0
		// seek preserves playing/paused state (§9): if a pause was open
		// going in, re-nudge pauseStartWall to now instead of clearing it,
		// mirroring BeginSeek's own nudge, so the instance stays paused
		// and a later Resume folds only the genuine pause interval.
		if !c.pauseStartWall.IsZero() {
			c.pauseStartWall = time.Now()
		}
	case ModePresentationClock:
		c.presentationStartTicks = targetTicks
		c.presentationStart = time.Now()
	}

	c.seekInProgress = false
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Mode reports which synchronization strategy this clock uses.
func (c *Clock) Mode() Mode { return c.mode }
