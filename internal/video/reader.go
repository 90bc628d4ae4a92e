package video

import (
	"time"

	"hdxav/internal/clock"
	"hdxav/internal/decoding"
	"hdxav/internal/sleeper"
	"hdxav/pkg/spec"
)

// Outcome distinguishes ReadVideoFrame's three legal returns (§6):
// EndOfStream, Frame(ptr,len) (modeled here as a byte slice view into
// LockedFrame), or NoneYet.
type Outcome int

const (
	OutcomeFrame Outcome = iota
	OutcomeEndOfStream
	OutcomeNoneYet
)

// HasAudio reports whether this instance has an active audio path;
// together with the master position, which the Reader reads from its
// Clock rather than through this interface, it picks audio-driven vs
// video-only synchronization mode (§4.5 step 6).
type HasAudio interface {
	HasAudio() bool
}

// Reader implements the synchronous per-call video path of §4.5.
type Reader struct {
	source decoding.SourceReader
	format decoding.VideoFormat
	clock  *clock.Clock
	frame  *LockedFrame
	hasAudio HasAudio

	eof           bool
	currentTicks  int64
}

// NewReader builds the video reader path over an already-open
// SourceReader and the instance's shared clock.
func NewReader(source decoding.SourceReader, format decoding.VideoFormat, c *clock.Clock, hasAudio HasAudio) *Reader {
	return &Reader{source: source, format: format, clock: c, frame: &LockedFrame{}, hasAudio: hasAudio}
}

// IsEOF reports the EndOfStream-until-seek-or-open latch (§7 "EndOfStream
// is terminal until seek or open").
func (r *Reader) IsEOF() bool { return r.eof }

// ClearEOF is called by the seek coordinator (§4.7 step 9).
func (r *Reader) ClearEOF() { r.eof = false }

// Unlock releases the currently-leased frame (§4.5 "unlock_video_frame").
func (r *Reader) Unlock() { r.frame.Unlock() }

// ReadVideoFrame implements §4.5's numbered procedure exactly.
func (r *Reader) ReadVideoFrame() (Outcome, []byte) {
	// step 1: a pending locked buffer is implicitly released on entry.
	r.frame.Unlock()

	// step 2.
	if r.eof {
		return OutcomeEndOfStream, nil
	}

	// step 3.
	result, err := r.source.ReadSample()
	if err != nil {
		return OutcomeEndOfStream, nil
	}
	switch result.Status {
	case decoding.StatusEndOfStream:
		r.eof = true
		return OutcomeEndOfStream, nil
	case decoding.StatusEmpty:
		return OutcomeNoneYet, nil
	}

	sample := result.Sample

	// step 4.
	r.currentTicks = sample.TimestampTicks
	r.clock.SetCurrentPosition(sample.TimestampTicks)

	// step 5.
	frameTimeMs := r.format.FrameTimeMs()
	skipThresholdTicks := int64(-frameTimeMs * 3 * float64(spec.TicksPerMs))

	speed := r.clock.Speed()

	// step 6.
	if r.hasAudio != nil && r.hasAudio.HasAudio() && r.clock.MasterPositionTicks() > 0 {
		masterTicks := r.clock.MasterPositionTicks()
		diffTicks := sample.TimestampTicks - int64(float64(masterTicks)*speed)

		if diffTicks > 0 {
			sleepMs := float64(diffTicks) / float64(spec.TicksPerMs)
			capMs := 2 * frameTimeMs / speed
			if sleepMs > capMs {
				sleepMs = capMs
			}
			sleeper.Precise(time.Duration(sleepMs * float64(time.Millisecond)))
		} else if diffTicks < skipThresholdTicks {
			return OutcomeNoneYet, nil
		}
	} else {
		effectiveTicks := r.clock.EffectiveElapsedTicks()
		if sample.TimestampTicks > effectiveTicks {
			deltaMs := float64(sample.TimestampTicks-effectiveTicks) / float64(spec.TicksPerMs)
			capMs := 1.5 * frameTimeMs / speed
			if deltaMs > capMs {
				deltaMs = capMs
			}
			sleeper.Precise(time.Duration(deltaMs * float64(time.Millisecond)))
		}
	}

	// step 7.
	r.frame.Lock(sample.Data)
	buf, _ := r.frame.View()
	return OutcomeFrame, buf
}
