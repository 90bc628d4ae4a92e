// Package decoding implements the dual-reader pipeline of §4.3: an
// abstract SourceReader that both a video and an audio cursor pull
// from independently over the same URL, plus the concrete reference
// readers this repo ships so the engine is runnable and testable even
// though the real container/codec stack is out of scope (spec.md §1).
package decoding

import "time"

// Status distinguishes the three legal outcomes of ReadSample (§4.3):
// a sample was produced, the stream is exhausted, or nothing is ready
// yet but more may arrive later.
type Status int

const (
	StatusSample Status = iota
	StatusEndOfStream
	StatusEmpty
)

// Sample is a single contiguous decoded unit: one video frame or one
// block of audio frames whose length is a multiple of BlockAlign.
// TimestampTicks is in the same 100ns tick unit the clock uses.
type Sample struct {
	Data           []byte
	TimestampTicks int64
}

// Result is what ReadSample returns: exactly one of Sample (when
// Status == StatusSample), or nothing otherwise.
type Result struct {
	Status Status
	Sample Sample
}

// SourceReader is the abstract operation both readers in a Pipeline
// expose (§4.3). Two independent SourceReader instances are opened over
// one URL so the audio thread and the video consumer each get their own
// cursor with no inter-thread coordination at the demux level (§9).
type SourceReader interface {
	// ReadSample pulls the next decoded unit. StatusEmpty is a legal
	// transient the caller must tolerate by yielding briefly, not an
	// error.
	ReadSample() (Result, error)

	// Seek repositions the cursor to the given tick. Implementations
	// must make the next ReadSample return the sample at or after t.
	Seek(targetTicks int64) error

	// Close releases any handle this reader owns.
	Close() error
}

// VideoFormat is the negotiated output type of the video reader
// (§3 Instance attributes, §4.2 step 3). Stride is read back from the
// reader rather than assumed to be Width*4, per SPEC_FULL.md §5 (the
// original negotiates RGB32 but the actual row stride can include
// padding).
type VideoFormat struct {
	Width          int
	Height         int
	Stride         int
	FrameRateNum   int
	FrameRateDenom int
	Subtype        string // e.g. "MFVideoFormat_RGB32", for metadata queries
}

// FrameTimeMs is 1000*denom/num per the glossary's "Frame time".
func (f VideoFormat) FrameTimeMs() float64 {
	num, denom := f.FrameRateNum, f.FrameRateDenom
	if num <= 0 {
		num = 30
	}
	if denom <= 0 {
		denom = 1
	}
	return 1000 * float64(denom) / float64(num)
}

// AudioFormat is the negotiated output type of the audio reader
// (§4.2 step 4 default negotiation target).
type AudioFormat struct {
	SampleRate      int
	Channels        int
	BitsPerSample   int
	BlockAlign      int
	BytesPerSecond  int
}

// Duration is reported by a reader's underlying media source
// descriptor (§4.9 get_media_duration); zero means unknown.
type Duration = time.Duration
