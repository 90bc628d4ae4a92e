// Package spec holds the process-wide constants every other package in
// hdxav negotiates against: the tick unit, the default negotiated audio
// and video targets, the ring buffer latency target, and the audio
// renderer's drift thresholds and wait timings.
package spec

import "time"

const (
	// TicksPerMs is the design-convention tick: 100ns ticks, so 10000
	// ticks per millisecond.
	TicksPerMs int64 = 10_000

	// TicksPerSecond follows directly from TicksPerMs.
	TicksPerSecond int64 = TicksPerMs * 1000
)

// Default audio negotiation target (§4.2 step 4).
const (
	DefaultSampleRate     = 48000
	DefaultChannels       = 2
	DefaultBitsPerSample  = 16
	DefaultBlockAlign     = DefaultChannels * DefaultBitsPerSample / 8 // 4
	DefaultBytesPerSecond = DefaultSampleRate * DefaultBlockAlign      // 192000
)

// RingBufferLatency is the requested shared-mode ring buffer size,
// expressed as playback duration (§4.4).
const RingBufferLatency = 200 * time.Millisecond

// Drift policy thresholds of the audio renderer (§4.4 step 5), plus
// the audio thread's wait timings. The video reader (§4.5 step 6) does
// not use these thresholds; it derives its limits from the frame time.
const (
	DriftAheadMs   = 15.0
	DriftLateMs    = -50.0
	SamplesReadyTimeout = 10 * time.Millisecond
	SeekSuspendSleep    = 5 * time.Millisecond
	PauseCheckSleep     = 5 * time.Millisecond
	StopAudioThreadWait = time.Second
)

// DefaultFrameRateNum/Denom is used when the decoder reports no frame
// rate (§4.5 step 5).
const (
	DefaultFrameRateNum   = 30
	DefaultFrameRateDenom = 1
)

// Clamp ranges (§4.8, §4.6).
const (
	MinVolume = 0.0
	MaxVolume = 1.0
	MinSpeed  = 0.5
	MaxSpeed  = 2.0
)

// VideoSubtypeMIME maps the fixed set of codec subtype GUIDs the
// negotiated media type can report to a MIME string, for
// get_video_metadata (§4.9). Keys are the short GUID names the
// container/codec stack would normally expose; the abstract
// SourceReader in this repo exposes the same names directly.
var VideoSubtypeMIME = map[string]string{
	"MFVideoFormat_H264": "video/h264",
	"MFVideoFormat_HEVC": "video/hevc",
	"MFVideoFormat_MPEG2": "video/mpeg2",
	"MFVideoFormat_VP90":  "video/vp9",
	"MFVideoFormat_AV1":   "video/av1",
	"MFVideoFormat_RGB32": "video/rgb32",
}
