package audio

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"hdxav/internal/decoding"
	"hdxav/pkg/spec"
)

// Endpoint wraps the real host audio backend (faiface/beep + its
// speaker package) as the "host platform's shared audio endpoint"
// collaborator (spec.md §1). Grounded on the teacher's
// cmd/hdx-server/engine.go RuntimeAudio{Ctrl, Volume} runtime handles:
// here the beep.Streamer pulls from a RingBuffer instead of directly
// from a file-backed lazyStreamer, so the renderer (not beep) owns
// pacing and drift policy.
//
// beep/speaker's backend is itself a single process-wide output
// device, same as the real OS shared-mode mixer spec.md §1 describes —
// multiple instances' Endpoints each own their own RingBuffer and
// beep.Ctrl, but are mixed together by a shared *beep.Mixer supplied by
// the platform host (internal/platform), rather than each instance
// fighting over speaker.Init.
type Endpoint struct {
	mu sync.Mutex

	ring   *RingBuffer
	ctrl   *beep.Ctrl
	format decoding.AudioFormat

	mixer *beep.Mixer
}

// NewEndpoint constructs an Endpoint bound to a ring buffer and the
// platform's shared output mixer.
func NewEndpoint(ring *RingBuffer, mixer *beep.Mixer) *Endpoint {
	return &Endpoint{ring: ring, mixer: mixer}
}

// ringStreamer adapts RingBuffer.ReadSlot into a beep.Streamer pulling
// interleaved 16-bit stereo PCM and converting to beep's [2]float64
// samples; under-run is filled with silence rather than blocking, so
// the renderer's own pacing (not beep) governs real-time behavior.
type ringStreamer struct {
	ring *RingBuffer
}

func (s *ringStreamer) Stream(samples [][2]float64) (int, bool) {
	need := len(samples)
	raw := s.ring.ReadSlot(need)
	got := len(raw) / 4 // 2 channels * 2 bytes

	for i := 0; i < got; i++ {
		l := int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		r := int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
		samples[i][0] = float64(l) / 32768.0
		samples[i][1] = float64(r) / 32768.0
	}
	for i := got; i < need; i++ {
		samples[i][0] = 0
		samples[i][1] = 0
	}
	return need, true
}

func (s *ringStreamer) Err() error { return nil }

// Initialize wires this instance's ring into the shared output mixer
// at the negotiated sample rate (§4.4); the mixer itself was already
// bound to the real backend once by the platform host.
func (e *Endpoint) Initialize(format decoding.AudioFormat) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.format = format
	e.ctrl = &beep.Ctrl{Streamer: &ringStreamer{ring: e.ring}, Paused: true}
	if e.mixer != nil {
		e.mixer.Add(e.ctrl)
	}
	return nil
}

// RingBufferLatencyFrames is spec.RingBufferLatency expressed as a
// frame count at the given sample rate, the size new RingBuffers are
// allocated at.
func RingBufferLatencyFrames(sampleRate int) int {
	return beep.SampleRate(sampleRate).N(spec.RingBufferLatency)
}

// Start resumes endpoint playback (§4.6 Resume).
func (e *Endpoint) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl == nil {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
}

// Stop suspends endpoint playback (§4.6 Pause, §4.7 step 4).
func (e *Endpoint) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl == nil {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
}

// Close tears down this endpoint's streamer (§4.2 close): it is paused
// and detached, so the shared mixer drops it on its next pull.
func (e *Endpoint) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl == nil {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = true
	e.ctrl.Streamer = nil
	speaker.Unlock()
}

// RingDuration returns the playback duration of the ring's total frame
// capacity at the negotiated sample rate (0 before Initialize).
func (e *Endpoint) RingDuration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.format.SampleRate == 0 {
		return 0
	}
	return time.Duration(e.ring.Capacity()) * time.Second / time.Duration(e.format.SampleRate)
}
