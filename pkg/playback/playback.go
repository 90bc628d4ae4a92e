// Package playback is the public consumer API of §6: a process-scoped
// Platform, opaque per-instance Handles, and the operations a host
// application drives them with. Grounded on the teacher's cmd/hdx-server
// exposing state.go/command.go through one package boundary, adapted
// from an IPC-framed protocol to direct Go method calls on exported
// types — this repo has no wire protocol per spec.md §6.
package playback

import (
	"sync"

	"hdxav/internal/instance"
	"hdxav/internal/platform"
	"hdxav/internal/video"
	"hdxav/pkg/playbackerr"
)

// Platform is the process-scoped host (§4.1, §6 platform_init/
// platform_shutdown). Construct one per process with New.
type Platform struct {
	host *platform.Host
}

// New returns an uninitialized Platform.
func New() *Platform {
	return &Platform{host: platform.New()}
}

// Init brings the host up (§6 platform_init). Fails with
// playbackerr.ErrAlreadyInitialized if already initialized.
func (p *Platform) Init() error {
	return p.host.Initialize()
}

// Shutdown releases host resources (§6 platform_shutdown). Fails with
// playbackerr.ErrShutdownRefused while any Instance is alive.
func (p *Platform) Shutdown() error {
	return p.host.Shutdown()
}

// ActiveInstances reports the live-instance count (§8 invariant 1).
func (p *Platform) ActiveInstances() int {
	return p.host.ActiveInstances()
}

// CreateInstance returns a new opaque per-playback Instance (§6
// create_instance). Fails with playbackerr.ErrNotInitialized if the
// platform hasn't been Init'd.
func (p *Platform) CreateInstance() (*Instance, error) {
	if err := p.host.AcquireInstance(); err != nil {
		return nil, err
	}
	return &Instance{p: p, in: instance.New(p.host)}, nil
}

// Instance is the opaque per-playback handle of §3/§6. All methods are
// safe to call from a single consumer goroutine per §5's concurrency
// model; the audio thread runs independently underneath.
type Instance struct {
	p *Platform

	closeOnce sync.Once
	in        *instance.Instance
}

// Open configures the video and audio readers for url and starts the
// audio thread if an audio path negotiates successfully (§4.2, §6 open).
func (h *Instance) Open(url string) error {
	return h.in.Open(url)
}

// Close tears down media but keeps the instance handle usable for a
// subsequent Open (§6 close).
func (h *Instance) Close() {
	h.in.Close()
}

// Destroy fully releases the instance (§6 destroy_instance): closes
// media if still open and releases the platform's instance slot.
// Idempotent — a second call is a no-op.
func (h *Instance) Destroy() {
	h.closeOnce.Do(func() {
		h.in.Close()
		h.p.host.ReleaseInstance()
	})
}

// FrameOutcome mirrors §6 read_video_frame's three-way result.
type FrameOutcome int

const (
	FrameDelivered FrameOutcome = iota
	FrameEndOfStream
	FrameNoneYet
)

// ReadVideoFrame implements §4.5/§6. The returned slice is valid until
// the next ReadVideoFrame or UnlockVideoFrame call.
func (h *Instance) ReadVideoFrame() (FrameOutcome, []byte) {
	outcome, buf := h.in.ReadVideoFrame()
	switch outcome {
	case video.OutcomeFrame:
		return FrameDelivered, buf
	case video.OutcomeNoneYet:
		return FrameNoneYet, nil
	default:
		return FrameEndOfStream, nil
	}
}

// UnlockVideoFrame releases the currently-leased frame buffer (§6
// unlock_video_frame). Idempotent.
func (h *Instance) UnlockVideoFrame() {
	h.in.UnlockVideoFrame()
}

// Play starts or resumes playback (§4.6, §6 set_playback_state).
func (h *Instance) Play() {
	h.in.SetPlaybackState(true, false)
}

// Pause suspends playback while preserving position (§4.6).
func (h *Instance) Pause() {
	h.in.SetPlaybackState(false, false)
}

// Stop halts playback and resets timing state (§4.6).
func (h *Instance) Stop() {
	h.in.SetPlaybackState(false, true)
}

// Seek repositions both readers to targetTicks per §4.7.
func (h *Instance) Seek(targetTicks int64) error {
	return h.in.Seek(targetTicks)
}

// SetVolume clamps v to [0,1] and stores it (§4.8, §6).
func (h *Instance) SetVolume(v float64) { h.in.SetVolume(v) }

// Volume reads the current volume (§4.8, §6).
func (h *Instance) Volume() float64 { return h.in.GetVolume() }

// SetSpeed clamps s to [0.5,2.0] and stores it (§4.6, §6).
func (h *Instance) SetSpeed(s float64) { h.in.SetPlaybackSpeed(s) }

// Speed reads the current playback speed (§4.6, §6).
func (h *Instance) Speed() float64 { return h.in.GetPlaybackSpeed() }

// AudioLevels returns (left%, right%) peak meter readings (§4.8, §6).
func (h *Instance) AudioLevels() (left, right float64) {
	return h.in.GetAudioLevels()
}

// MediaDuration returns the opened media's duration in ticks (§4.9).
func (h *Instance) MediaDuration() int64 { return h.in.GetMediaDuration() }

// MediaPosition returns the current playback position in ticks (§4.9).
func (h *Instance) MediaPosition() int64 { return h.in.GetMediaPosition() }

// VideoSize returns the negotiated frame dimensions (§4.9).
func (h *Instance) VideoSize() (width, height int) { return h.in.GetVideoSize() }

// VideoFrameRate returns the negotiated frame rate as a rational (§4.9).
func (h *Instance) VideoFrameRate() (num, denom int) { return h.in.GetVideoFrameRate() }

// VideoMetadata is the structured record §6's get_video_metadata
// returns, re-exported from internal/instance for the public boundary.
type VideoMetadata = instance.VideoMetadata

// GetVideoMetadata returns the structured metadata record (§4.9, §6).
func (h *Instance) GetVideoMetadata() VideoMetadata { return h.in.GetVideoMetadata() }

// IsEOF reports whether the video path has reached end of stream (§6).
func (h *Instance) IsEOF() bool { return h.in.IsEOF() }

// IsLoading reports whether Open is currently in progress on this
// instance (§6; SPEC_FULL.md §5 supplemented semantics).
func (h *Instance) IsLoading() bool { return h.in.IsLoading() }

// IsPlaying reports whether playback is currently active (§6).
func (h *Instance) IsPlaying() bool { return h.in.IsPlaying() }

// LastAudioError returns the error that most recently stopped the
// audio thread, if any (SPEC_FULL.md §5 supplemented accessor).
func (h *Instance) LastAudioError() error { return h.in.LastAudioError() }

// re-exported error sentinels for consumers that want to errors.Is
// against the public boundary without importing the internal package.
var (
	ErrNotInitialized      = playbackerr.ErrNotInitialized
	ErrAlreadyInitialized  = playbackerr.ErrAlreadyInitialized
	ErrInvalidParameter    = playbackerr.ErrInvalidParameter
	ErrOutOfMemory         = playbackerr.ErrOutOfMemory
	ErrEndOfStream         = playbackerr.ErrEndOfStream
	ErrShutdownRefused     = playbackerr.ErrShutdownRefused
)
