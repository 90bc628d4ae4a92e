// Package instance implements the per-playback Instance of §3/§4.2:
// owner of the decoder pair, the audio client, the clock, and the seek
// coordinator. Grounded on the teacher's cmd/hdx-server split of
// state.go (fields) / command.go (lock-mutate-unlock-then-emit
// functions) / engine.go (the loop consuming that state), generalized
// from one global instance to a struct-per-instance.
package instance

import (
	"bytes"
	"sync"
	"time"

	"hdxav/internal/audio"
	"hdxav/internal/clock"
	"hdxav/internal/decoding"
	"hdxav/internal/logging"
	"hdxav/internal/platform"
	"hdxav/internal/video"
	"hdxav/pkg/spec"
)

// Instance is the ownership root of §3: two decoder handles, negotiated
// formats, an audio client, an audio thread, a locked-frame slot, a
// clock, and the volume/speed/seek/eof state.
type Instance struct {
	host *platform.Host
	log  *logging.Logger

	mu sync.Mutex

	pipeline *decoding.Pipeline
	reader   *video.Reader
	clock    *clock.Clock

	ring     *audio.RingBuffer
	endpoint *audio.Endpoint
	renderer *audio.Renderer
	meter    *audio.Meter

	hasAudio bool
	loading  bool
	playing  bool
	eof      bool

	volume float64

	videoFormat decoding.VideoFormat
	audioFormat decoding.AudioFormat

	durationTicks int64

	lastAudioErr error

	// resetToken is the accelerator reset token observed at Open time
	// (§4.1); it differing from the host's current token means the
	// accelerator device reset underneath this instance.
	resetToken []byte
}

// New constructs an Instance bound to host. It does not count the
// instance in the host's registry (pkg/playback's CreateInstance does
// that) and cannot fail: Go allocation failures are not observable the
// way malloc failures are, so neither New nor CreateInstance returns
// playbackerr.ErrOutOfMemory.
func New(host *platform.Host) *Instance {
	return &Instance{
		host:   host,
		log:    logging.New("instance"),
		clock:  clock.New(clock.ModeAudioMaster),
		volume: 1.0,
	}
}

// HasAudio implements video.HasAudio.
func (in *Instance) HasAudio() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.hasAudio
}

// Volume implements audio.VolumeSource.
func (in *Instance) Volume() float64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.volume
}

// Open implements §4.2's numbered open procedure.
func (in *Instance) Open(url string) error {
	in.mu.Lock()
	in.loading = true
	in.mu.Unlock()
	defer func() {
		in.mu.Lock()
		in.loading = false
		in.mu.Unlock()
	}()

	// step 1: close any previously-opened media (safe if never opened).
	in.Close()

	// step 2: reset defaults.
	in.mu.Lock()
	in.eof = false
	in.hasAudio = false
	in.mu.Unlock()

	// step 3/4: open both readers.
	pipeline, err := decoding.Open(url)
	if err != nil {
		return err
	}

	videoFormat := pipeline.Video.Format()
	in.mu.Lock()
	in.pipeline = pipeline
	in.videoFormat = videoFormat
	in.durationTicks = pipeline.Video.DurationTicks()
	in.reader = video.NewReader(pipeline.Video, videoFormat, in.clock, in)
	if tokens := in.host.ResetTokens(); tokens != nil {
		in.resetToken = tokens.Token()
	} else {
		in.resetToken = nil
	}
	in.mu.Unlock()

	if !pipeline.HasAudio {
		return nil
	}

	// step 5: initialize the audio endpoint with the negotiated format.
	if err := in.host.EnsureAudioBackend(pipeline.AudioFmt.SampleRate); err != nil {
		in.log.Printf("audio backend unavailable, continuing video-only: %v", err)
		return nil
	}

	in.audioFormat = pipeline.AudioFmt
	frames := audio.RingBufferLatencyFrames(pipeline.AudioFmt.SampleRate)
	ring := audio.NewRingBuffer(frames, pipeline.AudioFmt.BlockAlign)
	endpoint := audio.NewEndpoint(ring, in.host.Mixer())
	if err := endpoint.Initialize(pipeline.AudioFmt); err != nil {
		in.log.Printf("audio endpoint init failed, continuing video-only: %v", err)
		return nil
	}

	in.mu.Lock()
	in.ring = ring
	in.endpoint = endpoint
	in.meter = audio.NewMeter(512)
	in.hasAudio = true
	in.mu.Unlock()

	// step 6: spawn the audio thread and signal start_gate.
	renderer := audio.NewRenderer(pipeline.Audio, ring, endpoint, in.clock, in, pipeline.AudioFmt.BlockAlign)
	in.mu.Lock()
	in.renderer = renderer
	in.mu.Unlock()

	go renderer.Run()
	renderer.Start()

	return nil
}

// Close implements §4.2's close procedure and §3 invariant 5's strict
// teardown order: audio client, render client, endpoint, both readers,
// format buffer, events, critical section.
func (in *Instance) Close() {
	in.mu.Lock()
	renderer := in.renderer
	endpoint := in.endpoint
	pipeline := in.pipeline
	reader := in.reader
	in.renderer = nil
	in.endpoint = nil
	in.ring = nil
	in.pipeline = nil
	in.reader = nil
	in.hasAudio = false
	in.eof = false
	in.playing = false
	in.resetToken = nil
	in.mu.Unlock()

	if reader != nil {
		reader.Unlock()
	}

	if renderer != nil {
		renderer.Stop()
		select {
		case <-renderer.Done():
		case <-time.After(spec.StopAudioThreadWait):
			// last-resort: renderer.Run is cooperative-cancellation only
			// in this implementation (§9 prefers this over force-
			// terminate); if it hasn't exited, it is leaked rather than
			// forcibly killed, and Close proceeds regardless.
		}
	}

	if endpoint != nil {
		endpoint.Close()
	}

	if pipeline != nil {
		pipeline.Close()
	}

	in.clock.Stop()
}

// AcceleratorResetDetected reports whether the host's accelerator
// device has reset since this instance's media was opened (§4.1's
// reset-token manager, shared with decoder instances so they can tell
// a device handle apart from a stale one after a reset).
func (in *Instance) AcceleratorResetDetected() bool {
	in.mu.Lock()
	stored := in.resetToken
	host := in.host
	in.mu.Unlock()
	if stored == nil || host == nil {
		return false
	}
	tokens := host.ResetTokens()
	if tokens == nil {
		return false
	}
	return !bytes.Equal(stored, tokens.Token())
}

// ReadVideoFrame implements §4.5/§6.
func (in *Instance) ReadVideoFrame() (video.Outcome, []byte) {
	in.mu.Lock()
	reader := in.reader
	in.mu.Unlock()
	if reader == nil {
		return video.OutcomeEndOfStream, nil
	}
	if in.AcceleratorResetDetected() {
		in.log.Printf("accelerator device reset detected, ending stream early")
		in.mu.Lock()
		in.eof = true
		in.mu.Unlock()
		return video.OutcomeEndOfStream, nil
	}

	outcome, buf := reader.ReadVideoFrame()
	if outcome == video.OutcomeEndOfStream {
		in.mu.Lock()
		in.eof = true
		in.mu.Unlock()
	}
	return outcome, buf
}

// UnlockVideoFrame implements §6's unlock_video_frame.
func (in *Instance) UnlockVideoFrame() {
	in.mu.Lock()
	reader := in.reader
	in.mu.Unlock()
	if reader != nil {
		reader.Unlock()
	}
}

// SetPlaybackState implements §6's set_playback_state (play/pause/stop
// per §4.6).
func (in *Instance) SetPlaybackState(playing bool, stop bool) {
	if stop {
		in.mu.Lock()
		in.playing = false
		endpoint := in.endpoint
		in.mu.Unlock()
		if endpoint != nil {
			endpoint.Stop()
		}
		in.clock.Stop()
		return
	}

	in.mu.Lock()
	wasPlaying := in.playing
	in.playing = playing
	endpoint := in.endpoint
	in.mu.Unlock()

	if playing && !wasPlaying {
		in.clock.Start()
		in.clock.Resume()
		if endpoint != nil {
			endpoint.Start()
		}
	} else if !playing && wasPlaying {
		in.clock.Pause()
		if endpoint != nil {
			endpoint.Stop()
		}
	}
}

// IsPlaying implements §6's is_playing.
func (in *Instance) IsPlaying() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.playing
}

// IsEOF implements §6's is_eof.
func (in *Instance) IsEOF() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.eof
}

// IsLoading implements §6's is_loading (SPEC_FULL.md §5: true for the
// whole synchronous duration of Open).
func (in *Instance) IsLoading() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.loading
}

// SetVolume implements §4.8/§6: clamps to [0,1] and stores it.
func (in *Instance) SetVolume(v float64) {
	if v < spec.MinVolume {
		v = spec.MinVolume
	}
	if v > spec.MaxVolume {
		v = spec.MaxVolume
	}
	in.mu.Lock()
	in.volume = v
	in.mu.Unlock()
}

// GetVolume implements §4.8/§6.
func (in *Instance) GetVolume() float64 {
	return in.Volume()
}

// SetPlaybackSpeed implements §4.6/§6: clamps to [0.5, 2.0].
func (in *Instance) SetPlaybackSpeed(s float64) {
	in.clock.SetSpeed(s)
}

// GetPlaybackSpeed implements §4.6/§6.
func (in *Instance) GetPlaybackSpeed() float64 {
	return in.clock.Speed()
}

// GetAudioLevels implements §4.8's get_audio_levels. Returns (0,0) when
// there is no audio path, rather than erroring — metering is best-effort.
func (in *Instance) GetAudioLevels() (left, right float64) {
	in.mu.Lock()
	ring := in.ring
	meter := in.meter
	in.mu.Unlock()
	if ring == nil || meter == nil {
		return 0, 0
	}
	const tapFrames = 512
	tap := ring.Peek(tapFrames)
	if len(tap) == 0 {
		return 0, 0
	}
	return meter.Levels(tap)
}

// GetMediaDuration implements §4.9's get_media_duration.
func (in *Instance) GetMediaDuration() int64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.durationTicks
}

// GetMediaPosition implements §4.9's get_media_position.
func (in *Instance) GetMediaPosition() int64 {
	return in.clock.CurrentPositionTicks()
}

// GetVideoSize implements §4.9's get_video_size.
func (in *Instance) GetVideoSize() (width, height int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.videoFormat.Width, in.videoFormat.Height
}

// GetVideoFrameRate implements §4.9's get_video_frame_rate.
func (in *Instance) GetVideoFrameRate() (num, denom int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.videoFormat.FrameRateNum == 0 {
		return spec.DefaultFrameRateNum, spec.DefaultFrameRateDenom
	}
	return in.videoFormat.FrameRateNum, in.videoFormat.FrameRateDenom
}

// VideoMetadata is the structured record §4.9's get_video_metadata
// returns: presence flags indicate which fields are populated.
type VideoMetadata struct {
	HasVideo       bool
	Width, Height  int
	FrameRateNum   int
	FrameRateDenom int
	MIMEType       string

	HasAudio      bool
	Channels      int
	SampleRate    int
}

// GetVideoMetadata implements §4.9's get_video_metadata.
func (in *Instance) GetVideoMetadata() VideoMetadata {
	in.mu.Lock()
	defer in.mu.Unlock()

	md := VideoMetadata{
		HasVideo:       true,
		Width:          in.videoFormat.Width,
		Height:         in.videoFormat.Height,
		FrameRateNum:   in.videoFormat.FrameRateNum,
		FrameRateDenom: in.videoFormat.FrameRateDenom,
		MIMEType:       spec.VideoSubtypeMIME[in.videoFormat.Subtype],
	}
	if in.hasAudio {
		md.HasAudio = true
		md.Channels = in.audioFormat.Channels
		md.SampleRate = in.audioFormat.SampleRate
	}
	return md
}

// LastAudioError implements SPEC_FULL.md §5's supplemented
// last-error retention: the error that stopped the current audio
// thread, if any. It is nil after Close and after a re-open; a seek
// does not clear it and does not restart an audio thread that exited.
func (in *Instance) LastAudioError() error {
	in.mu.Lock()
	renderer := in.renderer
	in.mu.Unlock()
	if renderer == nil {
		return in.lastAudioErr
	}
	return renderer.LastError()
}
