package instance

import (
	"os"
	"path/filepath"
	"testing"

	"hdxav/internal/platform"
	"hdxav/internal/video"
)

func newTestHost(t *testing.T) *platform.Host {
	t.Helper()
	h := platform.New()
	if err := h.Initialize(); err != nil {
		t.Fatalf("host Initialize: unexpected error: %v", err)
	}
	return h
}

// newVideoOnlyClip writes a small meta.json sidecar describing a short,
// high-fps synthetic clip (so tests exercising the video-only wait-ahead
// path don't spend real wall-clock time on hundreds of frames) and
// returns the URL Open should be called with. No .wav sidecar is
// created, so the audio path never negotiates and Open exercises the
// video-only branch without touching a real audio backend.
func newVideoOnlyClip(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	url := filepath.Join(dir, "clip.mp4")
	meta := `{"width":64,"height":64,"fps":50,"duration_seconds":0.2}`
	if err := os.WriteFile(url+".meta.json", []byte(meta), 0o644); err != nil {
		t.Fatalf("writing meta.json sidecar: %v", err)
	}
	return url
}

func TestOpenCloseVideoOnly(t *testing.T) {
	h := newTestHost(t)
	defer h.Shutdown()

	in := New(h)
	if err := in.Open(newVideoOnlyClip(t)); err != nil {
		t.Fatalf("Open: unexpected error: %v", err)
	}
	if in.HasAudio() {
		t.Error("HasAudio: want false for a clip with no audio sidecar")
	}
	if in.IsLoading() {
		t.Error("IsLoading: want false once Open has returned")
	}

	w, h2 := in.GetVideoSize()
	if w != 64 || h2 != 64 {
		t.Errorf("GetVideoSize: got (%d,%d), want (64,64) from the sidecar", w, h2)
	}
	num, denom := in.GetVideoFrameRate()
	if num != 50 || denom != 1 {
		t.Errorf("GetVideoFrameRate: got (%d,%d), want (50,1) from the sidecar", num, denom)
	}

	in.Close()
	if in.HasAudio() {
		t.Error("HasAudio after Close: want false")
	}
}

func TestReadVideoFrameThroughInstance(t *testing.T) {
	h := newTestHost(t)
	defer h.Shutdown()

	in := New(h)
	if err := in.Open(newVideoOnlyClip(t)); err != nil {
		t.Fatalf("Open: unexpected error: %v", err)
	}
	defer in.Close()

	outcome, buf := in.ReadVideoFrame()
	if outcome != video.OutcomeFrame {
		t.Fatalf("first ReadVideoFrame: got %v, want OutcomeFrame", outcome)
	}
	if len(buf) == 0 {
		t.Error("ReadVideoFrame: got empty frame buffer")
	}
	in.UnlockVideoFrame()
}

func TestSetPlaybackStatePlayPauseStop(t *testing.T) {
	h := newTestHost(t)
	defer h.Shutdown()

	in := New(h)
	if err := in.Open(newVideoOnlyClip(t)); err != nil {
		t.Fatalf("Open: unexpected error: %v", err)
	}
	defer in.Close()

	in.SetPlaybackState(true, false)
	if !in.IsPlaying() {
		t.Error("IsPlaying: want true after play")
	}

	in.SetPlaybackState(false, false)
	if in.IsPlaying() {
		t.Error("IsPlaying: want false after pause")
	}

	in.SetPlaybackState(true, false)
	in.SetPlaybackState(false, true)
	if in.IsPlaying() {
		t.Error("IsPlaying: want false after stop")
	}
}

func TestVolumeClamping(t *testing.T) {
	h := newTestHost(t)
	defer h.Shutdown()
	in := New(h)

	in.SetVolume(5.0)
	if got := in.GetVolume(); got != 1.0 {
		t.Errorf("SetVolume(5.0): got %v, want clamped 1.0", got)
	}
	in.SetVolume(-1.0)
	if got := in.GetVolume(); got != 0.0 {
		t.Errorf("SetVolume(-1.0): got %v, want clamped 0.0", got)
	}
}

func TestSpeedClamping(t *testing.T) {
	h := newTestHost(t)
	defer h.Shutdown()
	in := New(h)

	in.SetPlaybackSpeed(99)
	if got := in.GetPlaybackSpeed(); got != 2.0 {
		t.Errorf("SetPlaybackSpeed(99): got %v, want clamped 2.0", got)
	}
}

func TestGetAudioLevelsWithoutAudioReturnsZero(t *testing.T) {
	h := newTestHost(t)
	defer h.Shutdown()

	in := New(h)
	if err := in.Open(newVideoOnlyClip(t)); err != nil {
		t.Fatalf("Open: unexpected error: %v", err)
	}
	defer in.Close()

	left, right := in.GetAudioLevels()
	if left != 0 || right != 0 {
		t.Errorf("GetAudioLevels with no audio path: got (%v,%v), want (0,0)", left, right)
	}
}

func TestSeekOnVideoOnlyInstance(t *testing.T) {
	h := newTestHost(t)
	defer h.Shutdown()

	in := New(h)
	if err := in.Open(newVideoOnlyClip(t)); err != nil {
		t.Fatalf("Open: unexpected error: %v", err)
	}
	defer in.Close()

	const target = 1_000_000 // 0.1s in ticks, within the 0.2s clip
	if err := in.Seek(target); err != nil {
		t.Fatalf("Seek: unexpected error: %v", err)
	}
	if got := in.GetMediaPosition(); got != target {
		t.Errorf("GetMediaPosition after seek: got %d, want %d", got, target)
	}
	if in.IsEOF() {
		t.Error("IsEOF after seek: want false")
	}

	outcome, _ := in.ReadVideoFrame()
	if outcome != video.OutcomeFrame {
		t.Errorf("ReadVideoFrame after seek: got %v, want OutcomeFrame", outcome)
	}
}

func TestAcceleratorResetEndsStreamEarly(t *testing.T) {
	h := newTestHost(t)
	defer h.Shutdown()

	in := New(h)
	if err := in.Open(newVideoOnlyClip(t)); err != nil {
		t.Fatalf("Open: unexpected error: %v", err)
	}
	defer in.Close()

	if in.AcceleratorResetDetected() {
		t.Fatal("AcceleratorResetDetected: want false immediately after Open")
	}

	h.ResetTokens().Reset()

	if !in.AcceleratorResetDetected() {
		t.Fatal("AcceleratorResetDetected: want true after the host's accelerator device resets")
	}

	outcome, _ := in.ReadVideoFrame()
	if outcome != video.OutcomeEndOfStream {
		t.Errorf("ReadVideoFrame after accelerator reset: got %v, want OutcomeEndOfStream", outcome)
	}
	if !in.IsEOF() {
		t.Error("IsEOF after accelerator reset: want true")
	}
}

func TestSeekClearsEOFLatch(t *testing.T) {
	h := newTestHost(t)
	defer h.Shutdown()

	in := New(h)
	// a 0.2s / 50fps clip (10 frames): drain every frame to force EOS.
	if err := in.Open(newVideoOnlyClip(t)); err != nil {
		t.Fatalf("Open: unexpected error: %v", err)
	}
	defer in.Close()

	for i := 0; i < 20; i++ {
		outcome, _ := in.ReadVideoFrame()
		if outcome == video.OutcomeEndOfStream {
			break
		}
	}
	if !in.IsEOF() {
		t.Fatal("expected EndOfStream to have been reached by 20 reads of a 10-frame clip")
	}

	if err := in.Seek(0); err != nil {
		t.Fatalf("Seek: unexpected error: %v", err)
	}
	if in.IsEOF() {
		t.Error("IsEOF after seeking away from end of stream: want false")
	}
	outcome, _ := in.ReadVideoFrame()
	if outcome != video.OutcomeFrame {
		t.Errorf("ReadVideoFrame after EOS-then-seek: got %v, want OutcomeFrame (not EndOfStream)", outcome)
	}
}
