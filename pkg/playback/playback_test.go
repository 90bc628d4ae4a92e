package playback

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newVideoOnlyClip(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	url := filepath.Join(dir, "clip.mp4")
	meta := `{"width":32,"height":32,"fps":50,"duration_seconds":0.1}`
	if err := os.WriteFile(url+".meta.json", []byte(meta), 0o644); err != nil {
		t.Fatalf("writing meta.json sidecar: %v", err)
	}
	return url
}

func TestPlatformInitShutdownLifecycle(t *testing.T) {
	p := New()
	if err := p.Init(); err != nil {
		t.Fatalf("Init: unexpected error: %v", err)
	}
	if err := p.Init(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("double Init: got %v, want ErrAlreadyInitialized", err)
	}
	if err := p.Shutdown(); err != nil {
		t.Errorf("Shutdown: unexpected error: %v", err)
	}
}

func TestCreateInstanceRequiresInit(t *testing.T) {
	p := New()
	if _, err := p.CreateInstance(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("CreateInstance before Init: got %v, want ErrNotInitialized", err)
	}
}

func TestShutdownRefusedWithLiveInstance(t *testing.T) {
	p := New()
	if err := p.Init(); err != nil {
		t.Fatalf("Init: unexpected error: %v", err)
	}
	h, err := p.CreateInstance()
	if err != nil {
		t.Fatalf("CreateInstance: unexpected error: %v", err)
	}

	if err := p.Shutdown(); !errors.Is(err, ErrShutdownRefused) {
		t.Errorf("Shutdown with a live instance: got %v, want ErrShutdownRefused", err)
	}

	h.Destroy()
	if err := p.Shutdown(); err != nil {
		t.Errorf("Shutdown after Destroy: unexpected error: %v", err)
	}
}

func TestInstanceOpenReadPlayPauseSeek(t *testing.T) {
	p := New()
	if err := p.Init(); err != nil {
		t.Fatalf("Init: unexpected error: %v", err)
	}
	defer p.Shutdown()

	h, err := p.CreateInstance()
	if err != nil {
		t.Fatalf("CreateInstance: unexpected error: %v", err)
	}
	defer h.Destroy()

	if err := h.Open(newVideoOnlyClip(t)); err != nil {
		t.Fatalf("Open: unexpected error: %v", err)
	}

	outcome, buf := h.ReadVideoFrame()
	if outcome != FrameDelivered {
		t.Fatalf("ReadVideoFrame: got outcome %v, want FrameDelivered", outcome)
	}
	if len(buf) == 0 {
		t.Error("ReadVideoFrame: got empty buffer")
	}
	h.UnlockVideoFrame()

	h.Play()
	if !h.IsPlaying() {
		t.Error("IsPlaying: want true after Play")
	}
	h.Pause()
	if h.IsPlaying() {
		t.Error("IsPlaying: want false after Pause")
	}

	h.SetVolume(0.25)
	if got := h.Volume(); got != 0.25 {
		t.Errorf("Volume: got %v, want 0.25", got)
	}

	h.SetSpeed(1.5)
	if got := h.Speed(); got != 1.5 {
		t.Errorf("Speed: got %v, want 1.5", got)
	}

	const target = 50_000 // 5ms into a 0.1s clip
	if err := h.Seek(target); err != nil {
		t.Fatalf("Seek: unexpected error: %v", err)
	}
	if got := h.MediaPosition(); got != target {
		t.Errorf("MediaPosition after seek: got %d, want %d", got, target)
	}

	w, ht := h.VideoSize()
	if w != 32 || ht != 32 {
		t.Errorf("VideoSize: got (%d,%d), want (32,32)", w, ht)
	}

	md := h.GetVideoMetadata()
	if !md.HasVideo {
		t.Error("GetVideoMetadata: want HasVideo true")
	}
	if md.HasAudio {
		t.Error("GetVideoMetadata: want HasAudio false for a video-only clip")
	}

	h.Close()
	if h.IsPlaying() {
		t.Error("IsPlaying after Close: want false")
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	p := New()
	if err := p.Init(); err != nil {
		t.Fatalf("Init: unexpected error: %v", err)
	}
	defer p.Shutdown()

	h, err := p.CreateInstance()
	if err != nil {
		t.Fatalf("CreateInstance: unexpected error: %v", err)
	}

	h.Destroy()
	h.Destroy() // must not double-release the platform's instance count

	if got := p.ActiveInstances(); got != 0 {
		t.Errorf("ActiveInstances after double Destroy: got %d, want 0", got)
	}
}
