package platform

import (
	"errors"
	"testing"

	"hdxav/pkg/playbackerr"
)

func TestInitializeRejectsDoubleInit(t *testing.T) {
	h := New()
	if err := h.Initialize(); err != nil {
		t.Fatalf("first Initialize: unexpected error: %v", err)
	}
	defer h.Shutdown()

	if err := h.Initialize(); !errors.Is(err, playbackerr.ErrAlreadyInitialized) {
		t.Errorf("second Initialize: got %v, want ErrAlreadyInitialized", err)
	}
}

func TestShutdownRequiresInitFirst(t *testing.T) {
	h := New()
	if err := h.Shutdown(); !errors.Is(err, playbackerr.ErrNotInitialized) {
		t.Errorf("Shutdown before Initialize: got %v, want ErrNotInitialized", err)
	}
}

func TestShutdownRefusedWithActiveInstances(t *testing.T) {
	h := New()
	if err := h.Initialize(); err != nil {
		t.Fatalf("Initialize: unexpected error: %v", err)
	}
	if err := h.AcquireInstance(); err != nil {
		t.Fatalf("AcquireInstance: unexpected error: %v", err)
	}

	if err := h.Shutdown(); !errors.Is(err, playbackerr.ErrShutdownRefused) {
		t.Errorf("Shutdown with a live instance: got %v, want ErrShutdownRefused", err)
	}

	h.ReleaseInstance()
	if err := h.Shutdown(); err != nil {
		t.Errorf("Shutdown after releasing the last instance: unexpected error: %v", err)
	}
}

func TestAcquireInstanceRequiresInitialized(t *testing.T) {
	h := New()
	if err := h.AcquireInstance(); !errors.Is(err, playbackerr.ErrNotInitialized) {
		t.Errorf("AcquireInstance before Initialize: got %v, want ErrNotInitialized", err)
	}
}

func TestActiveInstancesNeverGoesNegative(t *testing.T) {
	h := New()
	h.Initialize()
	defer h.Shutdown()

	h.ReleaseInstance()
	h.ReleaseInstance()
	if got := h.ActiveInstances(); got != 0 {
		t.Errorf("ActiveInstances after redundant releases: got %d, want 0", got)
	}
}

func TestEnsureAudioBackendRequiresInitialized(t *testing.T) {
	h := New()
	if err := h.EnsureAudioBackend(48000); !errors.Is(err, playbackerr.ErrNotInitialized) {
		t.Errorf("EnsureAudioBackend before Initialize: got %v, want ErrNotInitialized", err)
	}
}
