// Package platform implements the process-scoped host of §4.1: the
// decoder-framework handle, the accelerator device and its reset-token
// manager, the audio endpoint backend, and the active-instance
// registry/refcount. Grounded on the teacher's cmd/hdx-server/ipc.go
// controlOwner/claimOwner/releaseOwner single-owner-with-mutex pattern,
// generalized from "one exclusive IPC owner" to "N live instances with
// a refcount" behind the same one-mutex shape.
package platform

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"hdxav/internal/logging"
	"hdxav/pkg/playbackerr"
)

// speakerBufferSize is the callback buffer speaker.Init is opened with,
// matching the teacher's cmd/hdx-speaker default of a 1/10s callback
// period — small enough for responsive pause/seek, large enough to
// avoid audio-thread starvation dropouts.
const speakerBufferSize = 100 * time.Millisecond

// Host is the process-scoped singleton. It is not itself a Go
// singleton variable — callers own a *Host and are expected to share
// one per process, matching spec.md §4.1 ("process-scoped, singleton").
type Host struct {
	mu sync.Mutex

	log *logging.Logger

	initialized bool

	resetTokens *ResetTokenManager
	mixer       *beep.Mixer
	backendUp   bool
	backendRate int

	activeInstances int
}

// New constructs an uninitialized Host.
func New() *Host {
	return &Host{log: logging.New("platform")}
}

// Initialize brings up the decoder framework (opaque in this repo — the
// real codec stack is out of scope per spec.md §1), the accelerator
// device's reset-token manager, and the shared audio mixer; the output
// device behind the mixer is started later, on first use, by
// EnsureAudioBackend.
// Idempotent in effect but rejects redundant calls with
// ErrAlreadyInitialized (§4.1).
func (h *Host) Initialize() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return playbackerr.ErrAlreadyInitialized
	}

	h.resetTokens = NewResetTokenManager()
	h.mixer = &beep.Mixer{}
	h.initialized = true
	h.log.Printf("platform host initialized")
	return nil
}

// Shutdown releases host resources in reverse order of acquisition.
// Refused while any instance is live (§4.1, §8 "platform_shutdown fails
// iff active_instances_count is nonzero").
func (h *Host) Shutdown() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.initialized {
		return playbackerr.ErrNotInitialized
	}
	if h.activeInstances > 0 {
		return playbackerr.ErrShutdownRefused
	}

	h.mixer = nil
	h.resetTokens = nil
	h.backendUp = false
	h.backendRate = 0
	h.initialized = false
	h.log.Printf("platform host shut down")
	return nil
}

// Mixer returns the shared output mixer every instance's audio Endpoint
// mixes into (internal/audio.Endpoint).
func (h *Host) Mixer() *beep.Mixer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mixer
}

// EnsureAudioBackend brings up the real beep/speaker output device at
// sampleRate and starts it playing the shared mixer, the first time any
// instance negotiates an audio format (§4.2 step 5). speaker.Init may
// only be called once per process and fixes the device's sample rate
// for its lifetime, so later instances negotiating a different rate
// are resampled by nothing here — they share the first rate that won
// (first-instance-wins, logged). This mirrors the real shared-mode
// mixer spec.md §1 describes: one physical device format, many logical
// streams mixed into it.
func (h *Host) EnsureAudioBackend(sampleRate int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.initialized {
		return playbackerr.ErrNotInitialized
	}
	if h.backendUp {
		if h.backendRate != sampleRate {
			h.log.Printf("audio backend already running at %dHz, ignoring request for %dHz", h.backendRate, sampleRate)
		}
		return nil
	}

	if err := speaker.Init(beep.SampleRate(sampleRate), beep.SampleRate(sampleRate).N(speakerBufferSize)); err != nil {
		return playbackerr.NewPlatformFailure("speaker.Init", 0, err)
	}
	speaker.Play(h.mixer)
	h.backendUp = true
	h.backendRate = sampleRate
	h.log.Printf("audio backend started at %dHz", sampleRate)
	return nil
}

// ResetTokens returns the accelerator device's reset-token manager.
func (h *Host) ResetTokens() *ResetTokenManager {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resetTokens
}

// AcquireInstance increments the active-instance counter; callers must
// call ReleaseInstance exactly once per successful AcquireInstance
// (§4.1 create_instance/destroy_instance, §8 invariant 1).
func (h *Host) AcquireInstance() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.initialized {
		return playbackerr.ErrNotInitialized
	}
	h.activeInstances++
	return nil
}

// ReleaseInstance decrements the active-instance counter.
func (h *Host) ReleaseInstance() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.activeInstances > 0 {
		h.activeInstances--
	}
}

// ActiveInstances reports the current live-instance count (§8 invariant 1).
func (h *Host) ActiveInstances() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.activeInstances
}

// IsInitialized reports whether Initialize has succeeded and Shutdown
// has not yet followed.
func (h *Host) IsInitialized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initialized
}
