// Package video implements the synchronous, single-threaded video
// reader path of §4.5: on-demand ReadVideoFrame with drift-correction,
// wait-ahead, late-drop, and the lock/unlock buffer contract. Grounded
// on Alexander-68-GoVA__player.go's frame-pacing loop and
// GoldenFealla-go-video-player__synchronizer.go's video/audio split,
// adapted from a channel-driven push model to the spec's synchronous
// pull model (the consumer calls ReadVideoFrame; nothing is pushed).
package video

import "sync"

// LockedFrame is the buffer and pointer currently leased to the
// consumer (§3 Instance attributes: at most one per instance). Release
// is idempotent, satisfying §5's "locked video frame" ownership
// contract.
type LockedFrame struct {
	mu sync.Mutex

	buffer      []byte
	maxSize     int
	currentSize int
	locked      bool
}

// Lock records buf as the currently-leased frame, releasing any
// previous lease first (§4.5 step 1's "A pending locked buffer is
// implicitly released on entry").
func (f *LockedFrame) Lock(buf []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffer = buf
	f.maxSize = len(buf)
	f.currentSize = len(buf)
	f.locked = true
}

// Unlock releases the current lease. Idempotent: calling it twice in a
// row is equivalent to once (§8 round-trip law).
func (f *LockedFrame) Unlock() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = false
	f.buffer = nil
	f.currentSize = 0
}

// View returns the currently-leased buffer and whether one is held.
func (f *LockedFrame) View() (buf []byte, held bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buffer, f.locked
}
