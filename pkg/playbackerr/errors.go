// Package playbackerr defines the error taxonomy every hdxav operation
// returns (§7). Sentinel errors are compared with errors.Is;
// PlatformFailure preserves the opaque code an underlying collaborator
// returned so it can be logged without being parsed.
package playbackerr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized means the operation requires platform_init or
	// an open media and neither has happened yet.
	ErrNotInitialized = errors.New("hdxav: not initialized")

	// ErrAlreadyInitialized means platform_init was called twice.
	ErrAlreadyInitialized = errors.New("hdxav: already initialized")

	// ErrInvalidParameter means a null handle or an out-of-range
	// numeric argument was passed.
	ErrInvalidParameter = errors.New("hdxav: invalid parameter")

	// ErrOutOfMemory means instance allocation failed.
	ErrOutOfMemory = errors.New("hdxav: out of memory")

	// ErrEndOfStream is not a failure; it is the distinguished
	// terminal return from the video path once the reader reports EOS.
	ErrEndOfStream = errors.New("hdxav: end of stream")

	// ErrShutdownRefused means platform_shutdown was called while
	// active_instances > 0.
	ErrShutdownRefused = errors.New("hdxav: shutdown refused, instances still live")
)

// PlatformFailure wraps an opaque failure code from an underlying
// collaborator (the decoder framework, the accelerator device, the
// audio endpoint). The code is preserved, never parsed.
type PlatformFailure struct {
	Code int
	Op   string
	Err  error
}

func (p *PlatformFailure) Error() string {
	if p.Err != nil {
		return fmt.Sprintf("hdxav: platform failure in %s (code %d): %v", p.Op, p.Code, p.Err)
	}
	return fmt.Sprintf("hdxav: platform failure in %s (code %d)", p.Op, p.Code)
}

func (p *PlatformFailure) Unwrap() error { return p.Err }

// NewPlatformFailure builds a PlatformFailure with code stored as
// given; callers pass 0 when the collaborator gave no opaque code.
func NewPlatformFailure(op string, code int, err error) error {
	return &PlatformFailure{Op: op, Code: code, Err: err}
}
