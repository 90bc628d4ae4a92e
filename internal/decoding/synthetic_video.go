package decoding

import (
	"fmt"
	"image"
	"sync"

	"hdxav/pkg/spec"
)

// SyntheticVideoReader stands in for the out-of-scope hardware-
// accelerated decoder framework (spec.md §1 treats the container/codec
// stack as an abstract SourceReader). It emits packed-32-bit
// (image.RGBA) test-pattern frames at a configured duration/fps,
// grounded on the teacher's internal/codec/image.go RGBA buffer
// construction (ProcessArtwork), reused here to produce frames instead
// of cropping artwork.
type SyntheticVideoReader struct {
	mu sync.Mutex

	format   VideoFormat
	totalDur int64 // ticks
	fps      int

	frameIndex int
	totalFrames int
	closed      bool
}

// NewSyntheticVideoReader builds a reader that reports totalFrames =
// durationSeconds*fps frames of width x height RGBA test patterns.
func NewSyntheticVideoReader(width, height, fps int, durationSeconds float64) *SyntheticVideoReader {
	stride := width * 4
	total := int(durationSeconds * float64(fps))
	return &SyntheticVideoReader{
		format: VideoFormat{
			Width: width, Height: height, Stride: stride,
			FrameRateNum: fps, FrameRateDenom: 1,
			Subtype: "MFVideoFormat_RGB32",
		},
		fps:         fps,
		totalDur:    int64(durationSeconds * float64(spec.TicksPerSecond)),
		totalFrames: total,
	}
}

// Format exposes the negotiated video format (§3 Instance attributes).
func (s *SyntheticVideoReader) Format() VideoFormat { return s.format }

func (s *SyntheticVideoReader) ReadSample() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{}, fmt.Errorf("decoding: synthetic video reader closed")
	}
	if s.frameIndex >= s.totalFrames {
		return Result{Status: StatusEndOfStream}, nil
	}

	ts := int64(s.frameIndex) * spec.TicksPerSecond / int64(s.fps)
	img := image.NewRGBA(image.Rect(0, 0, s.format.Width, s.format.Height))

	// Paint a frame-index-dependent solid test pattern so successive
	// frames are distinguishable in tests without a real decoder.
	shade := byte((s.frameIndex * 7) % 256)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = shade
		img.Pix[i+1] = 255 - shade
		img.Pix[i+2] = byte(s.frameIndex % 256)
		img.Pix[i+3] = 255
	}

	s.frameIndex++
	return Result{Status: StatusSample, Sample: Sample{Data: img.Pix, TimestampTicks: ts}}, nil
}

func (s *SyntheticVideoReader) Seek(targetTicks int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if targetTicks < 0 {
		targetTicks = 0
	}
	s.frameIndex = int((targetTicks*int64(s.fps) + spec.TicksPerSecond - 1) / spec.TicksPerSecond)
	if s.frameIndex > s.totalFrames {
		s.frameIndex = s.totalFrames
	}
	return nil
}

func (s *SyntheticVideoReader) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// DurationTicks reports the total media duration (§4.9).
func (s *SyntheticVideoReader) DurationTicks() int64 { return s.totalDur }
