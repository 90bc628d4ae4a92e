package audio

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// Meter implements §4.8's get_audio_levels: a peak-magnitude readout
// per channel converted to a 0-100 percent via
// percent = clamp((20*log10(peak)+60)/60, 0, 1) * 100, with peak==0
// mapped to 0 without evaluating log10(0). Grounded on the teacher's
// internal/codec/spectrogram.go FFT-then-magnitude pipeline
// (fft.FFTReal, math.Sqrt(real^2+imag^2)), reused here to get a peak
// magnitude from a short window of recent samples instead of building
// a spectrogram image.
type Meter struct {
	window int // samples per channel used for the FFT window
}

// NewMeter returns a Meter that analyzes the most recent window
// samples per channel (rounded up to a power of two internally is not
// required by go-dsp/fft.FFTReal, which accepts any length).
func NewMeter(window int) *Meter {
	if window <= 0 {
		window = 512
	}
	return &Meter{window: window}
}

// Levels computes left/right peak percentages from the most recent
// interleaved 16-bit stereo PCM samples written to the ring (or any
// recent tap the endpoint exposes). Input longer than window frames is
// cut to its last window frames; shorter input is analyzed as-is.
func (m *Meter) Levels(pcmStereo16 []byte) (leftPct, rightPct float64) {
	if frames := len(pcmStereo16) / 4; frames > m.window {
		pcmStereo16 = pcmStereo16[(frames-m.window)*4 : frames*4]
	}
	left, right := deinterleave16(pcmStereo16)
	return m.channelPercent(left), m.channelPercent(right)
}

func (m *Meter) channelPercent(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	coeffs := fft.FFTReal(samples)

	var peak float64
	for _, c := range coeffs {
		mag := math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
		if mag > peak {
			peak = mag
		}
	}
	// Scale the FFT magnitude back to the input's int16 amplitude range
	// (peakToPercent then divides by 32768); go-dsp's FFTReal is
	// unnormalized, so divide by N like the teacher's spectrogram scaling does
	// informally via its /500 intensity cap.
	if len(samples) > 0 {
		peak /= float64(len(samples))
	}

	return peakToPercent(peak)
}

// peakToPercent applies §4.8's exact formula, guarding log10(0).
func peakToPercent(peak float64) float64 {
	if peak <= 0 {
		return 0
	}
	norm := peak / 32768.0
	if norm <= 0 {
		return 0
	}
	db := 20 * math.Log10(norm)
	pct := (db + 60) / 60
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	return pct * 100
}

func deinterleave16(pcm []byte) (left, right []float64) {
	frames := len(pcm) / 4 // stereo, 2 bytes/sample
	left = make([]float64, frames)
	right = make([]float64, frames)
	for i := 0; i < frames; i++ {
		lo := int16(uint16(pcm[i*4]) | uint16(pcm[i*4+1])<<8)
		ro := int16(uint16(pcm[i*4+2]) | uint16(pcm[i*4+3])<<8)
		left[i] = float64(lo)
		right[i] = float64(ro)
	}
	return left, right
}
