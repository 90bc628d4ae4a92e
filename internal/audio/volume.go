package audio

import "math"

// ApplyVolumeInPlace16 scales each signed 16-bit little-endian sample
// in pcm by volume, truncating on cast back (§4.4 step 6c, §9 open
// question: truncation, not rounding, preserved for bit-for-bit
// reproducibility of test vectors). Grounded on the teacher's
// pkg/audioengine/dsp.go ApplyQuickGain, with the saturating clamp
// removed since volume is always in [0,1] and cannot overflow int16.
func ApplyVolumeInPlace16(pcm []byte, volume float64) {
	if volume >= 0.999 {
		return
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		v := int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8)
		scaled := int16(float64(v) * volume) // truncation, not rounding
		pcm[i] = byte(scaled)
		pcm[i+1] = byte(scaled >> 8)
	}
}

// ApplyVolumeInPlaceFloat32 scales each little-endian float32 sample by
// volume (§4.4 step 6c's float-PCM branch).
func ApplyVolumeInPlaceFloat32(pcm []byte, volume float64) {
	if volume >= 0.999 {
		return
	}
	for i := 0; i+3 < len(pcm); i += 4 {
		bits := uint32(pcm[i]) | uint32(pcm[i+1])<<8 | uint32(pcm[i+2])<<16 | uint32(pcm[i+3])<<24
		f := math.Float32frombits(bits)
		f = float32(float64(f) * volume)
		bits = math.Float32bits(f)
		pcm[i] = byte(bits)
		pcm[i+1] = byte(bits >> 8)
		pcm[i+2] = byte(bits >> 16)
		pcm[i+3] = byte(bits >> 24)
	}
}
