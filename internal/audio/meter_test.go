package audio

import "testing"

func TestPeakToPercentZeroGuard(t *testing.T) {
	if got := peakToPercent(0); got != 0 {
		t.Errorf("peakToPercent(0): got %v, want 0", got)
	}
	if got := peakToPercent(-5); got != 0 {
		t.Errorf("peakToPercent(negative): got %v, want 0", got)
	}
}

func TestPeakToPercentFullScale(t *testing.T) {
	got := peakToPercent(32768)
	if got != 100 {
		t.Errorf("peakToPercent(32768) full scale: got %v, want 100", got)
	}
}

func TestPeakToPercentMonotonic(t *testing.T) {
	low := peakToPercent(100)
	high := peakToPercent(10000)
	if !(low < high) {
		t.Errorf("peakToPercent should increase with peak: low=%v high=%v", low, high)
	}
}

func TestMeterLevelsSilence(t *testing.T) {
	m := NewMeter(64)
	silence := make([]byte, 64*4)
	left, right := m.Levels(silence)
	if left != 0 || right != 0 {
		t.Errorf("Levels(silence): got (%v, %v), want (0, 0)", left, right)
	}
}

func TestMeterLevelsLoudExceedsQuiet(t *testing.T) {
	m := NewMeter(64)

	quiet := make([]byte, 64*4)
	for i := 0; i < 64; i++ {
		v := int16(100)
		quiet[i*4] = byte(v)
		quiet[i*4+1] = byte(v >> 8)
	}
	loud := make([]byte, 64*4)
	for i := 0; i < 64; i++ {
		v := int16(20000)
		loud[i*4] = byte(v)
		loud[i*4+1] = byte(v >> 8)
	}

	quietLeft, _ := m.Levels(quiet)
	loudLeft, _ := m.Levels(loud)
	if !(loudLeft > quietLeft) {
		t.Errorf("louder signal should meter higher: quiet=%v loud=%v", quietLeft, loudLeft)
	}
}

func TestDeinterleave16(t *testing.T) {
	pcm := make([]byte, 8) // 2 frames stereo
	pcm[0], pcm[1] = 10, 0 // left frame0 = 10
	pcm[2], pcm[3] = 20, 0 // right frame0 = 20
	pcm[4], pcm[5] = 30, 0
	pcm[6], pcm[7] = 40, 0

	left, right := deinterleave16(pcm)
	if len(left) != 2 || len(right) != 2 {
		t.Fatalf("deinterleave16: got %d/%d frames, want 2/2", len(left), len(right))
	}
	if left[0] != 10 || right[0] != 20 || left[1] != 30 || right[1] != 40 {
		t.Errorf("deinterleave16: got left=%v right=%v", left, right)
	}
}
