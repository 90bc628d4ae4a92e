package decoding

import (
	"io"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"hdxav/pkg/spec"
)

// WavAudioReader decodes a PCM WAV fixture block-by-block at the
// negotiated block-align, grounded on the teacher's
// pkg/audioengine/stream_encoder.go dec.PCMBuffer(intBuf) loop
// (adapted here to decode instead of encode, and to negotiated-
// block-align-sized reads instead of one-second batches).
type WavAudioReader struct {
	mu sync.Mutex

	file   *os.File
	dec    *wav.Decoder
	format AudioFormat

	intBuf     *audio.IntBuffer
	cursor     int // index into intBuf.Data not yet consumed
	sampleIdx  int64 // total samples (per channel) consumed, for PTS
	closed     bool
	eof        bool
}

// wavFramesPerRead is the most frames (each one block-align of
// interleaved samples, all channels) one ReadSample call returns; the
// renderer then copies them into the ring in chunks (§4.4 step 6).
const wavFramesPerRead = 960 // 20ms @ 48kHz, same cadence the teacher's opus path uses

// OpenWavAudioReader opens a WAV file and reports the default audio
// output format (§4.2 step 4): PCM 16-bit, 2 channels, 48kHz. The
// file's own sample rate, channel count and bit depth are not checked
// or converted; its samples are passed on as decoded.
func OpenWavAudioReader(path string) (*WavAudioReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, io.ErrUnexpectedEOF
	}
	dec.ReadInfo()

	format := AudioFormat{
		SampleRate:     spec.DefaultSampleRate,
		Channels:       spec.DefaultChannels,
		BitsPerSample:  spec.DefaultBitsPerSample,
		BlockAlign:     spec.DefaultBlockAlign,
		BytesPerSecond: spec.DefaultBytesPerSecond,
	}

	return &WavAudioReader{
		file:   f,
		dec:    dec,
		format: format,
		intBuf: &audio.IntBuffer{
			Data:   make([]int, wavFramesPerRead*format.Channels),
			Format: &audio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
		},
	}, nil
}

// Format exposes the negotiated audio format.
func (w *WavAudioReader) Format() AudioFormat { return w.format }

func (w *WavAudioReader) ReadSample() (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return Result{}, io.ErrClosedPipe
	}
	if w.eof {
		return Result{Status: StatusEndOfStream}, nil
	}

	n, err := w.dec.PCMBuffer(w.intBuf)
	if err != nil && err != io.EOF {
		return Result{}, err
	}
	if n == 0 {
		w.eof = true
		return Result{Status: StatusEndOfStream}, nil
	}

	pcm := make([]byte, n*2) // int16 little-endian, interleaved
	for i := 0; i < n; i++ {
		v := int16(w.intBuf.Data[i])
		pcm[i*2] = byte(v)
		pcm[i*2+1] = byte(v >> 8)
	}

	framesThisRead := n / w.format.Channels
	ts := w.sampleIdx * spec.TicksPerSecond / int64(w.format.SampleRate)
	w.sampleIdx += int64(framesThisRead)

	if err == io.EOF {
		w.eof = true
	}

	return Result{Status: StatusSample, Sample: Sample{Data: pcm, TimestampTicks: ts}}, nil
}

func (w *WavAudioReader) Seek(targetTicks int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	targetSample := targetTicks * int64(w.format.SampleRate) / spec.TicksPerSecond
	if targetSample < 0 {
		targetSample = 0
	}

	// go-audio/wav has no random-access sample seek on *wav.Decoder
	// beyond rewinding; re-open the file and fast-forward by decoding
	// and discarding, matching the teacher's decode-then-discard style
	// in internal/codec/opus.go for irregular chunk boundaries.
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	w.dec = wav.NewDecoder(w.file)
	w.dec.ReadInfo()
	w.sampleIdx = 0
	w.eof = false

	for w.sampleIdx < targetSample {
		n, err := w.dec.PCMBuffer(w.intBuf)
		if n == 0 || err != nil {
			break
		}
		w.sampleIdx += int64(n / w.format.Channels)
	}
	return nil
}

func (w *WavAudioReader) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
