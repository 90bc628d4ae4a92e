package decoding

import (
	"encoding/binary"
	"io"
	"os"
	"sync"

	"github.com/hraban/opus"

	"hdxav/pkg/spec"
)

// OpusAudioReader decodes a stream of length-prefixed Opus frames,
// grounded on the teacher's pkg/audioengine/stream_decoder.go
// StreamDecoder.DecodeFrame and on cmd/hdx-server/engine.go's
// lazyStreamer (which reads a uint16 length prefix then the encoded
// frame) — adapted from a beep.Streamer into a SourceReader.
type OpusAudioReader struct {
	mu sync.Mutex

	file   *os.File
	dec    *opus.Decoder
	format AudioFormat

	frameSamples int // samples per channel per Opus frame (20ms)
	sampleIdx    int64
	closed       bool
	eof          bool

	// dataStart is the file offset the first frame begins at, so Seek
	// can rewind; this repo's Opus fixtures have no interior index, so
	// seeking re-decodes from the start and discards, same as WavAudioReader.
	dataStart int64
}

// OpenOpusAudioReader opens a file containing a sequence of
// [uint16 length][opus frame] records at 48kHz stereo, 20ms frames.
func OpenOpusAudioReader(path string) (*OpusAudioReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := opus.NewDecoder(spec.DefaultSampleRate, spec.DefaultChannels)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &OpusAudioReader{
		file: f,
		dec:  dec,
		format: AudioFormat{
			SampleRate:     spec.DefaultSampleRate,
			Channels:       spec.DefaultChannels,
			BitsPerSample:  spec.DefaultBitsPerSample,
			BlockAlign:     spec.DefaultBlockAlign,
			BytesPerSecond: spec.DefaultBytesPerSecond,
		},
		frameSamples: spec.DefaultSampleRate / 50, // 20ms
	}, nil
}

func (o *OpusAudioReader) Format() AudioFormat { return o.format }

func (o *OpusAudioReader) ReadSample() (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return Result{}, io.ErrClosedPipe
	}
	if o.eof {
		return Result{Status: StatusEndOfStream}, nil
	}

	var frameLen uint16
	if err := binary.Read(o.file, binary.BigEndian, &frameLen); err != nil {
		if err == io.EOF {
			o.eof = true
			return Result{Status: StatusEndOfStream}, nil
		}
		return Result{}, err
	}

	enc := make([]byte, frameLen)
	if _, err := io.ReadFull(o.file, enc); err != nil {
		return Result{}, err
	}

	out := make([]int16, o.frameSamples*o.format.Channels)
	n, err := o.dec.Decode(enc, out)
	if err != nil {
		return Result{}, err
	}

	pcm := make([]byte, n*o.format.Channels*2)
	for i := 0; i < n*o.format.Channels; i++ {
		v := out[i]
		pcm[i*2] = byte(v)
		pcm[i*2+1] = byte(v >> 8)
	}

	ts := o.sampleIdx * spec.TicksPerSecond / int64(o.format.SampleRate)
	o.sampleIdx += int64(n)

	return Result{Status: StatusSample, Sample: Sample{Data: pcm, TimestampTicks: ts}}, nil
}

func (o *OpusAudioReader) Seek(targetTicks int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	targetSample := targetTicks * int64(o.format.SampleRate) / spec.TicksPerSecond
	if targetSample < 0 {
		targetSample = 0
	}

	if _, err := o.file.Seek(o.dataStart, io.SeekStart); err != nil {
		return err
	}
	dec, err := opus.NewDecoder(o.format.SampleRate, o.format.Channels)
	if err != nil {
		return err
	}
	o.dec = dec
	o.sampleIdx = 0
	o.eof = false

	for o.sampleIdx < targetSample {
		var frameLen uint16
		if err := binary.Read(o.file, binary.BigEndian, &frameLen); err != nil {
			break
		}
		enc := make([]byte, frameLen)
		if _, err := io.ReadFull(o.file, enc); err != nil {
			break
		}
		out := make([]int16, o.frameSamples*o.format.Channels)
		n, err := o.dec.Decode(enc, out)
		if err != nil {
			break
		}
		o.sampleIdx += int64(n)
	}
	return nil
}

func (o *OpusAudioReader) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	return o.file.Close()
}
