package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"hdxav/internal/clock"
	"hdxav/internal/decoding"
	"hdxav/internal/logging"
	"hdxav/internal/sleeper"
	"hdxav/pkg/spec"
)

// VolumeSource is read by the renderer on every sample (§4.4 step 6c);
// implemented by the owning Instance so volume changes take effect
// without the renderer needing its own copy of the mutex.
type VolumeSource interface {
	Volume() float64
}

// Renderer is the audio thread of §4.4: one dedicated goroutine per
// instance, started when media opens and stopped on close/seek-replace.
// Grounded on the teacher's cmd/hdx-server/engine.go engineLoop (lock
// state, read fields, sleep-and-continue on a not-ready condition,
// loop), generalized into the spec's exact step sequence.
type Renderer struct {
	log *logging.Logger

	reader decoding.SourceReader
	ring   *RingBuffer
	endpoint *Endpoint
	clock  *clock.Clock
	volume VolumeSource

	blockAlign int

	samplesReady chan struct{}
	startGate    chan struct{}
	startOnce    sync.Once

	running int32 // atomic bool: audio_thread_running
	done    chan struct{}

	lastErr atomic.Value // error
}

// NewRenderer builds a Renderer; the caller must call Run in its own
// goroutine and Start to open the start_gate (§4.2 step 6).
func NewRenderer(reader decoding.SourceReader, ring *RingBuffer, endpoint *Endpoint, c *clock.Clock, volume VolumeSource, blockAlign int) *Renderer {
	return &Renderer{
		log:          logging.New("audio"),
		reader:       reader,
		ring:         ring,
		endpoint:     endpoint,
		clock:        c,
		volume:       volume,
		blockAlign:   blockAlign,
		samplesReady: make(chan struct{}, 1),
		startGate:    make(chan struct{}),
		running:      1,
		done:         make(chan struct{}),
	}
}

// SignalSamplesReady wakes the renderer's bounded wait (§4.4 "Ring
// buffer": the endpoint signals samples_ready whenever free frames
// become available). In this implementation the renderer also polls on
// a short timeout regardless, so a missed signal never wedges it.
func (r *Renderer) SignalSamplesReady() {
	select {
	case r.samplesReady <- struct{}{}:
	default:
	}
}

// Start opens the start_gate, letting Run proceed past its initial
// unbounded wait (§4.2 step 6, §5 "Suspension points").
func (r *Renderer) Start() {
	r.startOnce.Do(func() { close(r.startGate) })
}

// Stop sets audio_thread_running = false (§4.4 "Shutdown"); Run will
// observe this within its next bounded wait and exit.
func (r *Renderer) Stop() {
	atomic.StoreInt32(&r.running, 0)
}

// Done returns a channel closed once Run has returned.
func (r *Renderer) Done() <-chan struct{} { return r.done }

// LastError returns the error that caused Run to exit, if any
// (SPEC_FULL.md §5 supplemented LastAudioError).
func (r *Renderer) LastError() error {
	if v := r.lastErr.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Run is the main loop of §4.4, executed on its own goroutine. It
// blocks unboundedly only on start_gate; every subsequent wait is
// bounded (samples_ready ≤10ms, pause/seek backoff 5ms, drift sleeps
// ≤100ms/speed), so after Stop the loop re-checks audio_thread_running
// once the wait in progress ends: within 10ms when idle on
// samples_ready, up to 100ms/speed when a drift sleep is under way.
func (r *Renderer) Run() {
	defer close(r.done)

	<-r.startGate

	for atomic.LoadInt32(&r.running) == 1 {
		select {
		case <-r.samplesReady:
		case <-time.After(spec.SamplesReadyTimeout):
		}
		if atomic.LoadInt32(&r.running) == 0 {
			break
		}

		if r.clock.SeekInProgress() || r.clock.IsPaused() {
			time.Sleep(spec.PauseCheckSleep)
			continue
		}

		if r.ring.Free() == 0 {
			continue
		}

		result, err := r.reader.ReadSample()
		if err != nil {
			r.lastErr.Store(err)
			r.log.Printf("read_sample failed, audio thread exiting: %v", err)
			break
		}
		switch result.Status {
		case decoding.StatusEndOfStream:
			r.log.Printf("audio reader reached end of stream")
			atomic.StoreInt32(&r.running, 0)
			continue
		case decoding.StatusEmpty:
			continue
		}

		sample := result.Sample
		masterNowTicks := r.clock.MasterPositionTicks()
		driftTicks := sample.TimestampTicks - masterNowTicks
		driftMs := float64(driftTicks) / float64(spec.TicksPerMs)

		if driftMs > spec.DriftAheadMs {
			sleepMs := driftMs
			if sleepMs > 100 {
				sleepMs = 100
			}
			sleeper.Precise(time.Duration(sleepMs/r.clock.Speed()*float64(time.Millisecond)))
		} else if driftMs < spec.DriftLateMs {
			// audio is late: drop this sample and continue, without
			// advancing master_position (§4.4 step 5, §8 boundary
			// behavior "Late audio sample").
			continue
		}

		r.writeSampleToRing(sample.Data)

		if sample.TimestampTicks > 0 {
			r.clock.UpdateMasterPosition(sample.TimestampTicks)
		}
	}

	r.endpoint.Stop()
}

// writeSampleToRing implements §4.4 step 6: chunked copy into the
// ring, volume scaling per chunk, and waiting on samples_ready (bounded
// 5ms) if the ring fills mid-sample.
func (r *Renderer) writeSampleToRing(data []byte) {
	frameBytes := r.blockAlign
	if frameBytes <= 0 {
		frameBytes = 1
	}
	framesInSample := len(data) / frameBytes
	offsetFrames := 0

	for offsetFrames < framesInSample {
		free := r.ring.Free()
		if free == 0 {
			select {
			case <-r.samplesReady:
			case <-time.After(5 * time.Millisecond):
			}
			if atomic.LoadInt32(&r.running) == 0 {
				return
			}
			continue
		}

		remaining := framesInSample - offsetFrames
		want := remaining
		if want > free {
			want = free
		}

		slot, got := r.ring.RenderSlot(want)
		if got == 0 {
			continue
		}

		start := offsetFrames * frameBytes
		end := start + got*frameBytes
		copy(slot, data[start:end])

		if r.volume != nil {
			ApplyVolumeInPlace16(slot, r.volume.Volume())
		}

		r.ring.Release(got)
		offsetFrames += got
	}
}
