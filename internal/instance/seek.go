package instance

import "time"

// Seek implements §4.7's twelve-step atomic seek coordinator. Grounded
// on cmd/hdx-server/command.go's cmdSeek (lock, mutate several fields
// under the one state mutex, unlock, then act on the decoder outside
// the lock), generalized from a single seekable stream to the
// video-reader/audio-reader/audio-client triple.
func (in *Instance) Seek(targetTicks int64) error {
	// step 1.
	in.clock.BeginSeek()

	// step 2 is folded into BeginSeek (nudges pause_start_wall if paused).

	// step 3.
	in.mu.Lock()
	reader := in.reader
	pipeline := in.pipeline
	endpoint := in.endpoint
	ring := in.ring
	renderer := in.renderer
	wasPlaying := in.playing
	in.mu.Unlock()

	if reader != nil {
		reader.Unlock()
	}

	// step 4.
	if endpoint != nil {
		endpoint.Stop()
		time.Sleep(5 * time.Millisecond)
	}

	// step 5: presentation-clock mode has no separate stop step here —
	// BeginSeek/CompleteSeek re-anchor it directly (§4.6 mode 2).

	// step 6.
	if pipeline != nil && pipeline.Video != nil {
		if err := pipeline.Video.Seek(targetTicks); err != nil {
			in.clock.CompleteSeek(in.clock.CurrentPositionTicks())
			return err
		}
	}
	if reader != nil {
		reader.ClearEOF()
	}

	// step 7.
	if pipeline != nil && pipeline.Audio != nil {
		if err := pipeline.Audio.Seek(targetTicks); err != nil {
			in.log.Printf("audio reader seek to %d failed, continuing video-only for this segment: %v", targetTicks, err)
		}
	}

	// step 8.
	if ring != nil {
		ring.Reset()
	}

	// step 9/10.
	in.mu.Lock()
	in.eof = false
	in.mu.Unlock()
	in.clock.CompleteSeek(targetTicks)

	// step 11.
	if wasPlaying && endpoint != nil {
		endpoint.Start()
	}

	// step 12.
	if renderer != nil {
		renderer.Start()
		renderer.SignalSamplesReady()
	}

	return nil
}
