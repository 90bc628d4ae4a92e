package clock

import (
	"testing"
	"time"
)

func TestSpeedClamp(t *testing.T) {
	c := New(ModeAudioMaster)
	c.SetSpeed(10)
	if got := c.Speed(); got != 2.0 {
		t.Errorf("SetSpeed(10): got %v, want clamped 2.0", got)
	}
	c.SetSpeed(0.01)
	if got := c.Speed(); got != 0.5 {
		t.Errorf("SetSpeed(0.01): got %v, want clamped 0.5", got)
	}
}

func TestEffectiveElapsedBeforeStart(t *testing.T) {
	c := New(ModeAudioMaster)
	if got := c.EffectiveElapsedTicks(); got != 0 {
		t.Errorf("EffectiveElapsedTicks before Start: got %d, want 0", got)
	}
}

func TestPauseResumeAccounting(t *testing.T) {
	c := New(ModeAudioMaster)
	c.Start()
	time.Sleep(20 * time.Millisecond)
	c.Pause()
	paused := 30 * time.Millisecond
	time.Sleep(paused)
	if !c.IsPaused() {
		t.Fatal("IsPaused: want true after Pause")
	}
	c.Resume()
	if c.IsPaused() {
		t.Fatal("IsPaused: want false after Resume")
	}

	// elapsed should reflect time before the pause plus time after
	// resume, but not the paused interval itself.
	elapsed := c.EffectiveElapsedTicks()
	if elapsed <= 0 {
		t.Errorf("EffectiveElapsedTicks after resume: got %d, want > 0", elapsed)
	}
	pausedTicks := int64(paused/time.Millisecond) * 10_000
	if elapsed >= pausedTicks {
		t.Errorf("EffectiveElapsedTicks %d should be well under the paused interval %d ticks", elapsed, pausedTicks)
	}
}

func TestCompleteSeekReanchorsEffectiveElapsed(t *testing.T) {
	c := New(ModeAudioMaster)
	c.Start()
	time.Sleep(10 * time.Millisecond)

	const targetTicks = 15 * 10_000_000 // 15s in 100ns ticks
	c.BeginSeek()
	if !c.SeekInProgress() {
		t.Fatal("SeekInProgress: want true after BeginSeek")
	}
	c.CompleteSeek(targetTicks)

	if c.SeekInProgress() {
		t.Fatal("SeekInProgress: want false after CompleteSeek")
	}
	if got := c.CurrentPositionTicks(); got != targetTicks {
		t.Errorf("CurrentPositionTicks: got %d, want %d", got, targetTicks)
	}
	if got := c.MasterPositionTicks(); got != targetTicks {
		t.Errorf("MasterPositionTicks: got %d, want %d", got, targetTicks)
	}

	elapsed := c.EffectiveElapsedTicks()
	frameTimeTicks := int64(40 * 10_000) // generous one-frame-ish tolerance
	diff := elapsed - targetTicks
	if diff < 0 {
		diff = -diff
	}
	if diff > frameTimeTicks {
		t.Errorf("EffectiveElapsedTicks %d too far from seek target %d (diff %d)", elapsed, targetTicks, diff)
	}
}

func TestCompleteSeekAtDoubleSpeed(t *testing.T) {
	c := New(ModeAudioMaster)
	c.SetSpeed(2.0)
	c.Start()

	const targetTicks = 5 * 10_000_000
	c.CompleteSeek(targetTicks)

	elapsed := c.EffectiveElapsedTicks()
	diff := elapsed - targetTicks
	if diff < 0 {
		diff = -diff
	}
	if diff > int64(10*10_000) {
		t.Errorf("EffectiveElapsedTicks %d too far from seek target %d at 2x speed (diff %d)", elapsed, targetTicks, diff)
	}
}

func TestSeekWhilePausedStaysPaused(t *testing.T) {
	c := New(ModeAudioMaster)
	c.Start()
	time.Sleep(10 * time.Millisecond)
	c.Pause()
	if !c.IsPaused() {
		t.Fatal("IsPaused: want true after Pause")
	}

	const targetTicks = 20 * 10_000_000
	c.BeginSeek()
	c.CompleteSeek(targetTicks)

	if !c.IsPaused() {
		t.Error("IsPaused after seeking while paused: want true, seek must preserve playing/paused state")
	}

	// effective_elapsed should stay frozen at the seek target across a
	// real sleep, exactly as it would for an ordinary pause.
	time.Sleep(15 * time.Millisecond)
	elapsed := c.EffectiveElapsedTicks()
	diff := elapsed - targetTicks
	if diff < 0 {
		diff = -diff
	}
	if diff > int64(10*10_000) {
		t.Errorf("EffectiveElapsedTicks %d drifted from frozen seek target %d while paused (diff %d)", elapsed, targetTicks, diff)
	}

	c.Resume()
	if c.IsPaused() {
		t.Error("IsPaused after Resume: want false")
	}
}

func TestUpdateMasterPositionIgnoresNonPositive(t *testing.T) {
	c := New(ModeAudioMaster)
	c.UpdateMasterPosition(100)
	c.UpdateMasterPosition(0)
	c.UpdateMasterPosition(-5)
	if got := c.MasterPositionTicks(); got != 100 {
		t.Errorf("MasterPositionTicks: got %d, want 100 (non-positive updates ignored)", got)
	}
}

func TestStopZeroesState(t *testing.T) {
	c := New(ModeAudioMaster)
	c.Start()
	c.UpdateMasterPosition(500)
	c.SetCurrentPosition(500)
	c.Stop()

	if got := c.MasterPositionTicks(); got != 0 {
		t.Errorf("MasterPositionTicks after Stop: got %d, want 0", got)
	}
	if got := c.CurrentPositionTicks(); got != 0 {
		t.Errorf("CurrentPositionTicks after Stop: got %d, want 0", got)
	}
	if got := c.EffectiveElapsedTicks(); got != 0 {
		t.Errorf("EffectiveElapsedTicks after Stop: got %d, want 0", got)
	}
}

func TestPresentationClockMode(t *testing.T) {
	c := New(ModePresentationClock)
	c.Start()
	time.Sleep(10 * time.Millisecond)

	pos := c.MasterPositionTicks()
	if pos <= 0 {
		t.Errorf("presentation clock MasterPositionTicks: got %d, want > 0 after running", pos)
	}

	c.Pause()
	frozen := c.MasterPositionTicks()
	time.Sleep(10 * time.Millisecond)
	if got := c.MasterPositionTicks(); got != frozen {
		t.Errorf("presentation clock should freeze while paused: got %d, want %d", got, frozen)
	}

	c.CompleteSeek(999)
	if got := c.MasterPositionTicks(); got != 999 {
		t.Errorf("presentation clock after CompleteSeek: got %d, want 999", got)
	}
}
