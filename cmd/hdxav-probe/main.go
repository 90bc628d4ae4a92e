// Command hdxav-probe is an interactive console for driving a single
// playback instance by hand: open a clip, step frames, toggle play/
// pause, seek, and inspect volume/speed/metadata without writing a
// throwaway host application first.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"hdxav/pkg/playback"
)

const (
	appName = "hdxav-probe"
)

func main() {
	p := playback.New()
	if err := p.Init(); err != nil {
		fmt.Printf("[FAIL] platform init: %v\n", err)
		os.Exit(1)
	}
	defer p.Shutdown()

	h, err := p.CreateInstance()
	if err != nil {
		fmt.Printf("[FAIL] create instance: %v\n", err)
		os.Exit(1)
	}
	defer h.Destroy()

	rl, err := readline.NewEx(&readline.Config{Prompt: "hdxav> "})
	if err != nil {
		fmt.Printf("[FAIL] readline init: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%s - type 'help' for commands, 'quit' to exit\n", appName)

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF (Ctrl-D) or readline.ErrInterrupt (Ctrl-C)
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if !dispatch(h, fields[0], fields[1:]) {
			return
		}
	}
}

func dispatch(h *playback.Instance, cmd string, args []string) bool {
	switch cmd {
	case "help":
		printHelp()
	case "quit", "exit":
		return false
	case "open":
		if len(args) < 1 {
			fmt.Println("[FAIL] usage: open <url>")
			break
		}
		if err := h.Open(args[0]); err != nil {
			fmt.Printf("[FAIL] open: %v\n", err)
			break
		}
		fmt.Println("[OK] opened")
	case "close":
		h.Close()
		fmt.Println("[OK] closed")
	case "play":
		h.Play()
		fmt.Println("[OK] playing")
	case "pause":
		h.Pause()
		fmt.Println("[OK] paused")
	case "stop":
		h.Stop()
		fmt.Println("[OK] stopped")
	case "seek":
		if len(args) < 1 {
			fmt.Println("[FAIL] usage: seek <ticks>")
			break
		}
		ticks, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Printf("[FAIL] seek: %v\n", err)
			break
		}
		if err := h.Seek(ticks); err != nil {
			fmt.Printf("[FAIL] seek: %v\n", err)
			break
		}
		fmt.Println("[OK] seeked")
	case "volume":
		if len(args) < 1 {
			fmt.Printf(">> volume: %.2f\n", h.Volume())
			break
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			fmt.Printf("[FAIL] volume: %v\n", err)
			break
		}
		h.SetVolume(v)
		fmt.Printf("[OK] volume: %.2f\n", h.Volume())
	case "speed":
		if len(args) < 1 {
			fmt.Printf(">> speed: %.2f\n", h.Speed())
			break
		}
		s, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			fmt.Printf("[FAIL] speed: %v\n", err)
			break
		}
		h.SetSpeed(s)
		fmt.Printf("[OK] speed: %.2f\n", h.Speed())
	case "frame":
		outcome, buf := h.ReadVideoFrame()
		switch outcome {
		case playback.FrameDelivered:
			fmt.Printf(">> frame: %d bytes\n", len(buf))
			h.UnlockVideoFrame()
		case playback.FrameNoneYet:
			fmt.Println(">> frame: none yet")
		default:
			fmt.Println(">> frame: end of stream")
		}
	case "levels":
		l, r := h.AudioLevels()
		fmt.Printf(">> levels: L=%.1f%% R=%.1f%%\n", l, r)
	case "status":
		printStatus(h)
	case "meta":
		printMetadata(h)
	default:
		fmt.Printf("[FAIL] unknown command %q, type 'help'\n", cmd)
	}
	return true
}

func printHelp() {
	fmt.Println(`commands:
  open <url>       open a media source
  close            close the current source
  play/pause/stop  playback control
  seek <ticks>     seek to a tick position (100ns units)
  frame            read and immediately unlock one video frame
  volume [0..1]    get or set volume
  speed [0.5..2]   get or set playback speed
  levels           current stereo peak meter reading
  status           position, duration, playing/eof/loading flags
  meta             negotiated video/audio metadata
  quit             exit`)
}

func printStatus(h *playback.Instance) {
	fmt.Printf(">> position=%d duration=%d playing=%v eof=%v loading=%v\n",
		h.MediaPosition(), h.MediaDuration(), h.IsPlaying(), h.IsEOF(), h.IsLoading())
	if err := h.LastAudioError(); err != nil {
		fmt.Printf(">> last audio error: %v\n", err)
	}
}

func printMetadata(h *playback.Instance) {
	md := h.GetVideoMetadata()
	w, ht := h.VideoSize()
	num, denom := h.VideoFrameRate()
	fmt.Printf(">> video: %dx%d @ %d/%d fps, mime=%s\n", w, ht, num, denom, md.MIMEType)
	if md.HasAudio {
		fmt.Printf(">> audio: %dch @ %dHz\n", md.Channels, md.SampleRate)
	} else {
		fmt.Println(">> audio: none")
	}
}
