// Command hdxav-meter is a live terminal meter for a single playback
// instance: a position progress bar and a stereo peak meter, redrawn
// on a fixed tick the way a hardware level meter would.
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"hdxav/pkg/playback"
)

const tickInterval = 200 * time.Millisecond

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	barWidth   = 40
)

type tickMsg time.Time

type model struct {
	h *playback.Instance

	positionBar progress.Model
	leftBar     progress.Model
	rightBar    progress.Model

	err error
}

func newModel(h *playback.Instance) model {
	return model{
		h:           h,
		positionBar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		leftBar:     progress.New(progress.WithSolidFill("39"), progress.WithWidth(barWidth)),
		rightBar:    progress.New(progress.WithSolidFill("205"), progress.WithWidth(barWidth)),
	}
}

func (m model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.h.IsPlaying() {
				m.h.Pause()
			} else {
				m.h.Play()
			}
		}
	case tickMsg:
		if err := m.h.LastAudioError(); err != nil {
			m.err = err
		}
		return m, tick()
	}
	return m, nil
}

func (m model) View() string {
	duration := m.h.MediaDuration()
	position := m.h.MediaPosition()
	fraction := 0.0
	if duration > 0 {
		fraction = float64(position) / float64(duration)
	}
	left, right := m.h.AudioLevels()

	status := "paused"
	if m.h.IsPlaying() {
		status = "playing"
	}
	if m.h.IsEOF() {
		status = "end of stream"
	}

	out := fmt.Sprintf("hdxav-meter  [%s]\n\n", status)
	out += labelStyle.Render("position") + m.positionBar.ViewAs(fraction) + "\n"
	out += labelStyle.Render("left") + m.leftBar.ViewAs(left/100) + "\n"
	out += labelStyle.Render("right") + m.rightBar.ViewAs(right/100) + "\n"
	if m.err != nil {
		out += fmt.Sprintf("\naudio error: %v\n", m.err)
	}
	out += "\nspace: play/pause   q: quit\n"
	return out
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: hdxav-meter <url>")
		os.Exit(1)
	}

	p := playback.New()
	if err := p.Init(); err != nil {
		fmt.Printf("platform init: %v\n", err)
		os.Exit(1)
	}
	defer p.Shutdown()

	h, err := p.CreateInstance()
	if err != nil {
		fmt.Printf("create instance: %v\n", err)
		os.Exit(1)
	}
	defer h.Destroy()

	if err := h.Open(os.Args[1]); err != nil {
		fmt.Printf("open %q: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	h.Play()

	if _, err := tea.NewProgram(newModel(h)).Run(); err != nil {
		fmt.Printf("meter exited: %v\n", err)
		os.Exit(1)
	}
}
