// Package tui renders live encode progress with bubbletea and lipgloss.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sstvgo/sstv"
)

var (
	barFilledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	labelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

const barWidth = 40

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// encodeProgressModel drives a bubbletea program off an in-flight Encoder,
// pumping its waveform into buf on every tick and rendering a progress bar
// from its reported EncoderState.
type encodeProgressModel struct {
	enc    *sstv.Encoder
	buf    []float32
	onPump func([]float32)
	done   bool
}

func (m encodeProgressModel) Init() tea.Cmd {
	return tick()
}

func (m encodeProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		n, done := m.enc.Pump(m.buf)
		if n > 0 && m.onPump != nil {
			m.onPump(m.buf[:n])
		}
		if done {
			m.done = true
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m encodeProgressModel) View() string {
	state := m.enc.GetState()
	var frac float64
	if state.EstimatedTotalSamples > 0 {
		frac = float64(state.CurSample) / float64(state.EstimatedTotalSamples)
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * barWidth)
	bar := barFilledStyle.Render(repeat("█", filled)) + barEmptyStyle.Render(repeat("░", barWidth-filled))

	return fmt.Sprintf("%s\n%s %5.1f%%   row %d  col %d  sample %d/%d\n",
		labelStyle.Render("Encoding SSTV audio"),
		bar, frac*100,
		state.CurY, state.CurX,
		state.CurSample, state.EstimatedTotalSamples,
	)
}

func repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

// RunEncodeProgress drives enc to completion, invoking onPump with every
// chunk of samples produced (for writing to a WAV file or a transmitter),
// while showing a live progress bar.
func RunEncodeProgress(enc *sstv.Encoder, onPump func([]float32)) error {
	m := encodeProgressModel{
		enc:    enc,
		buf:    make([]float32, 2048),
		onPump: onPump,
	}
	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}
