// Package tui provides the Bubble Tea shell for the tilt arcade: the frame
// loop, key and mouse mapping, the snapshot canvas, the menu, the replay
// browser and SSH serving.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a simulation frame. Loop identifies the model
// that scheduled it, so a model ignores ticks left over from another one.
type TickMsg struct {
	At   time.Time
	Loop uint64
}

var loops atomic.Uint64

// nextLoop returns a fresh frame loop id.
func nextLoop() uint64 { return loops.Add(1) }

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int, loop uint64) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{At: t, Loop: loop}
	})
}
