// Package tui is the Bubble Tea front end for the engine: it renders the
// active world into the terminal, maps keys and mouse to input snapshots,
// and drives the fixed-step loop from a frame ticker.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg is sent once per rendered frame. The loop converts the elapsed
// wall time into zero or more fixed simulation ticks.
type FrameMsg time.Time

// frameCmd returns a Bubble Tea command that sends frame messages at the
// specified rate.
func frameCmd(framesPerSecond int) tea.Cmd {
	interval := time.Second / time.Duration(framesPerSecond)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
