package shared

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/tidy-files/internal/copier"
)

// CopyProgressMsg wraps a copier.Progress for use as a tea.Msg.
type CopyProgressMsg struct {
	Progress copier.Progress
}

// ProgressBridge adapts the copy engine's progress reports to bubble tea
// messages. The engine writes through Sink; the UI reads with ListenCmd.
type ProgressBridge struct {
	events chan copier.Progress
}

// NewProgressBridge creates a new progress bridge.
func NewProgressBridge() *ProgressBridge {
	return &ProgressBridge{
		events: make(chan copier.Progress, ProgressEventBuffer),
	}
}

// Sink returns the ProgressFunc to hand to the copy engine. Sends block when
// the buffer is full so no report is lost.
func (b *ProgressBridge) Sink() copier.ProgressFunc {
	return copier.ChannelSink(b.events)
}

// ListenCmd returns a tea.Cmd that blocks until a report is received.
// Issue it again after handling each CopyProgressMsg. It yields nil once
// the bridge is closed.
func (b *ProgressBridge) ListenCmd() tea.Cmd {
	return func() tea.Msg {
		progress, ok := <-b.events
		if !ok {
			return nil
		}

		return CopyProgressMsg{Progress: progress}
	}
}

// Close closes the report channel. Call it once the copy has returned.
func (b *ProgressBridge) Close() {
	close(b.events)
}
