package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/arena/internal/room"
)

// roomChangedMsg signals that the open room has new data to render.
type roomChangedMsg struct {
	roomID int64
}

// roomNoteMsg carries a toast or forced navigation raised by the room.
type roomNoteMsg struct {
	roomID int64
	note   room.Note
}

// waitForChange blocks on the room's change signal. The model re-issues it
// after every roomChangedMsg; it returns nil once the room closes.
func waitForChange(r *room.Room) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-r.Changes():
			return roomChangedMsg{roomID: r.ID}
		case <-r.Done():
			return nil
		}
	}
}

// waitForNote is waitForChange for the room's note queue.
func waitForNote(r *room.Room) tea.Cmd {
	return func() tea.Msg {
		select {
		case n := <-r.Notes():
			return roomNoteMsg{roomID: r.ID, note: n}
		case <-r.Done():
			return nil
		}
	}
}
