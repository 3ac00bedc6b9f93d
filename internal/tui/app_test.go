package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/arena/internal/room"
	"github.com/naveenspark/arena/internal/session"
	"github.com/naveenspark/arena/pkg/domain"
	"github.com/naveenspark/arena/pkg/gateway"
)

func newTestApp() App {
	a := NewApp(Options{RoomURL: func(id int64) string { return fmt.Sprintf("https://arena.gg/rooms/%d", id) }})
	a.width = 80
	a.height = 30
	return a
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// openTestRoom puts the app in the room view for a stub room.
func openTestRoom(t *testing.T, a App, viewer int64) App {
	t.Helper()
	r, _, _ := newTestRoom(t, viewer)
	model, _ := a.Update(roomOpenedMsg{roomID: testRoomID, room: r})
	return model.(App)
}

func TestAppStartsInLobby(t *testing.T) {
	a := newTestApp()
	if a.view != viewLobby {
		t.Fatalf("view = %d, want lobby", a.view)
	}
	if !strings.Contains(a.View(), "Join a room") {
		t.Error("lobby view missing prompt")
	}
}

func TestAppCtrlCQuits(t *testing.T) {
	a := newTestApp()
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestAppHelpOverlay(t *testing.T) {
	a := newTestApp()
	model, _ := a.Update(keyMsg("h"))
	a = model.(App)
	if !a.helpOpen {
		t.Fatal("expected help to open")
	}
	if !strings.Contains(a.View(), "toggle ready") {
		t.Error("help view missing key reference")
	}
	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.(App).helpOpen {
		t.Error("esc should close help")
	}
}

func TestAppJoinWithoutAPIIsIgnored(t *testing.T) {
	a := newTestApp()
	model, cmd := a.Update(joinRequestMsg{roomID: 7})
	a = model.(App)
	if cmd != nil {
		t.Error("expected no command without an API")
	}
	if a.lobby.busy {
		t.Error("lobby should not stay busy")
	}
}

func TestAppWrongPasswordAsksForPassword(t *testing.T) {
	a := newTestApp()
	err := fmt.Errorf("room.Open: %w", &gateway.AckError{Command: "joinRoom", Code: domain.CodeWrongPassword, Message: "Incorrect password"})
	model, _ := a.Update(roomOpenedMsg{roomID: 7, err: err})
	a = model.(App)

	if !a.lobby.needPassword || a.lobby.field != fieldPassword {
		t.Fatalf("expected password prompt, got %+v", a.lobby)
	}
	if a.lobby.roomID != "7" {
		t.Errorf("roomID = %q, want 7", a.lobby.roomID)
	}
	if a.lobby.status != "Incorrect password" {
		t.Errorf("status = %q", a.lobby.status)
	}
}

func TestAppOpenFailureToasts(t *testing.T) {
	a := newTestApp()
	model, _ := a.Update(roomOpenedMsg{roomID: 7, err: domain.ErrCapacity})
	a = model.(App)

	if a.view != viewLobby {
		t.Error("should stay in lobby")
	}
	if len(a.toasts) != 1 || a.toasts[0].level != session.Error {
		t.Fatalf("toasts = %+v", a.toasts)
	}
	if !strings.Contains(a.View(), "room is full") {
		t.Error("view missing toast text")
	}
}

func TestAppOpensRoomView(t *testing.T) {
	a := openTestRoom(t, newTestApp(), testUserID)
	if a.view != viewRoom || a.open == nil {
		t.Fatal("expected room view")
	}
	out := a.View()
	for _, want := range []string{"Room 7", "Crypt", "alice", "bob", "https://arena.gg/rooms/7"} {
		if !strings.Contains(out, want) {
			t.Errorf("room view missing %q", want)
		}
	}
}

func TestAppLeaveNoteReturnsToLobby(t *testing.T) {
	a := openTestRoom(t, newTestApp(), testUserID)
	model, cmd := a.Update(roomNoteMsg{roomID: testRoomID, note: room.Note{Kind: room.NoteLeave, Message: "You were kicked"}})
	a = model.(App)

	if a.view != viewLobby || a.open != nil {
		t.Fatal("expected lobby after leave note")
	}
	if cmd == nil {
		t.Error("expected room teardown command")
	}
	if len(a.toasts) != 1 || a.toasts[0].text != "You were kicked" {
		t.Errorf("toasts = %+v", a.toasts)
	}
}

func TestAppIgnoresNotesForOtherRooms(t *testing.T) {
	a := openTestRoom(t, newTestApp(), testUserID)
	model, _ := a.Update(roomNoteMsg{roomID: 99, note: room.Note{Kind: room.NoteLeave}})
	if model.(App).view != viewRoom {
		t.Error("note for another room should be ignored")
	}
}

func TestAppActionErrorToasts(t *testing.T) {
	a := openTestRoom(t, newTestApp(), testUserID)
	model, _ := a.Update(actionDoneMsg{label: "ready", err: errors.New("boom")})
	a = model.(App)
	if len(a.toasts) != 1 || a.toasts[0].text != "boom" {
		t.Errorf("toasts = %+v", a.toasts)
	}
}

func TestAppToastsExpireOnTick(t *testing.T) {
	a := newTestApp()
	a = a.toast(session.Info, "hello")
	model, _ := a.Update(shimmerTickMsg(time.Now().Add(toastTTL + time.Second)))
	if n := len(model.(App).toasts); n != 0 {
		t.Errorf("toasts = %d, want 0", n)
	}
}

func TestAppEscInRoomGoesBack(t *testing.T) {
	a := openTestRoom(t, newTestApp(), testUserID)
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected command")
	}
	if _, ok := cmd().(backToLobbyMsg); !ok {
		t.Error("esc should ask to go back to the lobby")
	}
}
