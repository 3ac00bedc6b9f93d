package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/arena/internal/room"
	"github.com/naveenspark/arena/internal/session"
	"github.com/naveenspark/arena/pkg/domain"
)

type view int

const (
	viewLobby view = iota
	viewRoom
)

// roomOpenedMsg carries the result of opening a room.
type roomOpenedMsg struct {
	roomID int64
	room   *room.Room
	err    error
}

// Options configures the TUI.
type Options struct {
	Room room.Deps
	// RoomURL builds the shareable link for a room.
	RoomURL func(roomID int64) string
	// RoomID, when set, is opened on start.
	RoomID   int64
	Password string
}

// App is the root Bubbletea model.
type App struct {
	opts     Options
	view     view
	lobby    lobbyModel
	room     roomModel
	open     *room.Room
	toasts   toastQueue
	helpOpen bool
	width    int
	height   int
	frame    int // logo shimmer animation frame
}

// NewApp creates a new TUI application.
func NewApp(opts Options) App {
	if opts.RoomURL == nil {
		opts.RoomURL = func(id int64) string { return fmt.Sprintf("room %d", id) }
	}
	return App{opts: opts, lobby: newLobbyModel()}
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{shimmerTickCmd()}
	if a.opts.RoomID > 0 {
		req := joinRequestMsg{roomID: a.opts.RoomID, password: a.opts.Password}
		cmds = append(cmds, func() tea.Msg { return req })
	}
	return tea.Batch(cmds...)
}

func (a App) openRoom(req joinRequestMsg) tea.Cmd {
	deps := a.opts.Room
	return func() tea.Msg {
		r, err := room.Open(context.Background(), deps, req.roomID, req.password)
		return roomOpenedMsg{roomID: req.roomID, room: r, err: err}
	}
}

// closeRoom detaches the open room and tears it down in the background.
func (a App) closeRoom() (App, tea.Cmd) {
	r := a.open
	a.open = nil
	a.room = roomModel{}
	a.view = viewLobby
	a.lobby = newLobbyModel()
	if r == nil {
		return a, nil
	}
	return a, func() tea.Msg {
		r.Close() //nolint:errcheck // teardown errors are logged by the session
		return nil
	}
}

func (a App) toast(level session.Level, text string) App {
	a.toasts = a.toasts.push(level, text, time.Now())
	return a
}

// bodyHeight is the height left after the header (2), toasts and help (1).
func (a App) bodyHeight() int {
	return max(a.height-3-len(a.toasts), 3)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.open != nil {
			a.room, _ = a.room.Update(tea.WindowSizeMsg{Width: a.width, Height: a.bodyHeight()})
		}
		return a, nil

	case shimmerTickMsg:
		a.frame++
		a.lobby.frame = a.frame
		a.toasts = a.toasts.expire(time.Time(msg))
		if a.open != nil {
			a.room, _ = a.room.Update(msg)
		}
		return a, shimmerTickCmd()

	case joinRequestMsg:
		if a.open != nil || a.opts.Room.API == nil {
			a.lobby.busy = false
			return a, nil
		}
		a.lobby.busy = true
		return a, a.openRoom(msg)

	case roomOpenedMsg:
		if msg.err != nil {
			a.lobby.busy = false
			text := session.ErrorMessage(msg.err)
			if errors.Is(msg.err, domain.ErrWrongPassword) {
				a.lobby = a.lobby.askPassword(msg.roomID, text)
				return a, nil
			}
			a.lobby.status = text
			return a.toast(session.Error, text), nil
		}
		a.open = msg.room
		a.view = viewRoom
		a.room = newRoomModel(msg.room, a.opts.RoomURL(msg.roomID))
		a.room, _ = a.room.Update(tea.WindowSizeMsg{Width: a.width, Height: a.bodyHeight()})
		return a, a.room.Init()

	case roomNoteMsg:
		if a.open == nil || msg.roomID != a.open.ID {
			return a, nil
		}
		a = a.toast(msg.note.Level, msg.note.Message)
		if msg.note.Kind == room.NoteLeave {
			return a.closeRoom()
		}
		return a, waitForNote(a.open)

	case actionDoneMsg:
		switch {
		case msg.err != nil:
			a = a.toast(session.Error, session.ErrorMessage(msg.err))
		case msg.ok != "":
			a = a.toast(session.Info, msg.ok)
		}
		if a.open != nil {
			var cmd tea.Cmd
			a.room, cmd = a.room.Update(msg)
			return a, cmd
		}
		return a, nil

	case backToLobbyMsg:
		return a.closeRoom()

	case tea.KeyMsg:
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc", "?":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a.quit()
			}
			return a, nil
		}
		if msg.String() == "ctrl+c" {
			return a.quit()
		}
		if !a.isEditing() {
			switch msg.String() {
			case "q":
				return a.quit()
			case "h", "?":
				a.helpOpen = true
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewLobby:
		a.lobby, cmd = a.lobby.Update(msg)
	case viewRoom:
		if a.open != nil {
			a.room, cmd = a.room.Update(msg)
		}
	}
	return a, cmd
}

func (a App) quit() (tea.Model, tea.Cmd) {
	a, closeCmd := a.closeRoom()
	if closeCmd == nil {
		return a, tea.Quit
	}
	return a, tea.Sequence(closeCmd, tea.Quit)
}

func (a App) isEditing() bool {
	switch a.view {
	case viewLobby:
		return a.lobby.field == fieldPassword && !a.lobby.busy
	case viewRoom:
		return a.room.editing()
	}
	return false
}

func (a App) View() string {
	header := centerLine(renderShimmerLogo(a.frame), a.width) + "\n"
	if a.open != nil {
		header += centerLine(metaStyle.Render(a.opts.RoomURL(a.open.ID)), a.width)
	} else {
		header += centerLine(metaStyle.Render("lobby"), a.width)
	}

	var body, help string
	switch {
	case a.helpOpen:
		body = helpView()
		help = " " + helpEntry("esc", "close")
	case a.view == viewRoom && a.open != nil:
		body = a.room.View()
		help = " " + a.room.helpKeys()
	default:
		body = a.lobby.View()
		help = " " + helpEntry("enter", "join") + "  " + helpEntry("tab", "field") + "  " + helpEntry("ctrl+c", "quit")
	}

	body = strings.TrimRight(truncateToHeight(body, a.bodyHeight()), "\n")
	return fmt.Sprintf("%s\n%s\n%s%s", header, body, a.toasts.render(a.width), help)
}
