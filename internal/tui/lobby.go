package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type lobbyField int

const (
	fieldRoomID lobbyField = iota
	fieldPassword
)

// joinRequestMsg asks the app to open a room.
type joinRequestMsg struct {
	roomID   int64
	password string
}

// lobbyModel is the room-code prompt shown before entering a room.
type lobbyModel struct {
	roomID   string
	password string
	field    lobbyField
	// needPassword is set once a join was refused for a bad password.
	needPassword bool
	busy         bool
	status       string
	frame        int
}

func newLobbyModel() lobbyModel {
	return lobbyModel{}
}

// askPassword switches the prompt to the password field for roomID.
func (m lobbyModel) askPassword(roomID int64, status string) lobbyModel {
	m.roomID = strconv.FormatInt(roomID, 10)
	m.password = ""
	m.needPassword = true
	m.field = fieldPassword
	m.busy = false
	m.status = status
	return m
}

func (m lobbyModel) Update(msg tea.Msg) (lobbyModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.busy {
		return m, nil
	}
	switch key.String() {
	case "tab", "shift+tab":
		if m.field == fieldRoomID {
			m.field = fieldPassword
		} else {
			m.field = fieldRoomID
		}
		return m, nil
	case "enter":
		id, err := strconv.ParseInt(strings.TrimSpace(m.roomID), 10, 64)
		if err != nil || id <= 0 {
			m.status = "enter a room number"
			m.field = fieldRoomID
			return m, nil
		}
		if m.needPassword && m.password == "" {
			m.status = "this room needs a password"
			m.field = fieldPassword
			return m, nil
		}
		m.busy = true
		m.status = "joining room " + m.roomID + "..."
		req := joinRequestMsg{roomID: id, password: m.password}
		return m, func() tea.Msg { return req }
	}

	k := key.String()
	if key.Type == tea.KeySpace {
		k = " "
	}
	switch m.field {
	case fieldRoomID:
		m.roomID = editDigits(m.roomID, k)
	case fieldPassword:
		m.password = editRune(m.password, k)
	}
	m.status = ""
	return m, nil
}

func (m lobbyModel) View() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(" " + sectionHeaderStyle.Render("Join a room") + "\n\n")

	cursor := func(f lobbyField) string {
		if m.field == f && !m.busy && (m.frame/4)%2 == 0 {
			return accentStyle.Render("█")
		}
		return " "
	}

	idLine := m.roomID
	if idLine == "" && m.field != fieldRoomID {
		idLine = inputPlaceholderStyle.Render("room number")
	} else {
		idLine = normalStyle.Render(idLine)
	}
	b.WriteString(" " + inputPromptStyle.Render("room     > ") + idLine + cursor(fieldRoomID) + "\n")

	pw := normalStyle.Render(mask(m.password))
	if m.password == "" && m.field != fieldPassword {
		pw = inputPlaceholderStyle.Render("optional")
	}
	b.WriteString(" " + inputPromptStyle.Render("password > ") + pw + cursor(fieldPassword) + "\n")

	if m.status != "" {
		b.WriteString("\n " + dimStyle.Render(m.status) + "\n")
	}
	return b.String()
}
