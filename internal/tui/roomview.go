package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/arena/internal/browser"
	"github.com/naveenspark/arena/internal/chat"
	"github.com/naveenspark/arena/internal/room"
	"github.com/naveenspark/arena/internal/session"
	"github.com/naveenspark/arena/pkg/domain"
)

// actionDoneMsg reports the outcome of a room command.
type actionDoneMsg struct {
	label string
	ok    string
	err   error
}

// backToLobbyMsg asks the app to close the room view.
type backToLobbyMsg struct{}

// roomModel is the view of one open room.
type roomModel struct {
	room    *room.Room
	frame   room.Frame
	url     string
	width   int
	height  int
	input   string
	focused bool
	follow  *chat.Follow
	// chatLines is the rendered line count at the last refresh.
	chatLines int
	cursor    int
	animFrame int
}

func newRoomModel(r *room.Room, url string) roomModel {
	m := roomModel{room: r, url: url, follow: chat.NewFollow()}
	m.frame = r.Frame()
	m.chatLines = len(renderChatLines(m.frame.Chat, r.UserID(), m.width))
	return m
}

func (m roomModel) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.room), waitForNote(m.room))
}

func (m roomModel) selfID() int64 { return m.room.UserID() }

// action runs fn in the background and reports through actionDoneMsg.
func (m roomModel) action(label, ok string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{label: label, ok: ok, err: fn(context.Background())}
	}
}

// kickTargets are the active players other than the viewer.
func (m roomModel) kickTargets() []domain.RoomPlayer {
	if m.frame.View.Room == nil {
		return nil
	}
	var out []domain.RoomPlayer
	for _, p := range m.frame.View.Room.ActivePlayers() {
		if p.UserID != m.selfID() {
			out = append(out, p)
		}
	}
	return out
}

// refresh re-reads the room frame and keeps the chat view pinned or in place.
func (m roomModel) refresh() roomModel {
	m.frame = m.room.Frame()
	lines := len(renderChatLines(m.frame.Chat, m.selfID(), m.width))
	if lines > m.chatLines {
		m.follow.Appended(lines - m.chatLines)
	}
	m.chatLines = lines
	if n := len(m.kickTargets()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	return m
}

func (m roomModel) Update(msg tea.Msg) (roomModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chatLines = len(renderChatLines(m.frame.Chat, m.selfID(), m.width))
		return m, nil

	case roomChangedMsg:
		if msg.roomID != m.room.ID {
			return m, nil
		}
		m = m.refresh()
		return m, waitForChange(m.room)

	case actionDoneMsg:
		return m.refresh(), nil

	case shimmerTickMsg:
		m.animFrame++
		return m, nil

	case tea.KeyMsg:
		if m.focused {
			return m.updateInput(msg)
		}
		return m.updateNav(msg)
	}
	return m, nil
}

func (m roomModel) updateInput(msg tea.KeyMsg) (roomModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focused = false
		return m, nil
	case "enter":
		body := strings.TrimSpace(m.input)
		if body == "" {
			return m, nil
		}
		m.input = ""
		m.follow.Bottom()
		ch := m.room.Chat
		return m, m.action("send", "", func(ctx context.Context) error {
			err := ch.Send(ctx, body)
			if errors.Is(err, chat.ErrThrottled) {
				return chat.ErrThrottled
			}
			return err
		})
	}
	key := msg.String()
	if msg.Type == tea.KeySpace {
		key = " "
	}
	m.input = editRune(m.input, key)
	return m, nil
}

func (m roomModel) updateNav(msg tea.KeyMsg) (roomModel, tea.Cmd) {
	r := m.room
	f := m.frame

	if f.Combat != nil {
		if msg.String() == "esc" || msg.String() == "enter" {
			return m, m.action("close", "", r.CloseCombat)
		}
		return m, nil
	}
	if f.PrepareInfo != nil {
		if msg.String() == "r" {
			return m, m.action("ready", "", r.ToggleReady)
		}
		return m, nil
	}

	switch msg.String() {
	case "enter", "i":
		m.focused = true
		m.animFrame = 0
	case "esc":
		return m, func() tea.Msg { return backToLobbyMsg{} }
	case "j":
		m.follow.Scroll(-1, m.chatLines)
	case "k":
		m.follow.Scroll(1, m.chatLines)
	case "G":
		m.follow.Bottom()
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(m.kickTargets())-1 {
			m.cursor++
		}
	case "r":
		return m, m.action("ready", "", r.ToggleReady)
	case "R":
		return m, m.action("reconnect", "Reconnected", r.Session.Reconnect)
	case "l":
		return m, m.action("leave", "", r.Session.LeaveRoom)
	case "c":
		url := m.url
		return m, func() tea.Msg {
			if err := clipboard.WriteAll(url); err != nil {
				return actionDoneMsg{label: "copy", err: fmt.Errorf("copy failed: %w", err)}
			}
			return actionDoneMsg{label: "copy", ok: "Copied " + url}
		}
	case "o":
		url := m.url
		return m, func() tea.Msg {
			if err := browser.Open(url); err != nil {
				return actionDoneMsg{label: "open", err: err}
			}
			return actionDoneMsg{label: "open"}
		}
	}

	if !f.IsHost {
		return m, nil
	}
	switch msg.String() {
	case "p":
		return m, m.action("prepare", "", r.PrepareStart)
	case "s":
		return m, m.action("start", "", r.Session.StartCombat)
	case "z":
		return m, m.action("reset", "Room reset", r.Session.ResetRoom)
	case "d":
		return m, func() tea.Msg {
			d, err := r.NextDungeon(context.Background())
			if err != nil {
				return actionDoneMsg{label: "dungeon", err: err}
			}
			return actionDoneMsg{label: "dungeon", ok: "Dungeon: " + d.Name}
		}
	case "x":
		targets := m.kickTargets()
		if m.cursor >= len(targets) {
			return m, nil
		}
		target := targets[m.cursor]
		return m, m.action("kick", "Kicked "+target.Username, func(ctx context.Context) error {
			return r.Session.KickPlayer(ctx, target.UserID)
		})
	}
	return m, nil
}

func (m roomModel) editing() bool { return m.focused }

func (m roomModel) helpKeys() string {
	switch {
	case m.frame.Combat != nil:
		return helpEntry("esc", "close")
	case m.frame.PrepareInfo != nil:
		return helpEntry("r", "ready") + "  " + helpEntry("q", "quit")
	case m.focused:
		return helpEntry("enter", "send") + "  " + helpEntry("esc", "nav")
	}
	keys := helpEntry("r", "ready") + "  " + helpEntry("enter", "chat") + "  " + helpEntry("c", "copy") + "  " + helpEntry("l", "leave")
	if m.frame.IsHost {
		keys += "  " + helpEntry("p", "prepare") + "  " + helpEntry("s", "start") + "  " + helpEntry("d", "dungeon") + "  " + helpEntry("x", "kick")
	}
	return keys + "  " + helpEntry("h", "help")
}

func (m roomModel) View() string {
	f := m.frame
	if f.Combat != nil {
		return "\n" + centerBlock(renderCombatModal(*f.Combat, f.IsHost), m.width)
	}
	if f.PrepareInfo != nil {
		return "\n" + centerBlock(renderPrepareModal(f.PrepareInfo, f.ReadyCount, f.ActiveCount, m.selfID(), f.SelfReady), m.width)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderPlayers())

	used := strings.Count(b.String(), "\n")
	chatHeight := m.height - used - 2
	if chatHeight < 2 {
		chatHeight = 2
	}
	b.WriteString(" " + sectionHeaderStyle.Render("Chat") + "\n")
	lines := renderChatLines(f.Chat, m.selfID(), m.width)
	b.WriteString(renderChatViewport(lines, m.follow.Offset(), chatHeight))
	b.WriteString(renderChatInput(m.username(), m.input, "say something...", m.focused, m.animFrame))
	return b.String()
}

func (m roomModel) username() string {
	if r := m.frame.View.Room; r != nil {
		if p, ok := r.Player(m.selfID()); ok && p.Username != "" {
			return p.Username
		}
	}
	return "you"
}

func (m roomModel) renderHeader() string {
	f := m.frame
	var b strings.Builder

	title := selectedStyle.Render(fmt.Sprintf("Room %d", m.room.ID))
	switch {
	case f.View.Err != nil:
		b.WriteString(" " + title + "\n")
		b.WriteString(" " + rejectStyle.Render(session.ErrorMessage(f.View.Err)) + dimStyle.Render(" · retrying") + "\n\n")
		return b.String()
	case f.View.Loading || f.View.Room == nil:
		b.WriteString(" " + title + "\n")
		b.WriteString(" " + dimStyle.Render("loading room...") + "\n\n")
		return b.String()
	}

	rm := f.View.Room
	parts := []string{title}
	if rm.Dungeon.Name != "" {
		parts = append(parts, normalStyle.Render(fmt.Sprintf("%s (lv %d)", rm.Dungeon.Name, rm.Dungeon.Level)))
	}
	parts = append(parts,
		StatusStyle(rm.Status).Render(string(rm.Status)),
		dimStyle.Render(fmt.Sprintf("%d/%d", len(rm.ActivePlayers()), rm.MaxPlayers)))
	if rm.IsFull() {
		parts = append(parts, rejectStyle.Render("full"))
	}
	if rm.IsPrivate {
		parts = append(parts, goldStyle.Render("private"))
	}
	b.WriteString(" " + strings.Join(parts, chatSepStyle.Render(" · ")) + "\n")

	var conn string
	switch {
	case f.View.Joined:
		conn = presenceDotStyle.Render("●") + dimStyle.Render(" live")
	case f.State == session.Joining:
		conn = goldStyle.Render("◌") + dimStyle.Render(" joining")
	default:
		conn = rejectStyle.Render("○") + dimStyle.Render(" offline · polling")
	}
	line := " " + conn + "  " + metaStyle.Render("host ") + hostStyle.Render(rm.Host.Username)
	switch {
	case f.StartLocked:
		line += "  " + metaStyle.Render("starting...")
	case f.IsHost && f.CanStart:
		line += "  " + readyStyle.Render("ready to start")
	case f.IsHost && len(rm.ActivePlayers()) < rm.MinPlayers:
		line += "  " + metaStyle.Render(fmt.Sprintf("needs %d players", rm.MinPlayers))
	}
	b.WriteString(line + "\n\n")
	return b.String()
}

func (m roomModel) renderPlayers() string {
	rm := m.frame.View.Room
	if rm == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("Players") + "\n")

	var selectedID int64
	if targets := m.kickTargets(); m.frame.IsHost && m.cursor < len(targets) {
		selectedID = targets[m.cursor].UserID
	}
	for _, p := range rm.ActivePlayers() {
		prefix := "   "
		if p.UserID == selectedID {
			prefix = " " + accentStyle.Render(">") + " "
		}
		mark := dimStyle.Render("○")
		if p.IsReady {
			mark = readyStyle.Render("●")
		}
		name := normalStyle.Render(truncStr(p.Username, 24))
		if p.UserID == m.selfID() {
			name = selectedStyle.Render(truncStr(p.Username, 24)) + metaStyle.Render(" (you)")
		}
		if p.UserID == rm.Host.ID {
			name += " " + hostStyle.Render("♛")
		}
		b.WriteString(prefix + mark + " " + name + "\n")
	}
	b.WriteByte('\n')
	return b.String()
}

// centerBlock centers each line of a rendered block.
func centerBlock(s string, width int) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = centerLine(l, width)
	}
	return strings.Join(lines, "\n")
}
