package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/arena/pkg/domain"
)

// renderChatLines renders every message, wrapping bodies to width. A message
// may produce several lines.
func renderChatLines(msgs []domain.ChatMessage, selfID int64, width int) []string {
	var lines []string
	for _, m := range msgs {
		lines = append(lines, strings.Split(renderChatMessage(m, selfID, width), "\n")...)
	}
	return lines
}

// renderChatMessage renders " H:MM  name · body" with continuation lines
// indented under the body.
func renderChatMessage(msg domain.ChatMessage, selfID int64, width int) string {
	timePart := metaStyle.Render(fmt.Sprintf("%8s", formatChatTime(msg.SentAt)))
	sep := chatSepStyle.Render(" · ")

	isSelf := msg.UserID == selfID
	name := msg.Username
	if name == "" {
		name = fmt.Sprintf("#%d", msg.UserID)
	}
	var namePart string
	if isSelf {
		namePart = chatSelfNameStyle.Render(name)
	} else {
		namePart = chatNameStyle.Render(name)
	}
	renderBody := func(s string) string {
		if isSelf {
			return chatSelfTextStyle.Render(s)
		}
		return chatTextStyle.Render(s)
	}

	prefixWidth := 1 + 8 + 2 + lipgloss.Width(namePart) + 3
	bodyWidth := width - prefixWidth
	if bodyWidth < 20 {
		bodyWidth = 20
	}
	wrapped := hardWrap(lipgloss.NewStyle().Width(bodyWidth).Render(msg.Message), bodyWidth)
	lines := strings.Split(strings.TrimRight(wrapped, " "), "\n")

	result := " " + timePart + "  " + namePart + sep + renderBody(strings.TrimRight(lines[0], " "))
	indent := strings.Repeat(" ", prefixWidth)
	for _, line := range lines[1:] {
		result += "\n" + indent + renderBody(strings.TrimRight(line, " "))
	}
	return result
}

// renderChatViewport shows the height lines ending scroll lines above the
// newest one, padding the top when there are too few.
func renderChatViewport(lines []string, scroll, height int) string {
	var b strings.Builder
	if len(lines) == 0 {
		padLines(height-1, &b)
		b.WriteString(" " + dimStyle.Render("no messages yet") + "\n")
		return b.String()
	}

	total := len(lines)
	if maxScroll := total - height; scroll > maxScroll {
		scroll = max(maxScroll, 0)
	}
	end := total - scroll
	start := max(end-height, 0)

	visible := lines[start:end]
	padLines(height-len(visible), &b)
	for _, line := range visible {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
