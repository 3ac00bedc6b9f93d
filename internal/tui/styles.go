package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/arena/internal/session"
	"github.com/naveenspark/arena/pkg/domain"
)

// Shimmer animation for the ARENA logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "A R E N A" as a flowing wave of ember light,
// deep rust (#3a1a12) to bright flame (#f59e0b).
func renderShimmerLogo(frame int) string {
	const text = "ARENA"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		// Slow breathing tide
		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(58 + b*(245-58))
		g := clampByte(26 + b*(158-26))
		bl := clampByte(18 + b*(11-18))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b"))

	readyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	rejectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b45555"))

	goldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	hostStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844")).
			Bold(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f59e0b")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Chat styles
	chatSelfNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e4e4ec"))

	chatNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c8a84c"))

	chatInputNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f59e0b"))

	chatComposingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e4e4ec"))

	chatSelfTextStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#c0c4d0"))

	chatTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	chatSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#404858"))

	presenceDotStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#34d474"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#f59e0b")).
			Padding(0, 2)

	statusColors = map[domain.RoomStatus]lipgloss.Color{
		domain.RoomWaiting:    lipgloss.Color("#34d474"),
		domain.RoomInProgress: lipgloss.Color("#f59e0b"),
		domain.RoomCompleted:  lipgloss.Color("#8890a0"),
		domain.RoomCancelled:  lipgloss.Color("#b45555"),
	}

	outcomeColors = map[domain.Outcome]lipgloss.Color{
		domain.OutcomeVictory: lipgloss.Color("#34d474"),
		domain.OutcomeDefeat:  lipgloss.Color("#b45555"),
		domain.OutcomeEscape:  lipgloss.Color("#d4a844"),
	}
)

// StatusStyle returns a bold style colored for a room status.
func StatusStyle(s domain.RoomStatus) lipgloss.Style {
	if c, ok := statusColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// OutcomeStyle returns a bold style colored for a combat outcome.
func OutcomeStyle(o domain.Outcome) lipgloss.Style {
	if c, ok := outcomeColors[o]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return selectedStyle
}

// toastStyle picks the toast color for a severity.
func toastStyle(level session.Level) lipgloss.Style {
	switch level {
	case session.Error:
		return rejectStyle
	case session.Warn:
		return goldStyle
	default:
		return readyStyle
	}
}

// renderAnimatedName renders a name with a single bright glint sweeping
// across it. Frame 0 renders the name flat.
func renderAnimatedName(name string, frame int) string {
	runes := []rune(name)
	if len(runes) == 0 || frame == 0 {
		return chatInputNameStyle.Render(name)
	}
	glint := frame % (len(runes) + 6)
	var out strings.Builder
	for i, r := range runes {
		if i == glint {
			out.WriteString(selectedStyle.Render(string(r)))
			continue
		}
		out.WriteString(chatInputNameStyle.Render(string(r)))
	}
	return out.String()
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpView renders the key reference overlay.
func helpView() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")).
		Bold(true).
		Render("A R E N A")

	keyStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	sections := []struct {
		name string
		keys []struct{ key, desc string }
	}{
		{"Room", []struct{ key, desc string }{
			{"r", "toggle ready"},
			{"enter / i", "chat"},
			{"j / k", "scroll chat"},
			{"c", "copy room link"},
			{"o", "open room in browser"},
			{"R", "reconnect"},
			{"l", "leave room"},
			{"esc", "back to lobby"},
		}},
		{"Host", []struct{ key, desc string }{
			{"p", "prepare to start"},
			{"s", "start combat"},
			{"d", "next dungeon"},
			{"up / down", "select player"},
			{"x", "kick selected player"},
			{"z", "reset room"},
		}},
		{"Commands", []struct{ key, desc string }{
			{"arena room <id>", "open a room"},
			{"arena dungeons", "list dungeons"},
			{"arena login", "save a token"},
			{"arena logout", "clear your session"},
		}},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)
	for _, s := range sections {
		fmt.Fprintf(&b, "  %s\n", sectionStyle.Render(s.name))
		for _, k := range s.keys {
			fmt.Fprintf(&b, "    %s  %s\n", keyStyle.Render(fmt.Sprintf("%-18s", k.key)), descStyle.Render(k.desc))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
