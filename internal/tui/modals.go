package tui

import (
	"fmt"
	"strings"

	"github.com/naveenspark/arena/internal/combat"
	"github.com/naveenspark/arena/pkg/domain"
)

// renderPrepareModal shows the prepare phase roster and the viewer's ready
// state.
func renderPrepareModal(info *domain.PrepareInfo, ready, active int, selfID int64, selfReady bool) string {
	var b strings.Builder
	b.WriteString(accentStyle.Bold(true).Render("Preparing for battle") + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d ready", ready, active)) + "\n\n")
	if info != nil {
		for _, p := range info.Players {
			if p.Status == domain.PlayerLeft {
				continue
			}
			mark := dimStyle.Render("○")
			if p.IsReady {
				mark = readyStyle.Render("●")
			}
			name := normalStyle.Render(truncStr(p.Username, 24))
			if p.UserID == selfID {
				name = selectedStyle.Render(truncStr(p.Username, 24)) + metaStyle.Render(" (you)")
			}
			b.WriteString(mark + " " + name + "\n")
		}
	}
	b.WriteByte('\n')
	if selfReady {
		b.WriteString(readyStyle.Render("You are ready") + "  " + helpEntry("r", "unready"))
	} else {
		b.WriteString(goldStyle.Render("Waiting on you") + "  " + helpEntry("r", "ready"))
	}
	return modalStyle.Render(b.String())
}

// renderCombatModal shows the result of a combat.
func renderCombatModal(s combat.Summary, isHost bool) string {
	var b strings.Builder
	b.WriteString(OutcomeStyle(s.Outcome).Render(s.Title))
	if s.Dungeon != "" {
		b.WriteString(dimStyle.Render(" · " + s.Dungeon))
	}
	if s.Duration > 0 {
		b.WriteString(metaStyle.Render(" · " + formatDuration(s.Duration)))
	}
	b.WriteString("\n\n")

	b.WriteString(sectionHeaderStyle.Render("Team") + metaStyle.Render(fmt.Sprintf("  %d dmg total", s.TotalDamage)) + "\n")
	for _, m := range s.Members {
		hp := readyStyle
		if m.HP <= 0 {
			hp = rejectStyle
		}
		fmt.Fprintf(&b, "  %-16s %s %s\n",
			truncStr(m.Username, 16),
			normalStyle.Render(fmt.Sprintf("%6d dealt %6d taken", m.DamageDealt, m.DamageTaken)),
			hp.Render(fmt.Sprintf("%d/%d hp", m.HP, m.MaxHP)))
	}
	b.WriteString("\n" + sectionHeaderStyle.Render("Enemies") + "  " + normalStyle.Render(fmt.Sprintf("%d/%d defeated", s.Defeated, s.Enemies)) + "\n")

	b.WriteString("\n" + sectionHeaderStyle.Render("Rewards") + "  " +
		goldStyle.Render(fmt.Sprintf("%d gold", s.Gold)) + dimStyle.Render(" · ") +
		accentStyle.Render(fmt.Sprintf("%d xp", s.Experience)) + "\n")
	for _, it := range s.Items {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("item #%d ×%d", it.ItemID, it.Quantity)))
	}

	if len(s.Log) > 0 {
		b.WriteString("\n" + sectionHeaderStyle.Render("Last turns") + "\n")
		for _, e := range s.Log {
			line := fmt.Sprintf("T%d %s %s", e.Turn, e.Actor, e.Action)
			if e.Target != "" {
				line += " " + e.Target
			}
			if e.Damage > 0 {
				line += fmt.Sprintf(" (%d)", e.Damage)
			}
			b.WriteString("  " + metaStyle.Render(truncStr(line, 56)) + "\n")
		}
	}

	b.WriteByte('\n')
	if isHost {
		b.WriteString(helpEntry("esc", "close and reset room"))
	} else {
		b.WriteString(helpEntry("esc", "close"))
	}
	return modalStyle.Render(b.String())
}
