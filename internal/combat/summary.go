package combat

import (
	"time"

	"github.com/naveenspark/arena/pkg/domain"
)

const summaryLogLines = 5

// Summary is the display form of a combat result, independent of the source
// that delivered it.
type Summary struct {
	Key         string
	Outcome     domain.Outcome
	Title       string
	Dungeon     string
	Duration    time.Duration
	Members     []domain.TeamMember
	TotalDamage int
	Defeated    int
	Enemies     int
	Gold        int
	Experience  int
	Items       []domain.ItemQuantity
	Log         []domain.CombatLogEntry
}

// Summarize builds the modal content for userID.
func Summarize(result *domain.CombatResult, userID int64) Summary {
	s := Summary{
		Key:         result.Key(),
		Outcome:     result.Result,
		Title:       title(result.Result),
		Duration:    time.Duration(result.Duration) * time.Second,
		Members:     result.TeamStats.Members,
		TotalDamage: result.TeamStats.TotalDamage,
		Enemies:     len(result.Enemies),
		Items:       userItems(result, userID),
	}
	if result.Dungeon != nil {
		s.Dungeon = result.Dungeon.Name
	}
	for _, e := range result.Enemies {
		if e.HP <= 0 {
			s.Defeated++
		}
	}
	if r := result.Rewards; r != nil {
		s.Gold, s.Experience = r.Gold, r.Experience
		if i := result.RosterIndex(userID); i >= 0 && i < len(r.PerUser) {
			s.Gold, s.Experience = r.PerUser[i].Gold, r.PerUser[i].Experience
		}
	}
	if n := len(result.Logs); n > summaryLogLines {
		s.Log = result.Logs[n-summaryLogLines:]
	} else {
		s.Log = result.Logs
	}
	return s
}

func title(o domain.Outcome) string {
	switch o {
	case domain.OutcomeVictory:
		return "Victory"
	case domain.OutcomeDefeat:
		return "Defeat"
	case domain.OutcomeEscape:
		return "Escaped"
	}
	return "Combat over"
}
