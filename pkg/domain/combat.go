package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
)

// Outcome is the final verdict of a combat.
type Outcome string

const (
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeEscape  Outcome = "escape"
)

// ResultID is a combat result identifier. The backend sends it either as a
// number or as a string, and locally generated results carry non-numeric ids.
type ResultID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ResultID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ResultID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ResultID(n.String())
	return nil
}

// Numeric resolves the id to a positive integer when possible.
func (id ResultID) Numeric() (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// TeamMember is one entry of the combat roster.
type TeamMember struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	DamageDealt int    `json:"damageDealt"`
	DamageTaken int    `json:"damageTaken"`
	HP          int    `json:"hp"`
	MaxHP       int    `json:"maxHp"`
}

// TeamStats is the team summary of a combat.
type TeamStats struct {
	Members     []TeamMember `json:"members"`
	TotalDamage int          `json:"totalDamage"`
}

// Enemy is a combat opponent as reported at the end of the fight.
type Enemy struct {
	ID        int64  `json:"id"`
	EnemyType string `json:"enemyType"`
	Name      string `json:"name"`
	HP        int    `json:"hp"`
	MaxHP     int    `json:"maxHp"`
}

// CombatLogEntry is one line of the damage/action log.
type CombatLogEntry struct {
	Turn   int    `json:"turn"`
	Actor  string `json:"actor"`
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
	Damage int    `json:"damage,omitempty"`
}

// ItemQuantity is an item stack.
type ItemQuantity struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// UserRewards are the rewards earned by one roster member.
type UserRewards struct {
	UserID     int64          `json:"userId"`
	Gold       int            `json:"gold"`
	Experience int            `json:"experience"`
	Items      []ItemQuantity `json:"items"`
}

// Rewards holds the aggregate and per-user rewards. PerUser is positionally
// aligned with TeamStats.Members.
type Rewards struct {
	Gold       int            `json:"gold"`
	Experience int            `json:"experience"`
	Items      []ItemQuantity `json:"items"`
	PerUser    []UserRewards  `json:"perUser,omitempty"`
}

// CombatResult is a completed combat report.
type CombatResult struct {
	ID        ResultID         `json:"id"`
	RoomID    int64            `json:"roomId,omitempty"`
	DungeonID int64            `json:"dungeonId,omitempty"`
	Dungeon   *Dungeon         `json:"dungeon,omitempty"`
	Result    Outcome          `json:"result"`
	Duration  int              `json:"duration"`
	TeamStats TeamStats        `json:"teamStats"`
	Enemies   []Enemy          `json:"enemies"`
	Logs      []CombatLogEntry `json:"logs"`
	Rewards   *Rewards         `json:"rewards,omitempty"`
}

// Key identifies the result for display-once bookkeeping. Results without
// an id fall back to a fingerprint of their payload.
func (r *CombatResult) Key() string {
	if r.ID != "" {
		return "id:" + string(r.ID)
	}
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return "sha:" + hex.EncodeToString(sum[:8])
}

// RosterIndex returns the position of userID in the team roster, or -1.
func (r *CombatResult) RosterIndex(userID int64) int {
	for i, m := range r.TeamStats.Members {
		if m.UserID == userID {
			return i
		}
	}
	return -1
}

// ResultSource names the channel a combat result arrived through.
type ResultSource string

const (
	SourceSocket ResultSource = "socket"
	SourceREST   ResultSource = "rest"
)
