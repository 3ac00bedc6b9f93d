package combat

import "github.com/naveenspark/arena/pkg/domain"

// BuildProgress derives the quest report for userID from a combat result.
// Only ids that resolve to numbers are sent; nothing is guessed.
func BuildProgress(result *domain.CombatResult, room *domain.RoomSnapshot, userID int64) domain.CombatProgress {
	p := domain.CombatProgress{EnemiesDefeated: []domain.EnemyKill{}}
	if result == nil {
		return p
	}
	if id, ok := result.ID.Numeric(); ok {
		p.CombatResultID = &id
	}
	if id := dungeonID(result, room); id > 0 {
		p.DungeonID = &id
	}
	p.EnemiesDefeated = defeated(result.Enemies)
	p.CollectedItems = userItems(result, userID)
	return p
}

// dungeonID prefers the explicit field, then the nested dungeon, then the
// room the combat ran in.
func dungeonID(result *domain.CombatResult, room *domain.RoomSnapshot) int64 {
	switch {
	case result.DungeonID > 0:
		return result.DungeonID
	case result.Dungeon != nil && result.Dungeon.ID > 0:
		return result.Dungeon.ID
	case room != nil:
		return room.Dungeon.ID
	}
	return 0
}

// defeated counts enemies at or below zero hp per type, in first-seen order.
func defeated(enemies []domain.Enemy) []domain.EnemyKill {
	kills := []domain.EnemyKill{}
	index := map[string]int{}
	for _, e := range enemies {
		if e.HP > 0 {
			continue
		}
		kind := e.EnemyType
		if kind == "" {
			kind = e.Name
		}
		if kind == "" {
			continue
		}
		if i, ok := index[kind]; ok {
			kills[i].Count++
			continue
		}
		index[kind] = len(kills)
		kills = append(kills, domain.EnemyKill{EnemyType: kind, Count: 1})
	}
	return kills
}

// userItems resolves the items userID collected. Per-user rewards are
// matched by roster position; the aggregate list only stands in for a solo
// roster.
func userItems(result *domain.CombatResult, userID int64) []domain.ItemQuantity {
	rewards := result.Rewards
	if rewards == nil {
		return nil
	}
	var items []domain.ItemQuantity
	if i := result.RosterIndex(userID); i >= 0 && i < len(rewards.PerUser) {
		items = rewards.PerUser[i].Items
	} else if len(result.TeamStats.Members) == 1 {
		items = rewards.Items
	}

	var out []domain.ItemQuantity
	for _, it := range items {
		if it.ItemID > 0 && it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return out
}
