package domain

// EnemyKill aggregates defeated enemies of one type.
type EnemyKill struct {
	EnemyType string `json:"enemyType"`
	Count     int    `json:"count"`
}

// CombatProgress is the minimal payload sent to POST /quests/combat-progress.
type CombatProgress struct {
	CombatResultID  *int64         `json:"combatResultId,omitempty"`
	DungeonID       *int64         `json:"dungeonId,omitempty"`
	EnemiesDefeated []EnemyKill    `json:"enemiesDefeated"`
	CollectedItems  []ItemQuantity `json:"collectedItems,omitempty"`
}
