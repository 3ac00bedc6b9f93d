package prepare

import "github.com/naveenspark/arena/pkg/domain"

// ToggleCommand is an optimistic readiness flip for one user. Apply returns
// the info with the flip applied; Revert returns the info as it was before.
type ToggleCommand struct {
	UserID  int64
	before  *domain.PrepareInfo
	applied *domain.PrepareInfo
}

// NewToggle captures info as the state to revert to.
func NewToggle(userID int64, info *domain.PrepareInfo) *ToggleCommand {
	return &ToggleCommand{UserID: userID, before: info}
}

// Apply flips UserID's readiness on a copy of the captured info.
func (t *ToggleCommand) Apply() *domain.PrepareInfo {
	next := t.before.Clone()
	if next == nil {
		return nil
	}
	for i := range next.Players {
		if next.Players[i].UserID == t.UserID {
			next.Players[i].IsReady = !next.Players[i].IsReady
		}
	}
	t.applied = next
	return next
}

// Applied is the value Apply produced.
func (t *ToggleCommand) Applied() *domain.PrepareInfo { return t.applied }

// Revert returns the captured info.
func (t *ToggleCommand) Revert() *domain.PrepareInfo { return t.before }
