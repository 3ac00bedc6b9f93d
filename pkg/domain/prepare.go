package domain

// PrepareSlot is one member's entry in a prepare phase.
type PrepareSlot struct {
	UserID   int64        `json:"id"`
	Username string       `json:"username"`
	Status   PlayerStatus `json:"status"`
	IsReady  bool         `json:"isReady"`
}

// PrepareInfo is the transient prepare-phase snapshot pushed by the host's
// prepareStart broadcast.
type PrepareInfo struct {
	RoomID  int64         `json:"id"`
	Players []PrepareSlot `json:"players"`
}

// Matches reports whether the info belongs to roomID.
func (p *PrepareInfo) Matches(roomID int64) bool {
	return p != nil && roomID != 0 && p.RoomID == roomID
}

// ActiveCount is the number of slots not marked LEFT.
func (p *PrepareInfo) ActiveCount() int {
	n := 0
	for _, s := range p.Players {
		if s.Status != PlayerLeft {
			n++
		}
	}
	return n
}

// ReadyCount is the number of ready slots not marked LEFT.
func (p *PrepareInfo) ReadyCount() int {
	n := 0
	for _, s := range p.Players {
		if s.Status != PlayerLeft && s.IsReady {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers can apply local changes.
func (p *PrepareInfo) Clone() *PrepareInfo {
	if p == nil {
		return nil
	}
	cp := &PrepareInfo{RoomID: p.RoomID, Players: make([]PrepareSlot, len(p.Players))}
	copy(cp.Players, p.Players)
	return cp
}
