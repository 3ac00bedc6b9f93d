package domain

import "time"

// RoomStatus is the lifecycle state of a room lobby.
type RoomStatus string

const (
	RoomWaiting    RoomStatus = "WAITING"
	RoomInProgress RoomStatus = "IN_PROGRESS"
	RoomCompleted  RoomStatus = "COMPLETED"
	RoomCancelled  RoomStatus = "CANCELLED"
)

// PlayerStatus is a member's state inside a room.
type PlayerStatus string

const (
	PlayerJoined PlayerStatus = "JOINED"
	PlayerReady  PlayerStatus = "READY"
	PlayerLeft   PlayerStatus = "LEFT"
)

// Active reports whether the status counts toward player totals and readiness.
func (s PlayerStatus) Active() bool {
	return s == PlayerJoined || s == PlayerReady
}

// Host is the privileged member of a room.
type Host struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Level    int    `json:"level"`
}

// Dungeon is the combat instance a room will run.
type Dungeon struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// RoomPlayer is the normalized member representation shared by both sources.
type RoomPlayer struct {
	UserID   int64
	Username string
	Status   PlayerStatus
	IsReady  bool
	JoinedAt time.Time
}

// RoomSnapshot is the canonical description of a room at a point in time.
// Snapshots are replaced wholesale and must not be mutated after creation.
type RoomSnapshot struct {
	ID             int64
	Host           Host
	Dungeon        Dungeon
	Status         RoomStatus
	IsPrivate      bool
	MinPlayers     int
	MaxPlayers     int
	CurrentPlayers int
	Players        []RoomPlayer
}

// ActivePlayers returns the players whose status is not LEFT.
func (r *RoomSnapshot) ActivePlayers() []RoomPlayer {
	out := make([]RoomPlayer, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Status.Active() {
			out = append(out, p)
		}
	}
	return out
}

// Player looks up a member by user id, including members who left.
func (r *RoomSnapshot) Player(userID int64) (RoomPlayer, bool) {
	for _, p := range r.Players {
		if p.UserID == userID {
			return p, true
		}
	}
	return RoomPlayer{}, false
}

// IsHost reports whether userID hosts the room. Advisory only: the server
// enforces host privileges.
func (r *RoomSnapshot) IsHost(userID int64) bool {
	return userID != 0 && r.Host.ID == userID
}

// IsFull reports whether no active seat is left.
func (r *RoomSnapshot) IsFull() bool {
	return r.MaxPlayers > 0 && len(r.ActivePlayers()) >= r.MaxPlayers
}

// AllPlayersReady is true when every active non-host member is ready.
// Members who left are ignored entirely.
func (r *RoomSnapshot) AllPlayersReady() bool {
	for _, p := range r.Players {
		if !p.Status.Active() || p.UserID == r.Host.ID {
			continue
		}
		if !p.IsReady {
			return false
		}
	}
	return true
}

// CanStart reports whether userID may start combat right now, as far as the
// client can tell.
func (r *RoomSnapshot) CanStart(userID int64) bool {
	if !r.IsHost(userID) || r.Status != RoomWaiting {
		return false
	}
	if len(r.ActivePlayers()) < r.MinPlayers {
		return false
	}
	return r.AllPlayersReady()
}

// WithPlayers returns a copy of r carrying players, with CurrentPlayers
// recomputed from them.
func (r RoomSnapshot) WithPlayers(players []RoomPlayer) RoomSnapshot {
	r.Players = make([]RoomPlayer, len(players))
	copy(r.Players, players)
	r.CurrentPlayers = 0
	for _, p := range players {
		if p.Status.Active() {
			r.CurrentPlayers++
		}
	}
	return r
}
