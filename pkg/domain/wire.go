package domain

import "time"

// RESTRoom is the room shape returned by GET /room-lobby/{id}.
type RESTRoom struct {
	ID             int64            `json:"id"`
	Host           Host             `json:"host"`
	Dungeon        Dungeon          `json:"dungeon"`
	Status         RoomStatus       `json:"status"`
	IsPrivate      bool             `json:"isPrivate"`
	MinPlayers     int              `json:"minPlayers"`
	MaxPlayers     int              `json:"maxPlayers"`
	CurrentPlayers int              `json:"currentPlayers"`
	Players        []RESTRoomPlayer `json:"players"`
}

// RESTRoomPlayer is a membership row. Readiness lives on the nested player.
type RESTRoomPlayer struct {
	ID       int64        `json:"id"`
	Status   PlayerStatus `json:"status"`
	JoinedAt time.Time    `json:"joinedAt"`
	Player   struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		IsReady  bool   `json:"isReady"`
	} `json:"player"`
}

// SocketRoom is the roomInfo / roomUpdate payload pushed by the gateway.
type SocketRoom struct {
	ID         int64              `json:"id"`
	HostID     int64              `json:"hostId"`
	Host       *Host              `json:"host,omitempty"`
	Dungeon    *Dungeon           `json:"dungeon,omitempty"`
	Status     RoomStatus         `json:"status"`
	IsPrivate  bool               `json:"isPrivate"`
	MinPlayers int                `json:"minPlayers"`
	MaxPlayers int                `json:"maxPlayers"`
	Players    []SocketRoomPlayer `json:"players"`
}

// SocketRoomPlayer is the flat player shape used on the socket.
type SocketRoomPlayer struct {
	ID       int64        `json:"id"`
	Username string       `json:"username"`
	Status   PlayerStatus `json:"status"`
	IsReady  bool         `json:"isReady"`
	JoinedAt time.Time    `json:"joinedAt"`
}

// NormalizeREST converts a REST room into a snapshot.
func NormalizeREST(in RESTRoom) RoomSnapshot {
	players := make([]RoomPlayer, 0, len(in.Players))
	for _, p := range in.Players {
		status := p.Status
		if status == "" {
			status = PlayerJoined
		}
		players = append(players, RoomPlayer{
			UserID:   p.Player.ID,
			Username: p.Player.Username,
			Status:   status,
			IsReady:  p.Player.IsReady || status == PlayerReady,
			JoinedAt: p.JoinedAt,
		})
	}
	return RoomSnapshot{
		ID:         in.ID,
		Host:       in.Host,
		Dungeon:    in.Dungeon,
		Status:     in.Status,
		IsPrivate:  in.IsPrivate,
		MinPlayers: in.MinPlayers,
		MaxPlayers: in.MaxPlayers,
	}.WithPlayers(players)
}

// NormalizeSocket converts a socket room push into a snapshot. Fields the
// socket does not carry are left zero; the reconciler fills them from REST.
func NormalizeSocket(in SocketRoom) RoomSnapshot {
	players := make([]RoomPlayer, 0, len(in.Players))
	for _, p := range in.Players {
		status := p.Status
		if status == "" {
			status = PlayerJoined
		}
		players = append(players, RoomPlayer{
			UserID:   p.ID,
			Username: p.Username,
			Status:   status,
			IsReady:  p.IsReady,
			JoinedAt: p.JoinedAt,
		})
	}
	snap := RoomSnapshot{
		ID:         in.ID,
		Status:     in.Status,
		IsPrivate:  in.IsPrivate,
		MinPlayers: in.MinPlayers,
		MaxPlayers: in.MaxPlayers,
	}
	if in.Host != nil {
		snap.Host = *in.Host
	} else {
		snap.Host.ID = in.HostID
	}
	if in.Dungeon != nil {
		snap.Dungeon = *in.Dungeon
	}
	return snap.WithPlayers(players)
}
