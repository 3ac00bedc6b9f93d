package roomstate

import "github.com/naveenspark/arena/pkg/domain"

// View is what the room screen renders.
type View struct {
	RoomID  int64
	Room    *domain.RoomSnapshot
	Loading bool
	Err     error
	Joined  bool
}

// IsJoined is the derived socket-joined state.
func IsJoined(roomID int64, socket *domain.RoomSnapshot) bool {
	return roomID != 0 && socket != nil && socket.ID == roomID
}

// Reconcile merges the REST and socket snapshots for roomID. REST is the
// baseline and its errors win, even when the socket still reports the room.
// Once the socket is joined it owns players, readiness and status, and
// supplies the dungeon when it carries one.
func Reconcile(roomID int64, rest RESTSlot, socket *domain.RoomSnapshot) View {
	v := View{RoomID: roomID, Joined: IsJoined(roomID, socket)}
	if rest.RoomID != roomID {
		v.Loading = true
		return v
	}
	if rest.Err != nil {
		v.Err = rest.Err
		return v
	}
	if rest.Room == nil {
		v.Loading = true
		return v
	}

	merged := *rest.Room
	if v.Joined {
		merged = merged.WithPlayers(socket.Players)
		if socket.Status != "" {
			merged.Status = socket.Status
		}
		if socket.Dungeon.Name != "" {
			merged.Dungeon = socket.Dungeon
		}
	}
	v.Room = &merged
	return v
}
