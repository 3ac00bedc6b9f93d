package session

import (
	"bytes"
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/naveenspark/arena/pkg/domain"
	"github.com/naveenspark/arena/pkg/gateway"
)

type kickedPayload struct {
	RoomID         int64  `json:"roomId,omitempty"`
	KickedPlayerID int64  `json:"kickedPlayerId"`
	Message        string `json:"message"`
}

func (m *Manager) ingest(ctx context.Context, events <-chan gateway.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				m.opts.Store.ClearSocket(m.opts.RoomID)
				return nil
			}
			m.handle(ctx, ev)
		}
	}
}

func (m *Manager) handle(ctx context.Context, ev gateway.Event) {
	switch ev.Name {
	case gateway.EventConnect:
		if m.opts.AutoJoin && m.opts.UserID != 0 {
			m.group.Go(func() error {
				m.autoJoin(ctx)
				return nil
			})
		}
	case gateway.EventDisconnect:
		m.opts.Store.ClearSocket(m.opts.RoomID)
	case evRoomInfo, evRoomUpdate:
		var room domain.SocketRoom
		if !m.decode(ev, &room) || !m.current(ev.Name, room.ID) {
			return
		}
		snap := domain.NormalizeSocket(room)
		m.opts.Store.SetSocket(&snap)
	case evCombatResult:
		var result domain.CombatResult
		if !m.decode(ev, &result) {
			return
		}
		if result.RoomID != 0 && !m.current(ev.Name, result.RoomID) {
			return
		}
		m.deliverCombat(&result, domain.SourceSocket)
	case evPrepareToStart:
		if isNull(ev.Data) {
			m.opts.Store.ClearPrepare(m.opts.RoomID)
			return
		}
		var info domain.PrepareInfo
		if !m.decode(ev, &info) || !m.current(ev.Name, info.RoomID) {
			return
		}
		m.opts.Store.SetPrepare(&info)
	case evPlayerKicked:
		var p kickedPayload
		if !m.decode(ev, &p) {
			return
		}
		if p.RoomID != 0 && !m.current(ev.Name, p.RoomID) {
			return
		}
		m.onKicked(p)
	case evJoinedRoom:
		m.invalidate()
	case evRoomMessage:
		var msg domain.ChatMessage
		if !m.decode(ev, &msg) || !m.current(ev.Name, msg.RoomID) {
			return
		}
		m.mu.Lock()
		hook := m.hooks.Chat
		m.mu.Unlock()
		if hook != nil {
			hook(msg)
		}
	default:
		m.log.Debug("ignoring event", zap.String("event", ev.Name))
	}
}

func (m *Manager) autoJoin(ctx context.Context) {
	if err := m.JoinRoom(ctx, ""); err != nil && ctx.Err() == nil {
		m.log.Warn("auto join failed", zap.Error(err))
		m.notify(Error, "Could not join room: "+ErrorMessage(err))
	}
}

// onKicked navigates the kicked user away exactly once; everyone else just
// hears about it.
func (m *Manager) onKicked(p kickedPayload) {
	if p.KickedPlayerID != m.opts.UserID || m.opts.UserID == 0 {
		msg := p.Message
		if msg == "" {
			msg = "A player was removed from the room"
		}
		m.notify(Info, msg)
		m.invalidate()
		return
	}
	m.kicked.Do(func() {
		msg := p.Message
		if msg == "" {
			msg = "You were removed from the room"
		}
		m.opts.Store.ClearRoom(m.opts.RoomID)
		m.notify(Warn, msg)
		if m.opts.Navigator != nil {
			m.opts.Navigator.LeaveRoomView(m.opts.RoomID, msg)
		}
	})
}

// current drops events addressed to another room.
func (m *Manager) current(event string, roomID int64) bool {
	if roomID == m.opts.RoomID {
		return true
	}
	m.log.Debug("dropping stale event",
		zap.String("event", event),
		zap.Int64("event_room_id", roomID),
		zap.Error(domain.ErrStale))
	return false
}

func (m *Manager) decode(ev gateway.Event, v any) bool {
	if err := json.Unmarshal(ev.Data, v); err != nil {
		m.log.Warn("malformed event", zap.String("event", ev.Name), zap.Error(err))
		return false
	}
	return true
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
