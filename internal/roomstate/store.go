// Package roomstate holds the room snapshots reported by the REST API and the
// room gateway, and reconciles them into the single view the UI renders.
package roomstate

import (
	"sync"
	"time"

	"github.com/naveenspark/arena/pkg/domain"
)

// RESTSlot is the outcome of the latest REST poll for RoomID.
type RESTSlot struct {
	RoomID    int64
	Room      *domain.RoomSnapshot
	Err       error
	FetchedAt time.Time
}

// Store is the process-wide room state. Each slot is replaced atomically and
// the values it holds are never mutated after being stored.
type Store struct {
	mu      sync.RWMutex
	rest    RESTSlot
	socket  *domain.RoomSnapshot
	prepare *domain.PrepareInfo
	combat  *domain.CombatResult

	subMu sync.Mutex
	subs  map[int]chan struct{}
	next  int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{subs: make(map[int]chan struct{})}
}

func (s *Store) SetREST(slot RESTSlot) {
	s.mu.Lock()
	s.rest = slot
	s.mu.Unlock()
	s.notify()
}

func (s *Store) REST() RESTSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rest
}

func (s *Store) SetSocket(room *domain.RoomSnapshot) {
	s.mu.Lock()
	s.socket = room
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Socket() *domain.RoomSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.socket
}

func (s *Store) SetPrepare(info *domain.PrepareInfo) {
	s.mu.Lock()
	s.prepare = info
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Prepare() *domain.PrepareInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prepare
}

func (s *Store) SetCombat(result *domain.CombatResult) {
	s.mu.Lock()
	s.combat = result
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Combat() *domain.CombatResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.combat
}

// ClearRoom drops what the gateway pushed for roomID: its socket snapshot,
// prepare info and combat result. Slots holding another room are left alone,
// and the REST slot is always kept.
func (s *Store) ClearRoom(roomID int64) {
	s.mu.Lock()
	if s.socket != nil && s.socket.ID == roomID {
		s.socket = nil
	}
	if s.prepare != nil && s.prepare.RoomID == roomID {
		s.prepare = nil
	}
	if s.combat != nil && s.combat.RoomID == roomID {
		s.combat = nil
	}
	s.mu.Unlock()
	s.notify()
}

// ClearSocket drops the socket snapshot if it belongs to roomID.
func (s *Store) ClearSocket(roomID int64) {
	s.mu.Lock()
	if s.socket != nil && s.socket.ID == roomID {
		s.socket = nil
	}
	s.mu.Unlock()
	s.notify()
}

// ClearPrepare drops the prepare slot if it belongs to roomID.
func (s *Store) ClearPrepare(roomID int64) {
	s.mu.Lock()
	if s.prepare != nil && s.prepare.RoomID == roomID {
		s.prepare = nil
	}
	s.mu.Unlock()
	s.notify()
}

// ClearCombat drops the combat slot if it belongs to roomID.
func (s *Store) ClearCombat(roomID int64) {
	s.mu.Lock()
	if s.combat != nil && s.combat.RoomID == roomID {
		s.combat = nil
	}
	s.mu.Unlock()
	s.notify()
}

// View reconciles the current slots for roomID.
func (s *Store) View(roomID int64) View {
	s.mu.RLock()
	rest, socket := s.rest, s.socket
	s.mu.RUnlock()
	return Reconcile(roomID, rest, socket)
}

// Joined reports whether the gateway has acknowledged membership in roomID,
// i.e. whether the latest socket snapshot belongs to it.
func (s *Store) Joined(roomID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return IsJoined(roomID, s.socket)
}

// Subscribe returns a channel that receives a value after any slot changes.
// Notifications coalesce: a slow reader sees one pending signal, not a
// backlog. Call the returned func to unsubscribe.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.subMu.Unlock()
	return ch, func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
