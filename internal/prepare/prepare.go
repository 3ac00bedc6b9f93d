// Package prepare tracks the host-initiated prepare phase that precedes a
// combat start.
package prepare

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/naveenspark/arena/pkg/domain"
)

// Phase is where the room is in the prepare flow.
type Phase int

const (
	Idle Phase = iota
	Preparing
	Started
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Preparing:
		return "preparing"
	case Started:
		return "started"
	case Cancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// ErrNotPreparing is returned when readiness is toggled outside a prepare phase.
var ErrNotPreparing = errors.New("no prepare phase in progress")

// ReadyToggler sends the readiness flip to the server.
type ReadyToggler interface {
	ToggleReady(ctx context.Context) error
}

// Coordinator derives the prepare phase from server pushes and applies the
// caller's own readiness optimistically.
type Coordinator struct {
	roomID  int64
	userID  int64
	toggler ReadyToggler

	mu     sync.Mutex
	phase  Phase
	server *domain.PrepareInfo
	info   *domain.PrepareInfo
}

func New(roomID, userID int64, toggler ReadyToggler) *Coordinator {
	return &Coordinator{roomID: roomID, userID: userID, toggler: toggler}
}

// Observe feeds the latest server state; re-observing the same info keeps a
// pending optimistic toggle. The phase is Preparing exactly while
// info belongs to this room; when that stops, combat either started (room in
// progress or a result arrived) or the phase was cancelled.
func (c *Coordinator) Observe(info *domain.PrepareInfo, room *domain.RoomSnapshot, result *domain.CombatResult) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	if info.Matches(c.roomID) {
		c.phase = Preparing
		if info != c.server {
			c.server, c.info = info, info
		}
		return c.phase
	}
	c.server, c.info = nil, nil
	if c.phase == Preparing {
		if result != nil || (room != nil && room.Status == domain.RoomInProgress) {
			c.phase = Started
		} else {
			c.phase = Cancelled
		}
	}
	return c.phase
}

func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// ModalOpen reports whether the prepare modal should be shown.
func (c *Coordinator) ModalOpen() bool {
	return c.Phase() == Preparing
}

// Info is the prepare info as displayed, including any pending optimistic
// toggle. Nil outside Preparing.
func (c *Coordinator) Info() *domain.PrepareInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// Counts returns ready and active member counts, ignoring members who left.
func (c *Coordinator) Counts() (ready, active int) {
	info := c.Info()
	if info == nil {
		return 0, 0
	}
	return info.ReadyCount(), info.ActiveCount()
}

// SelfReady reports the caller's displayed readiness.
func (c *Coordinator) SelfReady() bool {
	info := c.Info()
	if info == nil {
		return false
	}
	for _, s := range info.Players {
		if s.UserID == c.userID {
			return s.IsReady
		}
	}
	return false
}

// ToggleReady flips the caller's readiness locally, then asks the server.
// On failure the local flip is undone unless a newer server push already
// replaced it.
func (c *Coordinator) ToggleReady(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != Preparing || c.info == nil {
		c.mu.Unlock()
		return fmt.Errorf("prepare.ToggleReady: %w", ErrNotPreparing)
	}
	cmd := NewToggle(c.userID, c.info)
	c.info = cmd.Apply()
	c.mu.Unlock()

	if err := c.toggler.ToggleReady(ctx); err != nil {
		c.mu.Lock()
		if c.info == cmd.Applied() {
			c.info = cmd.Revert()
		}
		c.mu.Unlock()
		return fmt.Errorf("prepare.ToggleReady: %w", err)
	}
	return nil
}
