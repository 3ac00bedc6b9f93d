// Package session owns one membership in a room's gateway channel: joining
// and leaving, the host and player commands, their REST fallbacks, and the
// ingestion of pushed room events into the shared store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/arena/internal/roomstate"
	"github.com/naveenspark/arena/pkg/client"
	"github.com/naveenspark/arena/pkg/domain"
	"github.com/naveenspark/arena/pkg/gateway"
)

// DefaultCommandTimeout bounds how long a command waits for its ack.
const DefaultCommandTimeout = 8 * time.Second

// Gateway commands.
const (
	cmdJoinRoom      = "joinRoom"
	cmdLeaveRoom     = "leaveRoom"
	cmdToggleReady   = "toggleReady"
	cmdStartCombat   = "startCombat"
	cmdPrepareStart  = "prepareStart"
	cmdUpdateDungeon = "updateDungeon"
	cmdKickPlayer    = "kickPlayer"
	cmdRoomMessage   = "roomMessage"
)

// Gateway pushes.
const (
	evRoomInfo       = "roomInfo"
	evRoomUpdate     = "roomUpdate"
	evCombatResult   = "combatResult"
	evPlayerKicked   = "playerKicked"
	evJoinedRoom     = "joinedRoom"
	evPrepareToStart = "prepareToStart"
	evRoomMessage    = "roomMessage"
)

// State is the session's connection state. Joined is never stored; it is
// read off the store's socket snapshot.
type State int

const (
	Disconnected State = iota
	Joining
	Joined
)

func (s State) String() string {
	switch s {
	case Joining:
		return "joining"
	case Joined:
		return "joined"
	default:
		return "disconnected"
	}
}

// Gateway is the part of *gateway.Client the session uses.
type Gateway interface {
	Emit(ctx context.Context, command string, payload any, reply any) error
	Subscribe() (<-chan gateway.Event, func())
	Connected() bool
}

// REST is the part of *client.Client used for fallbacks.
type REST interface {
	JoinRoom(ctx context.Context, roomID int64, req client.JoinRoomRequest) (*domain.RoomSnapshot, error)
	LeaveRoom(ctx context.Context, roomID, userID int64) error
	StartCombat(ctx context.Context, roomID, hostID int64) (*client.StartCombatResponse, error)
	ResetRoom(ctx context.Context, roomID, hostID int64) error
	UpdateDungeon(ctx context.Context, roomID, hostID, dungeonID int64) error
	KickPlayer(ctx context.Context, roomID, hostID, targetID int64) error
}

// Poller refreshes the REST snapshot.
type Poller interface {
	Run(ctx context.Context) error
	Invalidate()
}

// Navigator moves the user out of the room view.
type Navigator interface {
	LeaveRoomView(roomID int64, reason string)
}

// Level is a toast severity.
type Level int

const (
	Info Level = iota
	Warn
	Error
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// Hooks receive pushed data that other components own.
type Hooks struct {
	Chat   func(domain.ChatMessage)
	Combat func(*domain.CombatResult, domain.ResultSource)
}

// Options configures a Manager.
type Options struct {
	RoomID         int64
	UserID         int64
	Gateway        Gateway
	REST           REST
	Store          *roomstate.Store
	Poller         Poller
	Passwords      *PasswordCache
	Navigator      Navigator
	Notifier       Notifier
	CommandTimeout time.Duration
	// AutoJoin joins on every gateway connect.
	AutoJoin bool
	Logger   *zap.Logger
}

// Manager is a room session. Create one per room view and Close it when the
// view goes away.
type Manager struct {
	opts Options
	log  *zap.Logger

	mu           sync.Mutex
	hooks        Hooks
	preventStart bool

	joining atomic.Int32
	kicked  sync.Once

	cancel    context.CancelFunc
	group     *errgroup.Group
	closeOnce sync.Once
}

// New builds a manager. Store and Gateway are required.
func New(opts Options) *Manager {
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}
	if opts.Passwords == nil {
		opts.Passwords = NewPasswordCache()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Manager{
		opts: opts,
		log:  opts.Logger.Named("session").With(zap.Int64("room_id", opts.RoomID)),
	}
}

// SetHooks installs the chat and combat receivers. Call before Start.
func (m *Manager) SetHooks(h Hooks) {
	m.mu.Lock()
	m.hooks = h
	m.mu.Unlock()
}

func (m *Manager) RoomID() int64 { return m.opts.RoomID }
func (m *Manager) UserID() int64 { return m.opts.UserID }

// State reports the current connection state.
func (m *Manager) State() State {
	if m.Joined() {
		return Joined
	}
	if m.joining.Load() > 0 {
		return Joining
	}
	return Disconnected
}

// Joined is true once the gateway pushed a snapshot of this room.
func (m *Manager) Joined() bool {
	return m.opts.Store.Joined(m.opts.RoomID)
}

// StartLocked reports whether the host start lock is held.
func (m *Manager) StartLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preventStart
}

// LockStart blocks StartCombat and PrepareStart until ResetRoom succeeds.
func (m *Manager) LockStart() {
	m.mu.Lock()
	m.preventStart = true
	m.mu.Unlock()
}

// Start launches event ingestion and REST polling. Both stop on Close or
// when ctx ends.
func (m *Manager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	m.cancel, m.group = cancel, g

	events, unsubscribe := m.opts.Gateway.Subscribe()
	g.Go(func() error {
		defer unsubscribe()
		return m.ingest(gctx, events)
	})
	if m.opts.Poller != nil {
		g.Go(func() error { return m.opts.Poller.Run(gctx) })
	}
}

// Close stops the session and clears what the gateway pushed for its room.
// State that belongs to another room is left alone. It is safe to call more
// than once.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
			err = m.group.Wait()
		}
		m.opts.Store.ClearRoom(m.opts.RoomID)
	})
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// roomCommand is the payload shared by every room command.
type roomCommand struct {
	RoomID    int64  `json:"roomId"`
	UserID    int64  `json:"userId,omitempty"`
	HostID    int64  `json:"hostId,omitempty"`
	Password  string `json:"password,omitempty"`
	DungeonID int64  `json:"dungeonId,omitempty"`
	TargetID  int64  `json:"targetId,omitempty"`
}

type chatCommand struct {
	ID      string `json:"id"`
	RoomID  int64  `json:"roomId"`
	UserID  int64  `json:"userId"`
	Message string `json:"message"`
}

// emit sends command over the gateway. While the gateway is down it fails
// straight away with ErrSocketUnavailable instead of waiting for a timeout.
func (m *Manager) emit(ctx context.Context, command string, payload any) error {
	if !m.opts.Gateway.Connected() {
		return fmt.Errorf("%s: %w", command, domain.ErrSocketUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, m.opts.CommandTimeout)
	defer cancel()
	return m.opts.Gateway.Emit(ctx, command, payload, nil)
}

// shouldFallBack is true for transport failures. Server rejections are final,
// and a cancelled caller gets no fallback either.
func shouldFallBack(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() == nil && !domain.IsRejection(err)
}

func (m *Manager) invalidate() {
	if m.opts.Poller != nil {
		m.opts.Poller.Invalidate()
	}
}

func (m *Manager) requireUser() error {
	if m.opts.UserID == 0 {
		return domain.ErrAuthRequired
	}
	return nil
}

// JoinRoom joins the room over the gateway, falling back to the REST join on
// transport failure. An empty password uses the cached one.
func (m *Manager) JoinRoom(ctx context.Context, password string) error {
	if err := m.requireUser(); err != nil {
		return fmt.Errorf("session.JoinRoom: %w", err)
	}
	m.joining.Add(1)
	defer m.joining.Add(-1)

	roomID := m.opts.RoomID
	if password == "" {
		password = m.opts.Passwords.Get(roomID)
	}

	err := m.emit(ctx, cmdJoinRoom, roomCommand{RoomID: roomID, UserID: m.opts.UserID, Password: password})
	if shouldFallBack(ctx, err) {
		m.log.Warn("socket join failed, joining over REST", zap.Error(err))
		_, err = m.opts.REST.JoinRoom(ctx, roomID, client.JoinRoomRequest{UserID: m.opts.UserID, Password: password})
	}
	if err != nil {
		if errors.Is(err, domain.ErrWrongPassword) {
			m.opts.Passwords.Forget(roomID)
		}
		return fmt.Errorf("session.JoinRoom: %w", err)
	}
	m.opts.Passwords.Set(roomID, password)
	m.invalidate()
	return nil
}

// Reconnect retries the join with the cached password.
func (m *Manager) Reconnect(ctx context.Context) error {
	return m.JoinRoom(ctx, "")
}

// LeaveRoom leaves the room and always navigates away on success.
func (m *Manager) LeaveRoom(ctx context.Context) error {
	if err := m.requireUser(); err != nil {
		return fmt.Errorf("session.LeaveRoom: %w", err)
	}
	err := m.emit(ctx, cmdLeaveRoom, roomCommand{RoomID: m.opts.RoomID, UserID: m.opts.UserID})
	if shouldFallBack(ctx, err) {
		m.log.Warn("socket leave failed, leaving over REST", zap.Error(err))
		err = m.opts.REST.LeaveRoom(ctx, m.opts.RoomID, m.opts.UserID)
	}
	if err != nil {
		return fmt.Errorf("session.LeaveRoom: %w", err)
	}
	m.opts.Store.ClearRoom(m.opts.RoomID)
	m.invalidate()
	if m.opts.Navigator != nil {
		m.opts.Navigator.LeaveRoomView(m.opts.RoomID, "")
	}
	return nil
}

// ToggleReady flips the caller's readiness. There is no REST fallback.
func (m *Manager) ToggleReady(ctx context.Context) error {
	if err := m.requireUser(); err != nil {
		return fmt.Errorf("session.ToggleReady: %w", err)
	}
	if err := m.emit(ctx, cmdToggleReady, roomCommand{RoomID: m.opts.RoomID, UserID: m.opts.UserID}); err != nil {
		return fmt.Errorf("session.ToggleReady: %w", err)
	}
	m.invalidate()
	return nil
}

// StartCombat asks the server to start combat now. The result of a REST
// fallback is delivered through the combat hook like a pushed one.
func (m *Manager) StartCombat(ctx context.Context) error {
	if err := m.requireUser(); err != nil {
		return fmt.Errorf("session.StartCombat: %w", err)
	}
	if m.StartLocked() {
		return fmt.Errorf("session.StartCombat: %w", domain.ErrStartLocked)
	}

	err := m.emit(ctx, cmdStartCombat, roomCommand{RoomID: m.opts.RoomID, HostID: m.opts.UserID})
	if shouldFallBack(ctx, err) {
		m.log.Warn("socket start failed, starting over REST", zap.Error(err))
		var resp *client.StartCombatResponse
		resp, err = m.opts.REST.StartCombat(ctx, m.opts.RoomID, m.opts.UserID)
		if err == nil && resp != nil && resp.CombatResult != nil {
			m.deliverCombat(resp.CombatResult, domain.SourceREST)
		}
	}
	if err != nil {
		return fmt.Errorf("session.StartCombat: %w", err)
	}
	m.invalidate()
	return nil
}

// PrepareStart opens the prepare phase for everyone in the room. When the
// gateway can't deliver it and the caller believes everyone is ready, combat
// is started directly instead.
func (m *Manager) PrepareStart(ctx context.Context, allReadyLocally bool) error {
	if err := m.requireUser(); err != nil {
		return fmt.Errorf("session.PrepareStart: %w", err)
	}
	if m.StartLocked() {
		return fmt.Errorf("session.PrepareStart: %w", domain.ErrStartLocked)
	}

	err := m.emit(ctx, cmdPrepareStart, roomCommand{RoomID: m.opts.RoomID, HostID: m.opts.UserID})
	if shouldFallBack(ctx, err) && allReadyLocally {
		m.log.Warn("prepare failed, starting combat directly", zap.Error(err))
		return m.StartCombat(ctx)
	}
	if err != nil {
		return fmt.Errorf("session.PrepareStart: %w", err)
	}
	m.invalidate()
	return nil
}

// UpdateDungeon switches the room's dungeon.
func (m *Manager) UpdateDungeon(ctx context.Context, dungeonID int64) error {
	if err := m.requireUser(); err != nil {
		return fmt.Errorf("session.UpdateDungeon: %w", err)
	}
	err := m.emit(ctx, cmdUpdateDungeon, roomCommand{RoomID: m.opts.RoomID, HostID: m.opts.UserID, DungeonID: dungeonID})
	if shouldFallBack(ctx, err) {
		m.log.Warn("socket dungeon update failed, using REST", zap.Error(err))
		err = m.opts.REST.UpdateDungeon(ctx, m.opts.RoomID, m.opts.UserID, dungeonID)
	}
	if err != nil {
		return fmt.Errorf("session.UpdateDungeon: %w", err)
	}
	m.invalidate()
	return nil
}

// KickPlayer removes targetID from the room.
func (m *Manager) KickPlayer(ctx context.Context, targetID int64) error {
	if err := m.requireUser(); err != nil {
		return fmt.Errorf("session.KickPlayer: %w", err)
	}
	err := m.emit(ctx, cmdKickPlayer, roomCommand{RoomID: m.opts.RoomID, HostID: m.opts.UserID, TargetID: targetID})
	if shouldFallBack(ctx, err) {
		m.log.Warn("socket kick failed, using REST", zap.Error(err))
		err = m.opts.REST.KickPlayer(ctx, m.opts.RoomID, m.opts.UserID, targetID)
	}
	if err != nil {
		return fmt.Errorf("session.KickPlayer: %w", err)
	}
	m.invalidate()
	return nil
}

// ResetRoom returns the room to WAITING and releases the start lock.
func (m *Manager) ResetRoom(ctx context.Context) error {
	if err := m.requireUser(); err != nil {
		return fmt.Errorf("session.ResetRoom: %w", err)
	}
	if err := m.opts.REST.ResetRoom(ctx, m.opts.RoomID, m.opts.UserID); err != nil {
		return fmt.Errorf("session.ResetRoom: %w", err)
	}
	m.mu.Lock()
	m.preventStart = false
	m.mu.Unlock()
	m.opts.Store.ClearPrepare(m.opts.RoomID)
	m.opts.Store.ClearCombat(m.opts.RoomID)
	m.invalidate()
	return nil
}

// SendChat emits a chat line. Callers must make sure the session is joined.
func (m *Manager) SendChat(ctx context.Context, id, message string) error {
	if err := m.requireUser(); err != nil {
		return fmt.Errorf("session.SendChat: %w", err)
	}
	err := m.emit(ctx, cmdRoomMessage, chatCommand{ID: id, RoomID: m.opts.RoomID, UserID: m.opts.UserID, Message: message})
	if err != nil {
		return fmt.Errorf("session.SendChat: %w", err)
	}
	return nil
}

func (m *Manager) deliverCombat(result *domain.CombatResult, source domain.ResultSource) {
	if result.RoomID == 0 {
		stamped := *result
		stamped.RoomID = m.opts.RoomID
		result = &stamped
	}
	m.opts.Store.ClearPrepare(m.opts.RoomID)
	m.opts.Store.SetCombat(result)
	m.mu.Lock()
	hook := m.hooks.Combat
	m.mu.Unlock()
	if hook != nil {
		hook(result, source)
	}
}

func (m *Manager) notify(level Level, msg string) {
	if m.opts.Notifier != nil {
		m.opts.Notifier.Notify(level, msg)
	}
}
