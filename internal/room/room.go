// Package room assembles everything one open room needs: the shared store,
// the REST poller, the gateway session, the prepare coordinator, the combat
// reconciler and the chat channel.
package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/naveenspark/arena/internal/chat"
	"github.com/naveenspark/arena/internal/combat"
	"github.com/naveenspark/arena/internal/prepare"
	"github.com/naveenspark/arena/internal/roomstate"
	"github.com/naveenspark/arena/internal/session"
	"github.com/naveenspark/arena/pkg/domain"
)

// API is the REST surface a room uses. *client.Client implements it.
type API interface {
	session.REST
	roomstate.RoomFetcher
	combat.ProgressReporter
	ListDungeons(ctx context.Context) ([]domain.Dungeon, error)
}

// Deps are shared across every room the user opens.
type Deps struct {
	API            API
	Gateway        session.Gateway
	Store          *roomstate.Store
	Passwords      *session.PasswordCache
	UserID         int64
	Username       string
	PollInterval   time.Duration
	CommandTimeout time.Duration
	Logger         *zap.Logger
}

// NoteKind says what a Note asks the UI to do.
type NoteKind int

const (
	NoteToast NoteKind = iota
	// NoteLeave means the user is no longer in the room and the view must go.
	NoteLeave
)

// Note is a user-facing notification raised by the room.
type Note struct {
	Kind    NoteKind
	Level   session.Level
	Message string
}

// Room is one open room view.
type Room struct {
	ID int64

	deps    Deps
	log     *zap.Logger
	Session *session.Manager
	Prepare *prepare.Coordinator
	Combat  *combat.Reconciler
	Chat    *chat.Channel
	poller  *roomstate.Poller

	notes     chan Note
	changed   chan struct{}
	done      chan struct{}
	unsub     func()
	closeOnce sync.Once
}

const noteQueue = 32

// New wires a room without touching the network.
func New(deps Deps, roomID int64) *Room {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Passwords == nil {
		deps.Passwords = session.NewPasswordCache()
	}
	r := &Room{
		ID:      roomID,
		deps:    deps,
		log:     deps.Logger.Named("room").With(zap.Int64("room_id", roomID)),
		notes:   make(chan Note, noteQueue),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	r.poller = roomstate.NewPoller(deps.API, deps.Store, roomID, deps.UserID, deps.PollInterval, deps.Logger)
	r.Session = session.New(session.Options{
		RoomID:         roomID,
		UserID:         deps.UserID,
		Gateway:        deps.Gateway,
		REST:           deps.API,
		Store:          deps.Store,
		Poller:         r.poller,
		Passwords:      deps.Passwords,
		Navigator:      r,
		Notifier:       r,
		CommandTimeout: deps.CommandTimeout,
		AutoJoin:       true,
		Logger:         deps.Logger,
	})
	r.Prepare = prepare.New(roomID, deps.UserID, r.Session)
	r.Combat = combat.New(combat.Options{
		RoomID:   roomID,
		UserID:   deps.UserID,
		Store:    deps.Store,
		Host:     r.Session,
		Reporter: deps.API,
		Logger:   deps.Logger,
	})
	r.Chat = chat.New(r.Session, roomID, deps.UserID, deps.Username)
	r.Session.SetHooks(session.Hooks{
		Chat: func(m domain.ChatMessage) {
			if r.Chat.Receive(m) {
				r.poke()
			}
		},
		Combat: func(res *domain.CombatResult, src domain.ResultSource) {
			if r.Combat.Show(res, src) {
				r.poke()
			}
		},
	})
	var changes <-chan struct{}
	changes, r.unsub = deps.Store.Subscribe()
	go r.forward(changes)
	return r
}

func (r *Room) forward(changes <-chan struct{}) {
	for {
		select {
		case <-changes:
			r.poke()
		case <-r.done:
			return
		}
	}
}

func (r *Room) poke() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}

// Open wires the room, starts its session and joins. Rejections (wrong
// password, full room, no login) close the room and are returned; a join
// that fails on transport leaves the room open on REST data alone. Pushes
// left in the store from an earlier visit to roomID are dropped first; other
// rooms' state is not touched.
func Open(ctx context.Context, deps Deps, roomID int64, password string) (*Room, error) {
	if deps.UserID == 0 {
		return nil, fmt.Errorf("room.Open: %w", domain.ErrAuthRequired)
	}
	deps.Store.ClearRoom(roomID)
	r := New(deps, roomID)
	r.Session.Start(context.Background())

	if err := r.Session.JoinRoom(ctx, password); err != nil {
		if domain.IsRejection(err) || errors.Is(err, context.Canceled) {
			r.Close()
			return nil, fmt.Errorf("room.Open: %w", err)
		}
		r.log.Warn("join failed, showing REST data only", zap.Error(err))
		r.Notify(session.Warn, "Live updates unavailable: "+session.ErrorMessage(err))
	}
	return r, nil
}

// Changes fires after anything the room renders has changed. Signals
// coalesce.
func (r *Room) Changes() <-chan struct{} { return r.changed }

// Notes carries toasts and forced navigation for the UI.
func (r *Room) Notes() <-chan Note { return r.notes }

// Done is closed by Close.
func (r *Room) Done() <-chan struct{} { return r.done }

// UserID is the viewer's id.
func (r *Room) UserID() int64 { return r.deps.UserID }

// Notify implements session.Notifier.
func (r *Room) Notify(level session.Level, message string) {
	r.push(Note{Kind: NoteToast, Level: level, Message: message})
}

// LeaveRoomView implements session.Navigator.
func (r *Room) LeaveRoomView(roomID int64, reason string) {
	if roomID != r.ID {
		return
	}
	r.push(Note{Kind: NoteLeave, Level: session.Info, Message: reason})
}

func (r *Room) push(n Note) {
	select {
	case r.notes <- n:
	case <-r.done:
	default:
		r.log.Warn("note queue full, dropping", zap.String("message", n.Message))
	}
}

// Frame is a consistent read of everything the room view renders.
type Frame struct {
	View        roomstate.View
	State       session.State
	Phase       prepare.Phase
	PrepareInfo *domain.PrepareInfo
	Combat      *combat.Summary
	Chat        []domain.ChatMessage
	StartLocked bool
	IsHost      bool
	CanStart    bool
	AllReady    bool
	SelfReady   bool
	ReadyCount  int
	ActiveCount int
}

// Frame reconciles the store and advances the prepare phase.
func (r *Room) Frame() Frame {
	store := r.deps.Store
	f := Frame{
		View:        store.View(r.ID),
		State:       r.Session.State(),
		StartLocked: r.Session.StartLocked(),
		Chat:        r.Chat.Messages(),
	}
	var room *domain.RoomSnapshot
	if f.View.Room != nil {
		room = f.View.Room
		f.IsHost = room.IsHost(r.deps.UserID)
		f.CanStart = room.CanStart(r.deps.UserID) && !f.StartLocked
		f.AllReady = room.AllPlayersReady()
		if p, ok := room.Player(r.deps.UserID); ok {
			f.SelfReady = p.IsReady
		}
	}
	result := store.Combat()
	if result != nil && result.RoomID != r.ID {
		result = nil
	}
	f.Phase = r.Prepare.Observe(store.Prepare(), room, result)
	if f.Phase == prepare.Preparing {
		f.PrepareInfo = r.Prepare.Info()
		f.ReadyCount, f.ActiveCount = r.Prepare.Counts()
		f.SelfReady = r.Prepare.SelfReady()
	}
	if res, _ := r.Combat.Current(); res != nil {
		s := combat.Summarize(res, r.deps.UserID)
		f.Combat = &s
	}
	return f
}

// ToggleReady flips readiness through the prepare coordinator while a
// prepare phase is open, and directly otherwise.
func (r *Room) ToggleReady(ctx context.Context) error {
	if r.Prepare.ModalOpen() {
		return r.Prepare.ToggleReady(ctx)
	}
	return r.Session.ToggleReady(ctx)
}

// PrepareStart opens the prepare phase, telling the session whether the
// room looks all-ready from here.
func (r *Room) PrepareStart(ctx context.Context) error {
	v := r.deps.Store.View(r.ID)
	allReady := v.Room != nil && v.Room.AllPlayersReady()
	return r.Session.PrepareStart(ctx, allReady)
}

// CloseCombat dismisses the combat result; the host also resets the room.
func (r *Room) CloseCombat(ctx context.Context) error {
	v := r.deps.Store.View(r.ID)
	isHost := v.Room != nil && v.Room.IsHost(r.deps.UserID)
	return r.Combat.Close(ctx, isHost)
}

// NextDungeon switches the room to the dungeon after the current one.
func (r *Room) NextDungeon(ctx context.Context) (domain.Dungeon, error) {
	dungeons, err := r.deps.API.ListDungeons(ctx)
	if err != nil {
		return domain.Dungeon{}, fmt.Errorf("room.NextDungeon: %w", err)
	}
	if len(dungeons) == 0 {
		return domain.Dungeon{}, fmt.Errorf("room.NextDungeon: no dungeons available")
	}
	var current int64
	if v := r.deps.Store.View(r.ID); v.Room != nil {
		current = v.Room.Dungeon.ID
	}
	next := dungeons[0]
	for i, d := range dungeons {
		if d.ID == current {
			next = dungeons[(i+1)%len(dungeons)]
			break
		}
	}
	if err := r.Session.UpdateDungeon(ctx, next.ID); err != nil {
		return domain.Dungeon{}, err
	}
	return next, nil
}

// Close tears the room down and waits for in-flight progress reports.
func (r *Room) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		r.unsub()
		err = r.Session.Close()
		r.Combat.Wait()
	})
	return err
}
