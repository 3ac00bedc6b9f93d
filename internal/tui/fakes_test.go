package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/naveenspark/arena/internal/room"
	"github.com/naveenspark/arena/internal/roomstate"
	"github.com/naveenspark/arena/pkg/client"
	"github.com/naveenspark/arena/pkg/domain"
	"github.com/naveenspark/arena/pkg/gateway"
)

const (
	testRoomID = int64(7)
	testHostID = int64(1)
	testUserID = int64(2)
)

type stubGateway struct {
	mu     sync.Mutex
	emits  []string
	events chan gateway.Event
}

func (g *stubGateway) Emit(ctx context.Context, command string, payload any, reply any) error {
	g.mu.Lock()
	g.emits = append(g.emits, command)
	g.mu.Unlock()
	return nil
}

func (g *stubGateway) Subscribe() (<-chan gateway.Event, func()) { return g.events, func() {} }
func (g *stubGateway) Connected() bool                             { return true }

func (g *stubGateway) commands() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.emits...)
}

type stubAPI struct{}

func (stubAPI) GetRoom(ctx context.Context, id int64) (*domain.RoomSnapshot, error) {
	return nil, domain.ErrRoomNotFound
}
func (stubAPI) GetRoomByHost(ctx context.Context, uid int64) (*domain.RoomSnapshot, error) {
	return nil, domain.ErrRoomNotFound
}
func (stubAPI) JoinRoom(ctx context.Context, id int64, req client.JoinRoomRequest) (*domain.RoomSnapshot, error) {
	return nil, nil
}
func (stubAPI) LeaveRoom(ctx context.Context, id, uid int64) error { return nil }
func (stubAPI) StartCombat(ctx context.Context, id, hid int64) (*client.StartCombatResponse, error) {
	return &client.StartCombatResponse{}, nil
}
func (stubAPI) ResetRoom(ctx context.Context, id, hid int64) error          { return nil }
func (stubAPI) UpdateDungeon(ctx context.Context, id, hid, did int64) error { return nil }
func (stubAPI) KickPlayer(ctx context.Context, id, hid, tid int64) error    { return nil }
func (stubAPI) ListDungeons(ctx context.Context) ([]domain.Dungeon, error)  { return nil, nil }
func (stubAPI) ReportCombatProgress(ctx context.Context, p domain.CombatProgress) error {
	return nil
}

func testSnapshot() *domain.RoomSnapshot {
	return &domain.RoomSnapshot{
		ID:         testRoomID,
		Host:       domain.Host{ID: testHostID, Username: "alice"},
		Dungeon:    domain.Dungeon{ID: 10, Name: "Crypt", Level: 3},
		Status:     domain.RoomWaiting,
		MinPlayers: 2,
		MaxPlayers: 4,
		Players: []domain.RoomPlayer{
			{UserID: testHostID, Username: "alice", Status: domain.PlayerReady, IsReady: true},
			{UserID: testUserID, Username: "bob", Status: domain.PlayerJoined},
		},
	}
}

// newTestRoom wires a room over stubs with a REST snapshot already stored.
// The session is never started, so nothing runs in the background.
func newTestRoom(t *testing.T, viewer int64) (*room.Room, *roomstate.Store, *stubGateway) {
	t.Helper()
	store := roomstate.NewStore()
	store.SetREST(roomstate.RESTSlot{RoomID: testRoomID, Room: testSnapshot(), FetchedAt: time.Now()})
	gw := &stubGateway{events: make(chan gateway.Event)}
	r := room.New(room.Deps{
		API:      stubAPI{},
		Gateway:  gw,
		Store:    store,
		UserID:   viewer,
		Username: "bob",
	}, testRoomID)
	t.Cleanup(func() { r.Close() })
	return r, store, gw
}
