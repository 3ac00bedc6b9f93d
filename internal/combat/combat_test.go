package combat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/naveenspark/arena/internal/roomstate"
	"github.com/naveenspark/arena/pkg/client"
	"github.com/naveenspark/arena/pkg/domain"
)

const resultJSON = `{
	"id": 812,
	"roomId": 7,
	"result": "victory",
	"duration": 95,
	"teamStats": {
		"members": [
			{"userId": 1, "username": "host", "damageDealt": 120},
			{"userId": 2, "username": "p2", "damageDealt": 80}
		],
		"totalDamage": 200
	},
	"enemies": [
		{"id": 1, "enemyType": "goblin", "name": "Goblin", "hp": 0, "maxHp": 30},
		{"id": 2, "enemyType": "slime", "name": "Slime", "hp": -4, "maxHp": 20},
		{"id": 3, "enemyType": "goblin", "name": "Goblin", "hp": 0, "maxHp": 30},
		{"id": 4, "enemyType": "troll", "name": "Troll", "hp": 12, "maxHp": 90}
	],
	"logs": [{"turn": 1, "actor": "host", "action": "attack", "target": "Goblin", "damage": 30}],
	"rewards": {
		"gold": 300,
		"experience": 90,
		"items": [{"itemId": 9, "quantity": 3}],
		"perUser": [
			{"userId": 1, "gold": 150, "experience": 45, "items": [{"itemId": 5, "quantity": 1}]},
			{"userId": 2, "gold": 150, "experience": 45, "items": [{"itemId": 6, "quantity": 2}, {"itemId": 0, "quantity": 1}]}
		]
	}
}`

func decodeResult(t *testing.T) *domain.CombatResult {
	t.Helper()
	var r domain.CombatResult
	require.NoError(t, json.Unmarshal([]byte(resultJSON), &r))
	return &r
}

func room() *domain.RoomSnapshot {
	return &domain.RoomSnapshot{ID: 7, Dungeon: domain.Dungeon{ID: 3, Name: "Crypt"}}
}

func TestBuildProgress(t *testing.T) {
	p := BuildProgress(decodeResult(t), room(), 2)

	require.NotNil(t, p.CombatResultID)
	assert.Equal(t, int64(812), *p.CombatResultID)
	require.NotNil(t, p.DungeonID)
	assert.Equal(t, int64(3), *p.DungeonID)
	assert.Equal(t, []domain.EnemyKill{{EnemyType: "goblin", Count: 2}, {EnemyType: "slime", Count: 1}}, p.EnemiesDefeated)
	assert.Equal(t, []domain.ItemQuantity{{ItemID: 6, Quantity: 2}}, p.CollectedItems)
}

func TestBuildProgressDungeonPriority(t *testing.T) {
	r := decodeResult(t)
	r.Dungeon = &domain.Dungeon{ID: 11}
	assert.Equal(t, int64(11), *BuildProgress(r, room(), 2).DungeonID)

	r.DungeonID = 12
	assert.Equal(t, int64(12), *BuildProgress(r, room(), 2).DungeonID)

	r.DungeonID, r.Dungeon = 0, nil
	assert.Nil(t, BuildProgress(r, nil, 2).DungeonID)
}

func TestBuildProgressOmitsNonNumericID(t *testing.T) {
	r := decodeResult(t)
	r.ID = "local-3f2a"
	p := BuildProgress(r, room(), 2)
	assert.Nil(t, p.CombatResultID)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "combatResultId")
}

func TestBuildProgressItemFallback(t *testing.T) {
	r := decodeResult(t)
	r.Rewards.PerUser = nil

	// two members and no per-user rewards: nothing is attributed
	assert.Empty(t, BuildProgress(r, room(), 2).CollectedItems)

	// a solo roster takes the aggregate list
	r.TeamStats.Members = r.TeamStats.Members[1:]
	assert.Equal(t, []domain.ItemQuantity{{ItemID: 9, Quantity: 3}}, BuildProgress(r, room(), 2).CollectedItems)

	// a user missing from the roster gets nothing from per-user rewards
	r = decodeResult(t)
	assert.Empty(t, BuildProgress(r, room(), 99).CollectedItems)
}

func TestBuildProgressNil(t *testing.T) {
	p := BuildProgress(nil, nil, 1)
	assert.NotNil(t, p.EnemiesDefeated)
	assert.Empty(t, p.EnemiesDefeated)
}

func TestSocketAndRESTDeliveriesMatch(t *testing.T) {
	fromSocket := decodeResult(t)

	var resp client.StartCombatResponse
	require.NoError(t, json.Unmarshal([]byte(`{"combatResult":`+resultJSON+`}`), &resp))
	fromREST := resp.CombatResult
	require.NotNil(t, fromREST)

	assert.Equal(t, Summarize(fromSocket, 2), Summarize(fromREST, 2))
	assert.Equal(t, BuildProgress(fromSocket, room(), 2), BuildProgress(fromREST, room(), 2))
}

func TestSummarize(t *testing.T) {
	s := Summarize(decodeResult(t), 2)
	assert.Equal(t, "Victory", s.Title)
	assert.Equal(t, 3, s.Defeated)
	assert.Equal(t, 4, s.Enemies)
	assert.Equal(t, 150, s.Gold)
	assert.Equal(t, 45, s.Experience)
	assert.Len(t, s.Log, 1)
}

type stubHost struct {
	mu       sync.Mutex
	locks    int
	resets   int
	resetErr error
}

func (h *stubHost) LockStart() {
	h.mu.Lock()
	h.locks++
	h.mu.Unlock()
}

func (h *stubHost) ResetRoom(ctx context.Context) error {
	h.mu.Lock()
	h.resets++
	h.mu.Unlock()
	return h.resetErr
}

type stubReporter struct {
	mu   sync.Mutex
	sent []domain.CombatProgress
	err  error
}

func (s *stubReporter) ReportCombatProgress(ctx context.Context, p domain.CombatProgress) error {
	s.mu.Lock()
	s.sent = append(s.sent, p)
	s.mu.Unlock()
	return s.err
}

func newReconciler(store *roomstate.Store, host *stubHost, rep *stubReporter, log *zap.Logger) *Reconciler {
	return New(Options{RoomID: 7, UserID: 2, Store: store, Host: host, Reporter: rep, Logger: log})
}

func TestShowLastOneWins(t *testing.T) {
	host, rep := &stubHost{}, &stubReporter{}
	r := newReconciler(roomstate.NewStore(), host, rep, nil)

	first := decodeResult(t)
	second := decodeResult(t)
	second.ID = "813"

	assert.True(t, r.Show(first, domain.SourceSocket))
	assert.True(t, r.Show(second, domain.SourceREST))
	r.Wait()

	cur, src := r.Current()
	assert.Same(t, second, cur)
	assert.Equal(t, domain.SourceREST, src)
	assert.Equal(t, 2, host.locks)
	assert.Len(t, rep.sent, 2)
}

func TestShowIgnoresDuplicates(t *testing.T) {
	rep := &stubReporter{}
	r := newReconciler(roomstate.NewStore(), &stubHost{}, rep, nil)

	assert.True(t, r.Show(decodeResult(t), domain.SourceSocket))
	assert.False(t, r.Show(decodeResult(t), domain.SourceREST))
	r.Wait()
	assert.Len(t, rep.sent, 1, "one report per result")
}

func TestClosedResultDoesNotReplay(t *testing.T) {
	store := roomstate.NewStore()
	r := newReconciler(store, &stubHost{}, &stubReporter{}, nil)

	res := decodeResult(t)
	store.SetCombat(res)
	r.Show(res, domain.SourceSocket)
	require.NoError(t, r.Close(context.Background(), false))
	assert.Nil(t, store.Combat())

	assert.False(t, r.Show(decodeResult(t), domain.SourceSocket))
	assert.False(t, r.Open())
}

func TestCloseKeepsAnotherRoomsResult(t *testing.T) {
	store := roomstate.NewStore()
	r := newReconciler(store, &stubHost{}, &stubReporter{}, nil)

	r.Show(decodeResult(t), domain.SourceSocket)
	other := &domain.CombatResult{ID: "900", RoomID: 8}
	store.SetCombat(other)

	require.NoError(t, r.Close(context.Background(), false))
	assert.Same(t, other, store.Combat())
}

func TestCloseIsIdempotent(t *testing.T) {
	store := roomstate.NewStore()
	host := &stubHost{}
	r := newReconciler(store, host, &stubReporter{}, nil)

	store.SetCombat(decodeResult(t))
	r.Show(store.Combat(), domain.SourceSocket)

	require.NoError(t, r.Close(context.Background(), true))
	require.NoError(t, r.Close(context.Background(), true))
	assert.False(t, r.Open())
	assert.Nil(t, store.Combat())
	assert.Equal(t, 1, host.resets, "only the first close resets the room")
}

func TestNonHostCloseDoesNotReset(t *testing.T) {
	host := &stubHost{}
	r := newReconciler(roomstate.NewStore(), host, &stubReporter{}, nil)
	r.Show(decodeResult(t), domain.SourceSocket)

	require.NoError(t, r.Close(context.Background(), false))
	assert.Equal(t, 0, host.resets)
}

func TestCloseSurfacesResetError(t *testing.T) {
	host := &stubHost{resetErr: domain.ErrNotHost}
	r := newReconciler(roomstate.NewStore(), host, &stubReporter{}, nil)
	r.Show(decodeResult(t), domain.SourceSocket)

	err := r.Close(context.Background(), true)
	assert.ErrorIs(t, err, domain.ErrNotHost)
	assert.False(t, r.Open())
}

func TestReportFailureIsLoggedOnly(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rep := &stubReporter{err: errors.New("quest service down")}
	r := newReconciler(roomstate.NewStore(), &stubHost{}, rep, zap.New(core))

	assert.True(t, r.Show(decodeResult(t), domain.SourceSocket))
	r.Wait()

	assert.True(t, r.Open())
	warns := logs.FilterMessage("quest progress report failed").All()
	require.Len(t, warns, 1)
	assert.Equal(t, zapcore.WarnLevel, warns[0].Level)
}

func TestReportUsesRoomDungeon(t *testing.T) {
	store := roomstate.NewStore()
	store.SetREST(roomstate.RESTSlot{RoomID: 7, Room: room()})
	rep := &stubReporter{}
	r := newReconciler(store, &stubHost{}, rep, nil)

	r.Show(decodeResult(t), domain.SourceSocket)
	r.Wait()
	require.Len(t, rep.sent, 1)
	require.NotNil(t, rep.sent[0].DungeonID)
	assert.Equal(t, int64(3), *rep.sent[0].DungeonID)
}
