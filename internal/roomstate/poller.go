package roomstate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/naveenspark/arena/pkg/domain"
)

// DefaultPollInterval is how often the REST snapshot is refreshed.
const DefaultPollInterval = 2 * time.Second

// RoomFetcher is the slice of the REST client the poller needs.
type RoomFetcher interface {
	GetRoom(ctx context.Context, roomID int64) (*domain.RoomSnapshot, error)
	GetRoomByHost(ctx context.Context, userID int64) (*domain.RoomSnapshot, error)
}

// Poller keeps the store's REST slot fresh for one room.
type Poller struct {
	fetcher  RoomFetcher
	store    *Store
	roomID   int64
	userID   int64
	interval time.Duration
	log      *zap.Logger
	kick     chan struct{}
	now      func() time.Time
}

// NewPoller builds a poller for roomID on behalf of userID. userID may be 0,
// in which case the by-host fallback is skipped.
func NewPoller(fetcher RoomFetcher, store *Store, roomID, userID int64, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		fetcher:  fetcher,
		store:    store,
		roomID:   roomID,
		userID:   userID,
		interval: interval,
		log:      log.Named("poller"),
		kick:     make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Invalidate asks for an immediate refetch. It never blocks.
func (p *Poller) Invalidate() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Fetch(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-p.kick:
			ticker.Reset(p.interval)
		}
		p.Fetch(ctx)
	}
}

// Fetch performs one poll and stores the outcome.
func (p *Poller) Fetch(ctx context.Context) {
	room, err := p.fetcher.GetRoom(ctx, p.roomID)
	if err != nil && ctx.Err() != nil {
		return
	}
	if err != nil && p.userID != 0 {
		if hosted, herr := p.fetcher.GetRoomByHost(ctx, p.userID); herr == nil && hosted != nil && hosted.ID == p.roomID {
			p.log.Debug("room resolved by host lookup", zap.Int64("room_id", p.roomID))
			room, err = hosted, nil
		}
	}

	if ctx.Err() != nil {
		return
	}

	slot := RESTSlot{RoomID: p.roomID, FetchedAt: p.now()}
	if err != nil {
		p.log.Debug("room poll failed", zap.Int64("room_id", p.roomID), zap.Error(err))
		slot.Err = err
		if prev := p.store.REST(); prev.RoomID == p.roomID {
			slot.Room = prev.Room
		}
	} else {
		slot.Room = room
	}
	p.store.SetREST(slot)
}
