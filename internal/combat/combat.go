// Package combat shows each finished combat exactly once, whichever channel
// delivered it, and reports quest progress for it in the background.
package combat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/naveenspark/arena/internal/roomstate"
	"github.com/naveenspark/arena/pkg/domain"
)

// DefaultReportTimeout bounds one quest progress post.
const DefaultReportTimeout = 10 * time.Second

// Host is the session surface the reconciler drives.
type Host interface {
	LockStart()
	ResetRoom(ctx context.Context) error
}

// ProgressReporter posts quest progress.
type ProgressReporter interface {
	ReportCombatProgress(ctx context.Context, p domain.CombatProgress) error
}

// Options configures a Reconciler.
type Options struct {
	RoomID        int64
	UserID        int64
	Store         *roomstate.Store
	Host          Host
	Reporter      ProgressReporter
	ReportTimeout time.Duration
	Logger        *zap.Logger
}

// Reconciler holds the combat result currently on screen.
type Reconciler struct {
	opts Options
	log  *zap.Logger

	mu      sync.Mutex
	current *domain.CombatResult
	source  domain.ResultSource
	seen    map[string]struct{}

	wg sync.WaitGroup
}

func New(opts Options) *Reconciler {
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = DefaultReportTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Reconciler{
		opts: opts,
		log:  opts.Logger.Named("combat").With(zap.Int64("room_id", opts.RoomID)),
		seen: make(map[string]struct{}),
	}
}

// Show puts result on screen, replacing any result already shown. A result
// that was shown before, including one already closed, is ignored. Showing a
// result locks the host's start and reports quest progress once.
func (r *Reconciler) Show(result *domain.CombatResult, source domain.ResultSource) bool {
	if result == nil {
		return false
	}
	key := result.Key()
	r.mu.Lock()
	if _, dup := r.seen[key]; dup {
		r.mu.Unlock()
		r.log.Debug("ignoring replayed combat result", zap.String("key", key), zap.String("source", string(source)))
		return false
	}
	r.seen[key] = struct{}{}
	r.current, r.source = result, source
	r.mu.Unlock()

	if r.opts.Host != nil {
		r.opts.Host.LockStart()
	}
	r.report(result)
	return true
}

// Current is the result on screen, or nil.
func (r *Reconciler) Current() (*domain.CombatResult, domain.ResultSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.source
}

// Open reports whether a result is on screen.
func (r *Reconciler) Open() bool {
	res, _ := r.Current()
	return res != nil
}

// Close dismisses the result and clears the store's slot so it can't be
// replayed. When the host closes, the room is reset for the next fight.
// Closing with nothing on screen does nothing.
func (r *Reconciler) Close(ctx context.Context, isHost bool) error {
	r.mu.Lock()
	res := r.current
	r.current, r.source = nil, ""
	r.mu.Unlock()
	if res == nil {
		return nil
	}

	if r.opts.Store != nil {
		r.opts.Store.ClearCombat(r.opts.RoomID)
	}
	if isHost && r.opts.Host != nil {
		if err := r.opts.Host.ResetRoom(ctx); err != nil {
			return fmt.Errorf("combat.Close: %w", err)
		}
	}
	return nil
}

// Wait blocks until in-flight progress reports finish.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

func (r *Reconciler) report(result *domain.CombatResult) {
	if r.opts.Reporter == nil {
		return
	}
	var room *domain.RoomSnapshot
	if r.opts.Store != nil {
		room = r.opts.Store.View(r.opts.RoomID).Room
	}
	progress := BuildProgress(result, room, r.opts.UserID)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.opts.ReportTimeout)
		defer cancel()
		if err := r.opts.Reporter.ReportCombatProgress(ctx, progress); err != nil {
			r.log.Warn("quest progress report failed", zap.String("key", result.Key()), zap.Error(err))
			return
		}
		r.log.Debug("quest progress reported", zap.String("key", result.Key()))
	}()
}
