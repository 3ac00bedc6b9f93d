package gateway

import (
	"sync"

	"go.uber.org/zap"
)

// subscriberQueue is how many events a subscriber may fall behind before
// further events to it are dropped.
const subscriberQueue = 64

// Fanout hands every published event to each current subscriber. Events
// published while nobody is subscribed are discarded, so a subscriber only
// ever sees events that arrived after it subscribed.
type Fanout struct {
	log *zap.Logger

	mu     sync.Mutex
	subs   map[int]chan Event
	next   int
	closed bool
}

// NewFanout returns an empty fan-out. A nil logger is replaced by a nop.
func NewFanout(log *zap.Logger) *Fanout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fanout{log: log, subs: make(map[int]chan Event)}
}

// Subscribe registers a new receiver. The channel is closed by the returned
// cancel func or when the fan-out closes, whichever comes first.
func (f *Fanout) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberQueue)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.next
	f.next++
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if sub, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(sub)
			}
		})
	}
}

// Publish never blocks. A subscriber whose queue is full misses ev.
func (f *Fanout) Publish(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subs {
		select {
		case ch <- ev:
		default:
			f.log.Warn("subscriber queue full, dropping event",
				zap.String("event", ev.Name), zap.Int("subscriber", id))
		}
	}
}

// Close closes every subscriber channel. Later subscribers get a closed
// channel.
func (f *Fanout) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
