// Package chat is the in-memory chat of one room. Nothing is persisted and a
// message is displayed at most once.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/naveenspark/arena/pkg/domain"
)

// MaxMessages is how many of the most recent messages are kept.
const MaxMessages = 200

// Outgoing messages are throttled to sendBurst at once, refilling one per
// sendEvery.
const (
	sendBurst = 5
	sendEvery = 600 * time.Millisecond
)

var (
	// ErrEmpty is returned for blank messages.
	ErrEmpty = errors.New("message is empty")

	// ErrThrottled is returned when messages are sent faster than the room allows.
	ErrThrottled = errors.New("slow down, you are sending too fast")
)

// Session is what the channel needs from the room session.
type Session interface {
	Joined() bool
	JoinRoom(ctx context.Context, password string) error
	SendChat(ctx context.Context, id, message string) error
}

// Channel holds one room's chat log.
type Channel struct {
	session  Session
	roomID   int64
	userID   int64
	username string

	mu   sync.Mutex
	log  []domain.ChatMessage
	seen map[string]struct{}

	limiter *rate.Limiter

	now   func() time.Time
	newID func() string
}

func New(session Session, roomID, userID int64, username string) *Channel {
	return &Channel{
		session:  session,
		roomID:   roomID,
		userID:   userID,
		username: username,
		seen:     make(map[string]struct{}),
		limiter:  rate.NewLimiter(rate.Every(sendEvery), sendBurst),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Send posts body to the room. When the session isn't joined yet it joins
// first, and nothing is sent if that join fails.
func (c *Channel) Send(ctx context.Context, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return fmt.Errorf("chat.Send: %w", ErrEmpty)
	}
	if !c.session.Joined() {
		if err := c.session.JoinRoom(ctx, ""); err != nil {
			return fmt.Errorf("chat.Send: join room: %w", err)
		}
	}
	if !c.limiter.Allow() {
		return fmt.Errorf("chat.Send: %w", ErrThrottled)
	}

	id := c.newID()
	if err := c.session.SendChat(ctx, id, body); err != nil {
		return fmt.Errorf("chat.Send: %w", err)
	}
	c.Receive(domain.ChatMessage{
		ID:       id,
		RoomID:   c.roomID,
		UserID:   c.userID,
		Username: c.username,
		Message:  body,
		SentAt:   c.now(),
	})
	return nil
}

// Receive appends msg unless a message with the same id was already shown.
// It reports whether msg was added.
func (c *Channel) Receive(msg domain.ChatMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg.ID == "" {
		msg.ID = c.newID()
	}
	if _, dup := c.seen[msg.ID]; dup {
		return false
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = c.now()
	}
	c.seen[msg.ID] = struct{}{}
	c.log = append(c.log, msg)
	if over := len(c.log) - MaxMessages; over > 0 {
		c.log = append([]domain.ChatMessage(nil), c.log[over:]...)
	}
	return true
}

// Messages returns a copy of the log, oldest first.
func (c *Channel) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, len(c.log))
	copy(out, c.log)
	return out
}
