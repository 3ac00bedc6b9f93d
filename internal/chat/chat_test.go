package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/arena/pkg/domain"
)

type mockSession struct {
	joined  bool
	joinErr error
	joins   int
	sendErr error
	sent    []string
	sentIDs []string
}

func (m *mockSession) Joined() bool { return m.joined }

func (m *mockSession) JoinRoom(ctx context.Context, password string) error {
	m.joins++
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = true
	return nil
}

func (m *mockSession) SendChat(ctx context.Context, id, message string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, message)
	m.sentIDs = append(m.sentIDs, id)
	return nil
}

func TestSendJoinsFirst(t *testing.T) {
	s := &mockSession{}
	c := New(s, 7, 2, "p2")

	require.NoError(t, c.Send(context.Background(), "  hello  "))
	assert.Equal(t, 1, s.joins)
	assert.Equal(t, []string{"hello"}, s.sent)
	require.Len(t, c.Messages(), 1)
	assert.Equal(t, "p2", c.Messages()[0].Username)
}

func TestSendAbortsWhenJoinFails(t *testing.T) {
	s := &mockSession{joinErr: domain.ErrWrongPassword}
	c := New(s, 7, 2, "p2")

	err := c.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrWrongPassword)
	assert.Empty(t, s.sent, "no chat emit without a join")
	assert.Empty(t, c.Messages())
}

func TestSendSkipsJoinWhenJoined(t *testing.T) {
	s := &mockSession{joined: true}
	c := New(s, 7, 2, "p2")

	require.NoError(t, c.Send(context.Background(), "hi"))
	assert.Equal(t, 0, s.joins)
}

func TestSendRejectsBlank(t *testing.T) {
	s := &mockSession{}
	c := New(s, 7, 2, "p2")

	assert.ErrorIs(t, c.Send(context.Background(), "   "), ErrEmpty)
	assert.Equal(t, 0, s.joins)
}

func TestSendFailureNotLogged(t *testing.T) {
	s := &mockSession{joined: true, sendErr: errors.New("socket closed")}
	c := New(s, 7, 2, "p2")

	assert.Error(t, c.Send(context.Background(), "hi"))
	assert.Empty(t, c.Messages())
}

func TestEchoIsDeduplicated(t *testing.T) {
	s := &mockSession{joined: true}
	c := New(s, 7, 2, "p2")
	require.NoError(t, c.Send(context.Background(), "hi"))

	echo := domain.ChatMessage{ID: s.sentIDs[0], RoomID: 7, UserID: 2, Message: "hi"}
	assert.False(t, c.Receive(echo))
	assert.Len(t, c.Messages(), 1)
}

func TestReceiveBounded(t *testing.T) {
	c := New(&mockSession{}, 7, 2, "p2")
	for i := 0; i < MaxMessages+25; i++ {
		c.Receive(domain.ChatMessage{ID: fmt.Sprintf("m%d", i), Message: "x"})
	}
	msgs := c.Messages()
	require.Len(t, msgs, MaxMessages)
	assert.Equal(t, "m25", msgs[0].ID)
	assert.Equal(t, fmt.Sprintf("m%d", MaxMessages+24), msgs[len(msgs)-1].ID)
}

func TestReceiveAssignsMissingID(t *testing.T) {
	c := New(&mockSession{}, 7, 2, "p2")
	assert.True(t, c.Receive(domain.ChatMessage{Message: "a"}))
	assert.True(t, c.Receive(domain.ChatMessage{Message: "a"}))
	assert.Len(t, c.Messages(), 2)
}

func TestFollow(t *testing.T) {
	f := NewFollow()
	assert.True(t, f.Following())

	f.Appended(3)
	assert.Equal(t, 0, f.Offset(), "pinned while following")

	f.Scroll(10, 50)
	assert.False(t, f.Following())
	f.Appended(3)
	assert.Equal(t, 13, f.Offset(), "view stays put after scrolling away")

	f.Scroll(-12, 50)
	assert.True(t, f.Following(), "within the threshold counts as bottom")
	f.Appended(1)
	assert.Equal(t, 0, f.Offset())

	f.Scroll(100, 20)
	assert.Equal(t, 20, f.Offset())
	f.Scroll(-100, 20)
	assert.Equal(t, 0, f.Offset())
}

func TestSendThrottlesBursts(t *testing.T) {
	s := &mockSession{joined: true}
	c := New(s, 7, 2, "p2")

	for i := 0; i < sendBurst; i++ {
		require.NoError(t, c.Send(context.Background(), fmt.Sprintf("msg %d", i)))
	}
	assert.ErrorIs(t, c.Send(context.Background(), "one more"), ErrThrottled)
	assert.Len(t, s.sent, sendBurst)
}

func TestFailedJoinKeepsSendBudget(t *testing.T) {
	s := &mockSession{joinErr: errors.New("socket closed")}
	c := New(s, 7, 2, "p2")

	for i := 0; i <= sendBurst; i++ {
		err := c.Send(context.Background(), "hi")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrThrottled)
	}

	s.joinErr = nil
	require.NoError(t, c.Send(context.Background(), "hi"))
	assert.Equal(t, []string{"hi"}, s.sent)
}

func TestThrottleErrorIsWrapped(t *testing.T) {
	s := &mockSession{joined: true}
	c := New(s, 7, 2, "p2")
	for i := 0; i < sendBurst; i++ {
		require.NoError(t, c.Send(context.Background(), "x"))
	}

	err := c.Send(context.Background(), "x")
	require.ErrorIs(t, err, ErrThrottled)
	assert.Equal(t, "chat.Send: "+ErrThrottled.Error(), err.Error())
}
