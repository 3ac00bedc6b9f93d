package domain

import "time"

// ChatMessage is a room chat line. Chat is never persisted.
type ChatMessage struct {
	ID       string    `json:"id"`
	RoomID   int64     `json:"roomId"`
	UserID   int64     `json:"userId"`
	Username string    `json:"username"`
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sentAt"`
}
