package domain

import "errors"

var (
	ErrAuthRequired      = errors.New("login required")
	ErrWrongPassword     = errors.New("wrong room password")
	ErrNotHost           = errors.New("only the host can do that")
	ErrCapacity          = errors.New("room is full")
	ErrNotReady          = errors.New("not all players are ready")
	ErrSocketUnavailable = errors.New("room connection unavailable")
	ErrStale             = errors.New("event for another room")
	ErrStartLocked       = errors.New("combat start locked until the room is reset")
	ErrRoomNotFound      = errors.New("room not found")
)

// Server error codes shared by REST error bodies and socket acks.
const (
	CodeAuthRequired  = "AUTH_REQUIRED"
	CodeWrongPassword = "WRONG_PASSWORD"
	CodeNotHost       = "NOT_HOST"
	CodeRoomFull      = "ROOM_FULL"
	CodeNotReady      = "NOT_READY"
	CodeRoomNotFound  = "ROOM_NOT_FOUND"
)

var codeErrors = map[string]error{
	CodeAuthRequired:  ErrAuthRequired,
	CodeWrongPassword: ErrWrongPassword,
	CodeNotHost:       ErrNotHost,
	CodeRoomFull:      ErrCapacity,
	CodeNotReady:      ErrNotReady,
	CodeRoomNotFound:  ErrRoomNotFound,
}

// ErrorForCode maps a server error code to its sentinel, or nil.
func ErrorForCode(code string) error {
	return codeErrors[code]
}

// IsRejection reports whether err is a definitive server-side refusal.
// Rejections are never retried through a REST fallback.
func IsRejection(err error) bool {
	for _, target := range codeErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
