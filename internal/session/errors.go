package session

import (
	"errors"

	"github.com/naveenspark/arena/pkg/client"
	"github.com/naveenspark/arena/pkg/domain"
	"github.com/naveenspark/arena/pkg/gateway"
)

var userFacing = []error{
	domain.ErrAuthRequired,
	domain.ErrWrongPassword,
	domain.ErrNotHost,
	domain.ErrCapacity,
	domain.ErrNotReady,
	domain.ErrRoomNotFound,
	domain.ErrStartLocked,
	domain.ErrSocketUnavailable,
}

// ErrorMessage picks the best text to show for a failed command: the
// server's own message when it sent one, else the matching domain error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var ack *gateway.AckError
	if errors.As(err, &ack) && ack.Message != "" {
		return ack.Message
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	for _, target := range userFacing {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
