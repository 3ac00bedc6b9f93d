package gateway

import (
	"context"
	"fmt"

	"github.com/naveenspark/arena/pkg/domain"
)

// Offline stands in for a Client when the gateway could not be reached.
// Every command fails with domain.ErrSocketUnavailable and no events ever
// arrive, so callers run on their REST fallbacks.
type Offline struct{}

func (Offline) Emit(ctx context.Context, command string, payload any, reply any) error {
	return fmt.Errorf("gateway.Emit %s: %w", command, domain.ErrSocketUnavailable)
}

// Subscribe returns a nil channel, which never delivers.
func (Offline) Subscribe() (<-chan Event, func()) { return nil, func() {} }

func (Offline) Connected() bool { return false }
