package driving

import (
	"context"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// BotService handles the two inbound transport event kinds. The
// transport delivers events one at a time; handlers are safe for
// concurrent use but never reorder events themselves.
type BotService interface {
	// HandleMessage processes an incoming question or thread reply.
	HandleMessage(ctx context.Context, msg domain.Message) error

	// HandleTip processes an on-chain tip notification.
	HandleTip(ctx context.Context, tip domain.TipEvent) error
}
