package driving

import (
	"context"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// AskService answers one-shot questions without the tip gate. Local
// surfaces such as the CLI and the MCP server use it directly; public
// transports go through BotService instead.
type AskService interface {
	// Answer retrieves context and generates a validated answer.
	Answer(ctx context.Context, question string) (domain.Answer, error)
}
