package driven

import (
	"context"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// AnswerService produces an answer payload from retrieved context.
// The payload is raw text; the core parses it strictly against the
// answer schema (domain.ParseAnswer) and treats any deviation or the
// fallback sentinel as a failed attempt.
type AnswerService interface {
	// Generate produces an answer payload for the question given the
	// retrieved chunks. systemContext sets the assistant's framing.
	Generate(ctx context.Context, systemContext string, chunks []domain.EmbeddedChunk, question string) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
