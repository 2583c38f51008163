package driven

import (
	"context"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// ThreadLogStore is a simple append-only message log keyed by thread
// id. The orchestrator records every inbound and outbound message;
// nothing is ever updated or deleted.
type ThreadLogStore interface {
	// Append adds an entry to the log, assigning an ID when empty.
	Append(ctx context.Context, entry domain.ThreadEntry) error

	// List returns all entries for a thread in insertion order.
	List(ctx context.Context, threadID string) ([]domain.ThreadEntry, error)

	// Close releases resources.
	Close() error
}
