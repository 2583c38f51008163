package driving

import (
	"context"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// KnowledgeService builds and queries the semantic index over the
// corpus. The index is built once (or rebuilt wholesale when the
// corpus changes) and is read-only during retrieval.
type KnowledgeService interface {
	// Build chunks the sources, generates or restores embeddings, and
	// makes the index queryable. A valid cache for the corpus
	// fingerprint skips embedding generation entirely.
	Build(ctx context.Context, sources []domain.Source) error

	// Retrieve returns up to k chunks ordered by descending cosine
	// similarity to the query. An empty index yields an empty result,
	// never an error.
	Retrieve(ctx context.Context, query string, k int) ([]domain.EmbeddedChunk, error)

	// Size returns the number of indexed chunks.
	Size() int
}
