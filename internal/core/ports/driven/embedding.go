package driven

import "context"

// EmbeddingService generates vector embeddings from text. The index
// build batches chunk texts through EmbedBatch; retrieval embeds the
// query through Embed. Dimensionality is fixed across all calls for a
// given index build.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call,
	// returned in the same order as the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request. Used at startup so credential problems are fatal
	// before any user-facing work begins.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
