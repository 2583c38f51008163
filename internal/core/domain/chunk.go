package domain

// Chunk is an immutable unit of retrievable corpus text.
// Chunks are created once per corpus build and replaced wholesale
// when the corpus fingerprint changes; they are never mutated.
type Chunk struct {
	// ID is stable across rebuilds of identical input. It is derived
	// from the source ID, a slug of the section title, and a numeric
	// suffix for multi-part sections.
	ID string

	// Source identifies the corpus document this chunk came from.
	Source string

	// Section is the human-readable heading the chunk belongs to.
	Section string

	// Content is the chunk text, bounded by the chunker's maximum
	// length except for a single paragraph that alone exceeds it.
	Content string

	// Keywords are informational tags extracted from the content.
	// They are a deduplicated set with no ordering guarantee and are
	// not used for similarity scoring.
	Keywords []string
}

// EmbeddedChunk is a Chunk plus its fixed-dimension embedding vector.
// The vector is produced exactly once per chunk per corpus fingerprint
// and reused across all queries until the cache is invalidated.
type EmbeddedChunk struct {
	Chunk

	// Embedding is the vector representation of Content.
	Embedding []float32

	// Similarity is the cosine similarity against the current query.
	// It is transient: populated during retrieval, meaningless otherwise.
	Similarity float64
}
