package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCacheMiss indicates the embedding cache has no entry for the
	// current corpus fingerprint. The index falls back to a full
	// rebuild; a miss is never fatal.
	ErrCacheMiss = errors.New("embedding cache miss")

	// ErrMalformedAnswer indicates the generation payload did not
	// parse as the expected answer schema or carried the fallback
	// sentinel. The attempt is counted as failed and retried up to
	// the configured bound.
	ErrMalformedAnswer = errors.New("malformed answer payload")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. The index cannot be built without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the answer generation service
	// is not configured.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrIndexEmpty indicates retrieval was attempted before any
	// corpus was indexed.
	ErrIndexEmpty = errors.New("knowledge index is empty")
)
