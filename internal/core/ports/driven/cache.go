package driven

import (
	"context"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// IndexCacheStore persists the embedded-chunk set keyed by a corpus
// fingerprint. One serialized blob holds the fingerprint, a version
// tag, the full chunk set, and a creation timestamp; it must
// round-trip losslessly.
type IndexCacheStore interface {
	// Load returns the cached chunks if the stored fingerprint equals
	// the given one. Absent, corrupt, or mismatched caches return
	// domain.ErrCacheMiss.
	Load(ctx context.Context, fingerprint string) ([]domain.EmbeddedChunk, error)

	// Save replaces the cache with the given chunk set and
	// fingerprint. Save failures must not fail the build; callers log
	// and continue with the in-memory index.
	Save(ctx context.Context, fingerprint string, chunks []domain.EmbeddedChunk) error
}
