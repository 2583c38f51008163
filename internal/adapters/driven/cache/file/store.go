// Package file provides the filesystem implementation of the
// embedding cache: one JSON blob holding the corpus fingerprint, a
// version tag, the full embedded-chunk set, and a creation timestamp.
// The blob schema is a bit-exact contract and must round-trip
// losslessly.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexCacheStore = (*Store)(nil)

// blobVersion is bumped when the blob schema changes; a version
// mismatch is treated as a cache miss.
const blobVersion = 1

// cacheFileName is the blob file within the cache directory.
const cacheFileName = "embeddings.json"

// cacheBlob is the persisted schema.
type cacheBlob struct {
	Version     int           `json:"version"`
	Fingerprint string        `json:"fingerprint"`
	CreatedAt   time.Time     `json:"created_at"`
	Chunks      []cachedChunk `json:"chunks"`
}

// cachedChunk is the persisted form of an embedded chunk. Similarity
// is transient query state and is deliberately not stored.
type cachedChunk struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Section   string    `json:"section"`
	Content   string    `json:"content"`
	Keywords  []string  `json:"keywords,omitempty"`
	Embedding []float32 `json:"embedding"`
}

// Store persists the embedding cache under a data directory.
type Store struct {
	path string
}

// NewStore creates a cache store. If dataDir is empty, defaults to
// ~/.quaestor/cache.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quaestor", "cache")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	return &Store{path: filepath.Join(dataDir, cacheFileName)}, nil
}

// Path returns the blob file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the cached chunks when the stored fingerprint matches.
// Absent, corrupt, version-mismatched, or fingerprint-mismatched blobs
// all return domain.ErrCacheMiss: a bad cache falls back to a full
// rebuild, never an error.
func (s *Store) Load(_ context.Context, fingerprint string) ([]domain.EmbeddedChunk, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrCacheMiss
		}
		logger.Warn("Cache read failed: %v", err)
		return nil, domain.ErrCacheMiss
	}

	var blob cacheBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		logger.Warn("Cache blob corrupt: %v", err)
		return nil, domain.ErrCacheMiss
	}

	if blob.Version != blobVersion {
		logger.Debug("Cache version %d != %d", blob.Version, blobVersion)
		return nil, domain.ErrCacheMiss
	}
	if blob.Fingerprint != fingerprint {
		logger.Debug("Cache fingerprint mismatch")
		return nil, domain.ErrCacheMiss
	}

	chunks := make([]domain.EmbeddedChunk, len(blob.Chunks))
	for i, c := range blob.Chunks {
		chunks[i] = domain.EmbeddedChunk{
			Chunk: domain.Chunk{
				ID:       c.ID,
				Source:   c.Source,
				Section:  c.Section,
				Content:  c.Content,
				Keywords: c.Keywords,
			},
			Embedding: c.Embedding,
		}
	}
	return chunks, nil
}

// Save replaces the blob atomically: write to a temp file in the same
// directory, then rename over the target.
func (s *Store) Save(_ context.Context, fingerprint string, chunks []domain.EmbeddedChunk) error {
	blob := cacheBlob{
		Version:     blobVersion,
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
		Chunks:      make([]cachedChunk, len(chunks)),
	}
	for i, c := range chunks {
		blob.Chunks[i] = cachedChunk{
			ID:        c.ID,
			Source:    c.Source,
			Section:   c.Section,
			Content:   c.Content,
			Keywords:  c.Keywords,
			Embedding: c.Embedding,
		}
	}

	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("marshal cache blob: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write cache blob: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace cache blob: %w", err)
	}
	return nil
}
