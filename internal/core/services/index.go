package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/quaestor/internal/chunker"
	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/ports/driving"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// Ensure KnowledgeIndex implements the interface.
var _ driving.KnowledgeService = (*KnowledgeIndex)(nil)

// DefaultBatchSize bounds the number of texts per embedding call.
const DefaultBatchSize = 100

// KnowledgeIndex orchestrates chunking, embedding generation with
// durable caching, and cosine-similarity retrieval. Build assembles
// the chunk set off to the side and swaps it in wholesale under a
// lock, so a background rebuild (the corpus watcher) can run while
// retrievals are in flight: each Retrieve sees either the old index
// or the new one, never a partial state.
type KnowledgeIndex struct {
	chunker   *chunker.Chunker
	embedder  driven.EmbeddingService
	cache     driven.IndexCacheStore
	batchSize int

	mu          sync.RWMutex
	chunks      []domain.EmbeddedChunk
	fingerprint string
}

// IndexOption configures the knowledge index.
type IndexOption func(*KnowledgeIndex)

// WithBatchSize sets the embedding batch size bound.
func WithBatchSize(n int) IndexOption {
	return func(k *KnowledgeIndex) {
		if n > 0 {
			k.batchSize = n
		}
	}
}

// NewKnowledgeIndex creates an index. The cache store is optional
// (nil disables persistence); the embedder is required for building
// on a cache miss and for every query.
func NewKnowledgeIndex(ch *chunker.Chunker, embedder driven.EmbeddingService, cache driven.IndexCacheStore, opts ...IndexOption) *KnowledgeIndex {
	k := &KnowledgeIndex{
		chunker:   ch,
		embedder:  embedder,
		cache:     cache,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Build computes the corpus fingerprint, restores the cached embedding
// set when the fingerprint matches, and otherwise chunks every source
// and generates embeddings in bounded batches. Cache persistence
// failures are logged, never fatal: the in-memory index stays usable
// for the current process lifetime.
func (k *KnowledgeIndex) Build(ctx context.Context, sources []domain.Source) error {
	logger.Section("Index Build")

	fingerprint := domain.Fingerprint(sources)
	logger.Debug("Corpus fingerprint: %s", fingerprint)

	if k.cache != nil {
		cached, err := k.cache.Load(ctx, fingerprint)
		if err == nil {
			k.swap(cached, fingerprint)
			logger.Info("Cache hit: restored %d chunks, skipping embedding generation", len(cached))
			return nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Warn("Cache load failed: %v (rebuilding)", err)
		} else {
			logger.Debug("Cache miss, rebuilding")
		}
	}

	if k.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	var chunks []domain.Chunk
	for _, src := range sources {
		chunks = append(chunks, k.chunker.Chunk(src.Text, src.ID)...)
	}
	logger.Debug("Chunked %d sources into %d chunks", len(sources), len(chunks))

	embedded := make([]domain.EmbeddedChunk, 0, len(chunks))
	for start := 0; start < len(chunks); start += k.batchSize {
		end := start + k.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := k.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embed batch %d-%d: got %d vectors for %d texts", start, end, len(vectors), len(batch))
		}

		for i, c := range batch {
			embedded = append(embedded, domain.EmbeddedChunk{Chunk: c, Embedding: vectors[i]})
		}
		logger.Debug("Embedded batch %d-%d", start, end)
	}

	k.swap(embedded, fingerprint)

	if k.cache != nil {
		if err := k.cache.Save(ctx, fingerprint, embedded); err != nil {
			logger.Warn("Cache save failed: %v (index remains usable in memory)", err)
		}
	}

	logger.Info("Index built: %d chunks", len(embedded))
	return nil
}

// Retrieve embeds the query once and ranks every indexed chunk by
// cosine similarity, highest first. Ties keep original corpus order.
// An empty index returns an empty result, never an error.
func (k *KnowledgeIndex) Retrieve(ctx context.Context, query string, topK int) ([]domain.EmbeddedChunk, error) {
	chunks := k.snapshot()
	if len(chunks) == 0 {
		return []domain.EmbeddedChunk{}, nil
	}
	if k.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if topK <= 0 {
		return []domain.EmbeddedChunk{}, nil
	}

	queryVec, err := k.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored := make([]domain.EmbeddedChunk, len(chunks))
	for i, c := range chunks {
		c.Similarity = cosineSimilarity(queryVec, c.Embedding)
		scored[i] = c
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Size returns the number of indexed chunks.
func (k *KnowledgeIndex) Size() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.chunks)
}

// Fingerprint returns the fingerprint of the indexed corpus, empty
// before the first Build.
func (k *KnowledgeIndex) Fingerprint() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.fingerprint
}

// swap publishes a freshly built chunk set. Build never mutates a
// published slice in place, so readers holding the old snapshot stay
// consistent.
func (k *KnowledgeIndex) swap(chunks []domain.EmbeddedChunk, fingerprint string) {
	k.mu.Lock()
	k.chunks = chunks
	k.fingerprint = fingerprint
	k.mu.Unlock()
}

// snapshot returns the current chunk set for a single retrieval.
func (k *KnowledgeIndex) snapshot() []domain.EmbeddedChunk {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.chunks
}

// cosineSimilarity computes the dot product divided by the product of
// Euclidean norms. A zero-norm vector yields similarity 0 rather than
// a division-by-zero fault.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
