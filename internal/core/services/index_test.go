package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quaestor/internal/chunker"
	"github.com/custodia-labs/quaestor/internal/core/domain"
)

func testSources() []domain.Source {
	return []domain.Source{
		{ID: "guide", Text: "## Setup\n\nInstall the binary.\n\n## Usage\n\nRun the index command.\n"},
	}
}

func TestKnowledgeIndex_Build(t *testing.T) {
	embedder := &mockEmbedder{}
	idx := NewKnowledgeIndex(chunker.New(), embedder, nil)

	err := idx.Build(context.Background(), testSources())
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Size())
	assert.NotEmpty(t, idx.Fingerprint())
	assert.Equal(t, 1, embedder.batchCalls)
}

func TestKnowledgeIndex_Build_CacheHitSkipsEmbedding(t *testing.T) {
	sources := testSources()
	embedder := &mockEmbedder{}
	cache := &mockCache{}

	// First build populates the cache.
	first := NewKnowledgeIndex(chunker.New(), embedder, cache)
	require.NoError(t, first.Build(context.Background(), sources))
	require.Equal(t, 1, cache.saveCalls)

	// Second build over the same corpus must not call the embedder.
	embedder2 := &mockEmbedder{}
	second := NewKnowledgeIndex(chunker.New(), embedder2, cache)
	require.NoError(t, second.Build(context.Background(), sources))

	assert.Equal(t, 0, embedder2.batchCalls)
	assert.Equal(t, first.Size(), second.Size())
}

func TestKnowledgeIndex_Build_ChangedCorpusInvalidatesCache(t *testing.T) {
	embedder := &mockEmbedder{}
	cache := &mockCache{}
	idx := NewKnowledgeIndex(chunker.New(), embedder, cache)

	require.NoError(t, idx.Build(context.Background(), testSources()))
	require.Equal(t, 1, embedder.batchCalls)

	changed := []domain.Source{{ID: "guide", Text: "## Setup\n\nDifferent content.\n"}}
	require.NoError(t, idx.Build(context.Background(), changed))

	// Fingerprint mismatch forces a fresh embedding pass.
	assert.Equal(t, 2, embedder.batchCalls)
}

func TestKnowledgeIndex_Build_CacheSaveFailureNotFatal(t *testing.T) {
	embedder := &mockEmbedder{}
	cache := &mockCache{saveErr: assert.AnError}
	idx := NewKnowledgeIndex(chunker.New(), embedder, cache)

	err := idx.Build(context.Background(), testSources())
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Size())
}

func TestKnowledgeIndex_Build_Batching(t *testing.T) {
	// Seven chunks with a batch bound of 3 means three embed calls.
	text := ""
	for _, s := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		text += "## " + s + "\n\ncontent " + s + "\n\n"
	}

	embedder := &mockEmbedder{}
	idx := NewKnowledgeIndex(chunker.New(), embedder, nil, WithBatchSize(3))

	require.NoError(t, idx.Build(context.Background(), []domain.Source{{ID: "doc", Text: text}}))
	assert.Equal(t, 7, idx.Size())
	assert.Equal(t, 3, embedder.batchCalls)
}

func TestKnowledgeIndex_Retrieve_OrdersBySimilarity(t *testing.T) {
	// Script embeddings so "north" content aligns with the query and
	// "east" content is orthogonal.
	embedder := &mockEmbedder{embedFn: func(text string) ([]float32, error) {
		switch {
		case text == "which way is north":
			return []float32{1, 0, 0}, nil
		case text == "north north north":
			return []float32{0.9, 0.1, 0}, nil
		default:
			return []float32{0, 1, 0}, nil
		}
	}}

	sources := []domain.Source{
		{ID: "doc", Text: "## East\n\neast content\n\n## North\n\nnorth north north\n"},
	}
	idx := NewKnowledgeIndex(chunker.New(), embedder, nil)
	require.NoError(t, idx.Build(context.Background(), sources))

	results, err := idx.Retrieve(context.Background(), "which way is north", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "North", results[0].Section)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestKnowledgeIndex_Retrieve_BoundsK(t *testing.T) {
	embedder := &mockEmbedder{}
	idx := NewKnowledgeIndex(chunker.New(), embedder, nil)
	require.NoError(t, idx.Build(context.Background(), testSources()))

	results, err := idx.Retrieve(context.Background(), "anything", 50)
	require.NoError(t, err)
	assert.Len(t, results, idx.Size())

	none, err := idx.Retrieve(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestKnowledgeIndex_ConcurrentBuildAndRetrieve(t *testing.T) {
	// A watcher-triggered rebuild runs on its own goroutine while the
	// chat session keeps retrieving. Every retrieval must see a
	// complete index, old or new, and the race detector must stay
	// quiet.
	embedder := &mockEmbedder{}
	idx := NewKnowledgeIndex(chunker.New(), embedder, nil)
	require.NoError(t, idx.Build(context.Background(), testSources()))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				results, err := idx.Retrieve(context.Background(), "anything", 2)
				assert.NoError(t, err)
				assert.Len(t, results, 2)
			}
		}()
	}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NoError(t, idx.Build(context.Background(), testSources()))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, idx.Size())
}

func TestKnowledgeIndex_Retrieve_EmptyIndex(t *testing.T) {
	idx := NewKnowledgeIndex(chunker.New(), &mockEmbedder{}, nil)

	results, err := idx.Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	// Zero-norm vectors yield similarity 0, not NaN.
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{0, 0}))
}
