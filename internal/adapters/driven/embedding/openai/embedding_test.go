package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*EmbeddingService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	svc, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return svc, server
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 1536, svc.Dimensions())
}

func TestEmbedBatch_Success(t *testing.T) {
	svc, server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"first", "second"}, req.Input)

		w.Write([]byte(`{"data": [` + //nolint:errcheck
			`{"embedding": [0.1, 0.2], "index": 0},` +
			`{"embedding": [0.3, 0.4], "index": 1}]}`))
	})
	defer server.Close()

	vecs, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vecs[0])
	assert.Equal(t, []float32{0.3, 0.4}, vecs[1])
}

func TestEmbedBatch_ReordersByIndex(t *testing.T) {
	svc, server := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		// Response arrives out of order; outputs must follow input order.
		w.Write([]byte(`{"data": [` + //nolint:errcheck
			`{"embedding": [0.3, 0.4], "index": 1},` +
			`{"embedding": [0.1, 0.2], "index": 0}]}`))
	})
	defer server.Close()

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vecs[0])
	assert.Equal(t, []float32{0.3, 0.4}, vecs[1])
}

func TestEmbedBatch_IndexOutOfRange(t *testing.T) {
	svc, server := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": [{"embedding": [0.1], "index": 5}]}`)) //nolint:errcheck
	})
	defer server.Close()

	_, err := svc.EmbedBatch(context.Background(), []string{"only"})
	assert.Error(t, err)
}

func TestEmbedBatch_APIError(t *testing.T) {
	svc, server := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key", "type": "auth"}}`)) //nolint:errcheck
	})
	defer server.Close()

	_, err := svc.EmbedBatch(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbed_Single(t *testing.T) {
	svc, server := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": [{"embedding": [0.7, 0.8], "index": 0}]}`)) //nolint:errcheck
	})
	defer server.Close()

	vec, err := svc.Embed(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.7, 0.8}, vec)
}
