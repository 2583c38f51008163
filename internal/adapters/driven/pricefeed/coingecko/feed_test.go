package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed(handler http.HandlerFunc) (*PriceFeed, *httptest.Server) {
	server := httptest.NewServer(handler)
	feed := NewPriceFeed(Config{BaseURL: server.URL})
	return feed, server
}

func TestFetchPrice_Success(t *testing.T) {
	feed, server := newTestFeed(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"ethereum": {"usd": 3120.55}}`)) //nolint:errcheck
	})
	defer server.Close()

	price, err := feed.FetchPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3120.55, price)
}

func TestFetchPrice_ServerError(t *testing.T) {
	feed, server := newTestFeed(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := feed.FetchPrice(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFetchPrice_MalformedBody(t *testing.T) {
	feed, server := newTestFeed(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json")) //nolint:errcheck
	})
	defer server.Close()

	_, err := feed.FetchPrice(context.Background())
	assert.Error(t, err)
}

func TestFetchPrice_MissingAsset(t *testing.T) {
	feed, server := newTestFeed(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"bitcoin": {"usd": 60000}}`)) //nolint:errcheck
	})
	defer server.Close()

	_, err := feed.FetchPrice(context.Background())
	assert.Error(t, err)
}

func TestFetchPrice_NonPositivePrice(t *testing.T) {
	feed, server := newTestFeed(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ethereum": {"usd": 0}}`)) //nolint:errcheck
	})
	defer server.Close()

	_, err := feed.FetchPrice(context.Background())
	assert.Error(t, err)
}
