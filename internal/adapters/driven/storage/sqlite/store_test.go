package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() }) //nolint:errcheck
	return store
}

func TestStore_AppendAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entries := []domain.ThreadEntry{
		{ThreadID: "t1", ChannelID: "c1", UserID: "alice", Role: domain.RoleUser, Text: "how do I pay?"},
		{ThreadID: "t1", ChannelID: "c1", Role: domain.RoleBot, Text: "send a tip"},
		{ThreadID: "t1", ChannelID: "c1", UserID: "alice", Role: domain.RoleUser, Text: "done"},
	}
	for _, e := range entries {
		require.NoError(t, store.Append(ctx, e))
	}

	listed, err := store.List(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, listed, 3)

	// Insertion order preserved
	assert.Equal(t, "how do I pay?", listed[0].Text)
	assert.Equal(t, "send a tip", listed[1].Text)
	assert.Equal(t, "done", listed[2].Text)

	// IDs and timestamps assigned
	for _, e := range listed {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
	}
	assert.Equal(t, domain.RoleBot, listed[1].Role)
	assert.Empty(t, listed[1].UserID)
}

func TestStore_List_IsolatesThreads(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.ThreadEntry{ThreadID: "t1", ChannelID: "c", Role: domain.RoleUser, Text: "a"}))
	require.NoError(t, store.Append(ctx, domain.ThreadEntry{ThreadID: "t2", ChannelID: "c", Role: domain.RoleUser, Text: "b"}))

	listed, err := store.List(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Equal(t, "a", listed[0].Text)
}

func TestStore_List_EmptyThread(t *testing.T) {
	store := newTestStore(t)

	listed, err := store.List(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestStore_Append_KeepsProvidedID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := domain.ThreadEntry{
		ID:        "fixed-id",
		ThreadID:  "t1",
		ChannelID: "c1",
		Role:      domain.RoleUser,
		Text:      "hello",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.Append(ctx, entry))

	listed, err := store.List(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "fixed-id", listed[0].ID)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), domain.ThreadEntry{ThreadID: "t1", ChannelID: "c", Role: domain.RoleUser, Text: "persisted"}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close() //nolint:errcheck

	listed, err := reopened.List(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "persisted", listed[0].Text)
}
