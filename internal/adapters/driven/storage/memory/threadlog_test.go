package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

func TestThreadLogStore_AppendAndList(t *testing.T) {
	store := NewThreadLogStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.ThreadEntry{ThreadID: "t1", Role: domain.RoleUser, Text: "q"}))
	require.NoError(t, store.Append(ctx, domain.ThreadEntry{ThreadID: "t1", Role: domain.RoleBot, Text: "a"}))
	require.NoError(t, store.Append(ctx, domain.ThreadEntry{ThreadID: "t2", Role: domain.RoleUser, Text: "other"}))

	listed, err := store.List(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "q", listed[0].Text)
	assert.Equal(t, "a", listed[1].Text)
	assert.NotEmpty(t, listed[0].ID)
	assert.False(t, listed[0].CreatedAt.IsZero())
}

func TestThreadLogStore_ListReturnsCopy(t *testing.T) {
	store := NewThreadLogStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.ThreadEntry{ThreadID: "t1", Role: domain.RoleUser, Text: "original"}))

	listed, _ := store.List(ctx, "t1")
	listed[0].Text = "mutated"

	fresh, _ := store.List(ctx, "t1")
	assert.Equal(t, "original", fresh[0].Text)
}
