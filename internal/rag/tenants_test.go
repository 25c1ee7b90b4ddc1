package rag_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cobwebai/llmtools/internal/rag"
	"github.com/cobwebai/llmtools/internal/vectorstore"
)

func newTestTenants(t *testing.T) *rag.Tenants {
	t.Helper()

	store, err := vectorstore.NewChromemStore(
		vectorstore.ChromemConfig{},
		&hashEmbedder{vectorSize: 16},
		zap.NewNop(),
	)
	require.NoError(t, err)
	return rag.NewTenants(store, zap.NewNop())
}

func TestTenants_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tenants := newTestTenants(t)

	t.Run("try-get before any write reports absent", func(t *testing.T) {
		_, found, err := tenants.TryGet(ctx, "tenant-u")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("get-or-create always succeeds", func(t *testing.T) {
		index, err := tenants.GetOrCreate(ctx, "tenant-u")
		require.NoError(t, err)
		assert.Equal(t, "tenant-u", index.Collection())

		// Repeat calls return the same index, not a second collection.
		again, err := tenants.GetOrCreate(ctx, "tenant-u")
		require.NoError(t, err)
		assert.Equal(t, index, again)
	})

	t.Run("try-get after create finds the index", func(t *testing.T) {
		index, found, err := tenants.TryGet(ctx, "tenant-u")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "tenant-u", index.Collection())
	})

	t.Run("delete reports whether anything existed", func(t *testing.T) {
		removed, err := tenants.Delete(ctx, "tenant-u")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = tenants.Delete(ctx, "tenant-u")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("rejects invalid tenant identifiers", func(t *testing.T) {
		_, err := tenants.GetOrCreate(ctx, "no spaces allowed")
		require.Error(t, err)
		assert.ErrorIs(t, err, vectorstore.ErrInvalidCollectionName)
	})
}
