package vectorstore_test

import (
	"context"
	"testing"

	"github.com/cobwebai/llmtools/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEmbedder returns normalized vectors for testing.
type testEmbedder struct {
	vectorSize int
}

func (e *testEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.makeEmbedding(text)
	}
	return embeddings, nil
}

func (e *testEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.makeEmbedding(text), nil
}

// makeEmbedding creates a normalized embedding based on text hash.
func (e *testEmbedder) makeEmbedding(text string) []float32 {
	embedding := make([]float32, e.vectorSize)
	hash := 0
	for _, c := range text {
		hash = (hash*31 + int(c)) % 1000
	}
	var sumSq float32
	for i := range embedding {
		embedding[i] = float32((hash+i)%100) / 100.0
		sumSq += embedding[i] * embedding[i]
	}
	// chromem requires normalized vectors
	if sumSq > 0 {
		norm := float32(1.0) / sqrt32(sumSq)
		for i := range embedding {
			embedding[i] *= norm
		}
	}
	return embedding
}

func sqrt32(x float32) float32 {
	if x <= 0 {
		return 0
	}
	z := x / 2
	for i := 0; i < 10; i++ {
		z = (z + x/z) / 2
	}
	return z
}

func newTestStore(t *testing.T) *vectorstore.ChromemStore {
	t.Helper()

	store, err := vectorstore.NewChromemStore(
		vectorstore.ChromemConfig{Path: t.TempDir()},
		&testEmbedder{vectorSize: 384},
		zap.NewNop(),
	)
	require.NoError(t, err)
	return store
}

func testDocs() []vectorstore.Document {
	return []vectorstore.Document{
		{
			ID:      "doc-1",
			Content: "gradient descent minimizes the loss function",
			Metadata: map[string]string{
				"project_id":  "ml",
				"document_id": "notes-1",
			},
		},
		{
			ID:      "doc-2",
			Content: "tokenizers split text into subword units",
			Metadata: map[string]string{
				"project_id":  "nlp",
				"document_id": "notes-2",
			},
		},
		{
			ID:      "doc-3",
			Content: "backpropagation computes gradients layer by layer",
			Metadata: map[string]string{
				"project_id":  "ml",
				"document_id": "notes-3",
			},
		},
	}
}

func TestNewChromemStore(t *testing.T) {
	t.Run("requires embedder", func(t *testing.T) {
		_, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{}, nil, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, vectorstore.ErrInvalidConfig)
	})

	t.Run("in-memory without path", func(t *testing.T) {
		store, err := vectorstore.NewChromemStore(
			vectorstore.ChromemConfig{},
			&testEmbedder{vectorSize: 8},
			nil,
		)
		require.NoError(t, err)
		require.NoError(t, store.Close())
	})

	t.Run("persistent with path", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Close())
	})
}

func TestChromemStore_AddDocuments(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("rejects empty batch", func(t *testing.T) {
		_, err := store.AddDocuments(ctx, "tenant-a", nil)
		assert.ErrorIs(t, err, vectorstore.ErrEmptyDocuments)
	})

	t.Run("rejects documents without IDs", func(t *testing.T) {
		_, err := store.AddDocuments(ctx, "tenant-a", []vectorstore.Document{{Content: "x"}})
		require.Error(t, err)
	})

	t.Run("creates collection on first write", func(t *testing.T) {
		ids, err := store.AddDocuments(ctx, "tenant-a", testDocs())
		require.NoError(t, err)
		assert.Equal(t, []string{"doc-1", "doc-2", "doc-3"}, ids)

		exists, err := store.CollectionExists(ctx, "tenant-a")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("overwrites on same ID", func(t *testing.T) {
		_, err := store.AddDocuments(ctx, "tenant-a", testDocs())
		require.NoError(t, err)

		info, err := store.GetCollectionInfo(ctx, "tenant-a")
		require.NoError(t, err)
		assert.Equal(t, 3, info.PointCount)
	})
}

func TestChromemStore_Query(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.AddDocuments(ctx, "tenant-a", testDocs())
	require.NoError(t, err)

	t.Run("missing collection", func(t *testing.T) {
		_, err := store.Query(ctx, "nobody", "gradients", vectorstore.Filter{}, 3)
		assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
	})

	t.Run("rejects invalid k", func(t *testing.T) {
		_, err := store.Query(ctx, "tenant-a", "gradients", vectorstore.Filter{}, 0)
		require.Error(t, err)
	})

	t.Run("rejects empty query", func(t *testing.T) {
		_, err := store.Query(ctx, "tenant-a", "", vectorstore.Filter{}, 3)
		require.Error(t, err)
	})

	t.Run("caps k at collection size", func(t *testing.T) {
		results, err := store.Query(ctx, "tenant-a", "gradients", vectorstore.Filter{}, 10)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("filter restricts results", func(t *testing.T) {
		filter := vectorstore.And(vectorstore.Equals("project_id", "ml"))
		results, err := store.Query(ctx, "tenant-a", "gradients", filter, 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Equal(t, "ml", r.Metadata["project_id"])
		}
	})

	t.Run("conjunction of filters", func(t *testing.T) {
		filter := vectorstore.And(
			vectorstore.Equals("project_id", "ml"),
			vectorstore.Equals("document_id", "notes-3"),
		)
		results, err := store.Query(ctx, "tenant-a", "gradients", filter, 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "doc-3", results[0].ID)
	})

	t.Run("never exceeds k", func(t *testing.T) {
		results, err := store.Query(ctx, "tenant-a", "gradients", vectorstore.Filter{}, 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestChromemStore_DeleteByFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.AddDocuments(ctx, "tenant-a", testDocs())
	require.NoError(t, err)

	t.Run("missing collection", func(t *testing.T) {
		err := store.DeleteByFilter(ctx, "nobody", vectorstore.And(vectorstore.Equals("project_id", "ml")))
		assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
	})

	t.Run("refuses empty filter", func(t *testing.T) {
		err := store.DeleteByFilter(ctx, "tenant-a", vectorstore.Filter{})
		require.Error(t, err)
	})

	t.Run("deletes only matching documents", func(t *testing.T) {
		err := store.DeleteByFilter(ctx, "tenant-a", vectorstore.And(vectorstore.Equals("project_id", "ml")))
		require.NoError(t, err)

		info, err := store.GetCollectionInfo(ctx, "tenant-a")
		require.NoError(t, err)
		assert.Equal(t, 1, info.PointCount)

		results, err := store.Query(ctx, "tenant-a", "subword units", vectorstore.And(vectorstore.Equals("project_id", "nlp")), 5)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestChromemStore_DeleteByID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.AddDocuments(ctx, "tenant-a", testDocs())
	require.NoError(t, err)

	t.Run("no-op on empty ids", func(t *testing.T) {
		require.NoError(t, store.DeleteByID(ctx, "tenant-a"))
	})

	t.Run("deletes listed ids", func(t *testing.T) {
		require.NoError(t, store.DeleteByID(ctx, "tenant-a", "doc-1", "doc-2"))

		info, err := store.GetCollectionInfo(ctx, "tenant-a")
		require.NoError(t, err)
		assert.Equal(t, 1, info.PointCount)
	})
}

func TestChromemStore_Collections(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("ensure is idempotent", func(t *testing.T) {
		require.NoError(t, store.EnsureCollection(ctx, "tenant-a"))
		require.NoError(t, store.EnsureCollection(ctx, "tenant-a"))
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, store.EnsureCollection(ctx, "tenant-b"))
		names, err := store.ListCollections(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"tenant-a", "tenant-b"}, names)
	})

	t.Run("delete missing", func(t *testing.T) {
		err := store.DeleteCollection(ctx, "nobody")
		assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
	})

	t.Run("delete existing", func(t *testing.T) {
		require.NoError(t, store.DeleteCollection(ctx, "tenant-b"))
		exists, err := store.CollectionExists(ctx, "tenant-b")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("info for missing collection", func(t *testing.T) {
		_, err := store.GetCollectionInfo(ctx, "nobody")
		assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
	})
}
