package rag

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveChunkID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := DeriveChunkID("some content", "p1", "d1")
		b := DeriveChunkID("some content", "p1", "d1")
		assert.Equal(t, a, b)
	})

	t.Run("is a valid UUID", func(t *testing.T) {
		id := DeriveChunkID("some content", "p1", "d1")
		_, err := uuid.Parse(id)
		require.NoError(t, err)
	})

	t.Run("any field change yields a different id", func(t *testing.T) {
		base := DeriveChunkID("content", "p1", "d1")
		assert.NotEqual(t, base, DeriveChunkID("other", "p1", "d1"))
		assert.NotEqual(t, base, DeriveChunkID("content", "p2", "d1"))
		assert.NotEqual(t, base, DeriveChunkID("content", "p1", "d2"))
	})

	t.Run("no concatenation ambiguity", func(t *testing.T) {
		// Without framing these two triples would hash identically.
		assert.NotEqual(t,
			DeriveChunkID("c", "ab", ""),
			DeriveChunkID("c", "a", "b"),
		)
		assert.NotEqual(t,
			DeriveChunkID("xc", "", "y"),
			DeriveChunkID("c", "x", "y"),
		)
	})

	t.Run("same content in different scopes never shares an id", func(t *testing.T) {
		seen := map[string]bool{}
		for _, scope := range [][2]string{{"p1", "d1"}, {"p1", "d2"}, {"p2", "d1"}, {"p2", "d2"}} {
			id := DeriveChunkID("shared content", scope[0], scope[1])
			assert.False(t, seen[id], "duplicate id for scope %v", scope)
			seen[id] = true
		}
	})
}
