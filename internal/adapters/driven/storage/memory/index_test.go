package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

func chunk(source string, seq int, content string, emb ...float32) domain.Chunk {
	c := domain.NewChunk(source, 0, seq, content)
	c.Embedding = emb
	return c
}

func TestIndexStore_UpsertQuery(t *testing.T) {
	idx := NewIndexStore("ayten_docs")
	ctx := context.Background()
	assert.Equal(t, "ayten_docs", idx.Collection())

	require.NoError(t, idx.Upsert(ctx, []domain.Chunk{
		chunk("a.txt", 0, "dik", 0, 1),
		chunk("a.txt", 1, "ayni", 1, 0),
		chunk("a.txt", 2, "ters", -1, 0),
	}))

	results, err := idx.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "ayni", results[0].Text)
	assert.Equal(t, "dik", results[1].Text)
	assert.InDelta(t, 0, *results[0].Distance, 1e-9)
	assert.Equal(t, "a.txt", results[0].Source())
}

func TestIndexStore_EmptyAndIdempotent(t *testing.T) {
	idx := NewIndexStore("c")
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, nil))
	results, err := idx.Query(ctx, []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)

	batch := []domain.Chunk{chunk("a.txt", 0, "x", 1, 0)}
	require.NoError(t, idx.Upsert(ctx, batch))
	require.NoError(t, idx.Upsert(ctx, batch))
	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIndexStore_TiesKeepInsertionOrder(t *testing.T) {
	idx := NewIndexStore("c")
	ctx := context.Background()

	for i, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, idx.Upsert(ctx, []domain.Chunk{chunk(name+".txt", i, name, 1, 1)}))
	}
	// overwriting keeps the original position
	require.NoError(t, idx.Upsert(ctx, []domain.Chunk{chunk("a.txt", 0, "a2", 1, 1)}))

	results, err := idx.Query(ctx, []float32{1, 1}, 4)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "a2", results[0].Text)
	assert.Equal(t, "b", results[1].Text)
	assert.Equal(t, "c", results[2].Text)
	assert.Equal(t, "d", results[3].Text)
}

func TestIndexStore_DimensionMismatch(t *testing.T) {
	idx := NewIndexStore("c")
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []domain.Chunk{chunk("a.txt", 0, "x", 1, 0, 0)}))
	assert.ErrorIs(t, idx.Upsert(ctx, []domain.Chunk{chunk("b.txt", 0, "y", 1, 0)}), domain.ErrDimensionMismatch)

	_, err := idx.Query(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	assert.ErrorIs(t, idx.Upsert(ctx, []domain.Chunk{chunk("c.txt", 0, "z")}), domain.ErrInvalidInput)
}

func TestIndexStore_DeleteStale(t *testing.T) {
	idx := NewIndexStore("c")
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []domain.Chunk{
		chunk("a.txt", 0, "a0", 1, 0),
		chunk("a.txt", 1, "a1", 1, 0),
		chunk("b.txt", 0, "b0", 1, 0),
	}))

	removed, err := idx.DeleteStale(ctx, "a.txt", []string{"a.txt_c0"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestIndexStore_StoresCopies(t *testing.T) {
	idx := NewIndexStore("c")
	ctx := context.Background()

	c := chunk("a.txt", 0, "x", 1, 0)
	require.NoError(t, idx.Upsert(ctx, []domain.Chunk{c}))
	c.Embedding[0] = -1
	c.Metadata[domain.MetaSource] = "changed"

	results, err := idx.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0, *results[0].Distance, 1e-9)
	assert.Equal(t, "a.txt", results[0].Source())
}
