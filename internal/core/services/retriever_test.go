package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roswate/ayten-bot/internal/adapters/driven/storage/memory"
	"github.com/roswate/ayten-bot/internal/core/domain"
)

// vecAt returns a unit vector whose cosine distance to {1, 0} is dist.
func vecAt(dist float64) []float32 {
	c := 1 - dist
	return []float32{float32(c), float32(math.Sqrt(1 - c*c))}
}

func newRetrieverFixture(t *testing.T) (*RetrieverService, *mockEmbedder, *memory.ManifestStore) {
	t.Helper()
	ctx := context.Background()

	index := memory.NewIndexStore(domain.DefaultCollection)
	chunks := []domain.Chunk{
		domain.NewChunk("a.txt", 0, 0, "Beyran kuzu eti ile yapılır."),
		domain.NewChunk("a.txt", 0, 1, "Yuvalama bayram sofrasında olur."),
		domain.NewChunk("b.pdf", 2, 0, "Katmer sabah yenir."),
		domain.NewChunk("b.pdf", 3, 0, "Baklava fıstıkla yapılır."),
		domain.NewChunk("c.txt", 0, 0, "İlgisiz bir metin."),
	}
	dists := []float64{0.05, 0.30, 0.10, 0.20, 0.90}
	for i := range chunks {
		chunks[i].Embedding = vecAt(dists[i])
	}
	require.NoError(t, index.Upsert(ctx, chunks))

	embedder := newMockEmbedder()
	embedder.fallback = []float32{1, 0}
	manifest := memory.NewManifestStore()

	return NewRetrieverService(embedder, index, manifest), embedder, manifest
}

func TestRetrieverService_Retrieve_FiltersByDistance(t *testing.T) {
	svc, _, _ := newRetrieverFixture(t)

	results, err := svc.Retrieve(context.Background(), "beyran nasıl yapılır", domain.DefaultRetrieveOptions())

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a.txt_c0", results[0].ChunkID)
	assert.Equal(t, "b.pdf_p2_c0", results[1].ChunkID)
	assert.Equal(t, "b.pdf_p3_c0", results[2].ChunkID)
	for _, r := range results {
		require.NotNil(t, r.Distance)
		assert.LessOrEqual(t, *r.Distance, 0.28)
	}
}

func TestRetrieverService_Retrieve_ThirtyIsDroppedAtDefault(t *testing.T) {
	svc, _, _ := newRetrieverFixture(t)

	results, err := svc.Retrieve(context.Background(), "yuvalama", domain.RetrieveOptions{K: 5, MaxDistance: 0.28})
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "a.txt_c1", r.ChunkID)
	}

	results, err = svc.Retrieve(context.Background(), "yuvalama", domain.RetrieveOptions{K: 5, MaxDistance: 0.31})
	require.NoError(t, err)
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ChunkID
	}
	assert.Contains(t, ids, "a.txt_c1")
}

func TestRetrieverService_Retrieve_NeverMoreThanK(t *testing.T) {
	svc, _, _ := newRetrieverFixture(t)

	for k := 1; k <= 5; k++ {
		results, err := svc.Retrieve(context.Background(), "katmer", domain.RetrieveOptions{K: k, MaxDistance: 2})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), k)
	}
}

func TestRetrieverService_Retrieve_BlankQuery(t *testing.T) {
	svc, embedder, _ := newRetrieverFixture(t)

	results, err := svc.Retrieve(context.Background(), "   ", domain.DefaultRetrieveOptions())

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, embedder.calls)
}

func TestRetrieverService_Retrieve_EmptyIndex(t *testing.T) {
	embedder := newMockEmbedder()
	svc := NewRetrieverService(embedder, memory.NewIndexStore("bos"), nil)

	results, err := svc.Retrieve(context.Background(), "lahmacun", domain.DefaultRetrieveOptions())

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieverService_Retrieve_KeepsNilDistance(t *testing.T) {
	index := &stubIndex{results: []domain.RetrievalResult{
		{ChunkID: "x", Text: "mesafesiz"},
		{ChunkID: "y", Text: "uzak", Distance: domain.Float64Ptr(0.9)},
		{ChunkID: "z", Text: "yakın", Distance: domain.Float64Ptr(0.1)},
	}}
	svc := NewRetrieverService(newMockEmbedder(), index, nil)

	results, err := svc.Retrieve(context.Background(), "soru", domain.DefaultRetrieveOptions())

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "x", results[0].ChunkID)
	assert.Nil(t, results[0].Distance)
	assert.Equal(t, "z", results[1].ChunkID)
}

func TestRetrieverService_Retrieve_DefaultK(t *testing.T) {
	svc, _, _ := newRetrieverFixture(t)

	results, err := svc.Retrieve(context.Background(), "katmer", domain.RetrieveOptions{MaxDistance: 2})

	require.NoError(t, err)
	assert.Len(t, results, domain.DefaultTopK)
}

func TestRetrieverService_Retrieve_EmbeddingError(t *testing.T) {
	svc, embedder, _ := newRetrieverFixture(t)
	embedder.err = domain.ErrEmbeddingUnavailable

	_, err := svc.Retrieve(context.Background(), "katmer", domain.DefaultRetrieveOptions())

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRetrieverService_Retrieve_ModelMismatch(t *testing.T) {
	svc, _, manifest := newRetrieverFixture(t)
	require.NoError(t, manifest.SaveCollection(context.Background(), domain.Collection{
		Name:       domain.DefaultCollection,
		Metric:     domain.MetricCosine,
		Model:      "another-model",
		Dimensions: 2,
	}))

	_, err := svc.Retrieve(context.Background(), "katmer", domain.DefaultRetrieveOptions())

	assert.ErrorIs(t, err, domain.ErrModelMismatch)
}

func TestRetrieverService_Retrieve_IndexError(t *testing.T) {
	svc := NewRetrieverService(newMockEmbedder(), &stubIndex{err: domain.ErrIndexUnavailable}, nil)

	_, err := svc.Retrieve(context.Background(), "katmer", domain.DefaultRetrieveOptions())

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}
