package driven

import (
	"context"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// IndexStore is a persistent vector collection keyed by deterministic chunk IDs.
// The distance metric is cosine and is fixed when the collection is created.
//
// Concurrent writers are safe only as far as the backing store allows;
// deterministic IDs make concurrent ingestion of the same file an idempotent overwrite.
type IndexStore interface {
	// Collection returns the collection name this store is bound to.
	Collection() string

	// Upsert inserts or overwrites chunks by ID. Empty input is a no-op.
	// Every chunk must carry an embedding with the collection's dimensionality.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// Query returns up to k entries nearest to embedding, ascending by distance.
	Query(ctx context.Context, embedding []float32, k int) ([]domain.RetrievalResult, error)

	// DeleteStale removes chunks of source whose IDs are not in keep.
	// Returns the number of chunks removed.
	DeleteStale(ctx context.Context, source string, keep []string) (int, error)

	// Count returns the number of entries in the collection.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
