package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

type entry struct {
	chunk domain.Chunk
	order int
}

// IndexStore is an in-memory implementation of driven.IndexStore.
// Contents are lost when the process exits.
type IndexStore struct {
	mu         sync.RWMutex
	collection string
	dims       int
	next       int
	entries    map[string]entry
}

// NewIndexStore creates an empty in-memory collection.
func NewIndexStore(collection string) *IndexStore {
	return &IndexStore{
		collection: collection,
		entries:    make(map[string]entry),
	}
}

// Collection returns the collection name.
func (s *IndexStore) Collection() string {
	return s.collection
}

// Upsert inserts or overwrites chunks by ID.
// An overwritten chunk keeps its original insertion position.
func (s *IndexStore) Upsert(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dims := s.dims
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		if dims == 0 {
			dims = len(c.Embedding)
		}
		if len(c.Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, collection has %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), dims)
		}
	}

	s.dims = dims
	for _, c := range chunks {
		e, ok := s.entries[c.ID]
		if !ok {
			e.order = s.next
			s.next++
		}
		e.chunk = copyChunk(c)
		s.entries[c.ID] = e
	}
	return nil
}

// Query returns up to k entries nearest to embedding.
func (s *IndexStore) Query(_ context.Context, embedding []float32, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 || len(embedding) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}
	if len(embedding) != s.dims {
		return nil, fmt.Errorf("%w: collection %s has %d dimensions, query has %d",
			domain.ErrDimensionMismatch, s.collection, s.dims, len(embedding))
	}

	type scored struct {
		e    entry
		dist float64
	}
	all := make([]scored, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, scored{e: e, dist: domain.CosineDistance(embedding, e.chunk.Embedding)})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].dist != all[j].dist {
			return all[i].dist < all[j].dist
		}
		return all[i].e.order < all[j].e.order
	})
	if len(all) > k {
		all = all[:k]
	}

	results := make([]domain.RetrievalResult, len(all))
	for i, sc := range all {
		results[i] = domain.RetrievalResult{
			ChunkID:  sc.e.chunk.ID,
			Text:     sc.e.chunk.Content,
			Metadata: copyMetadata(sc.e.chunk.Metadata),
			Distance: domain.Float64Ptr(sc.dist),
		}
	}
	return results, nil
}

// DeleteStale removes chunks of source whose IDs are not in keep.
func (s *IndexStore) DeleteStale(_ context.Context, source string, keep []string) (int, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if e.chunk.Source != source {
			continue
		}
		if _, ok := keepSet[id]; ok {
			continue
		}
		delete(s.entries, id)
		removed++
	}
	if len(s.entries) == 0 {
		s.dims = 0
	}
	return removed, nil
}

// Count returns the number of entries.
func (s *IndexStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close releases resources.
func (s *IndexStore) Close() error {
	return nil
}

func copyChunk(c domain.Chunk) domain.Chunk {
	c.Embedding = append([]float32(nil), c.Embedding...)
	c.Metadata = copyMetadata(c.Metadata)
	return c
}

func copyMetadata(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
