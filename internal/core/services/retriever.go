package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
	"github.com/roswate/ayten-bot/internal/core/ports/driving"
	"github.com/roswate/ayten-bot/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.RetrieverService = (*RetrieverService)(nil)

// RetrieverService embeds a query and returns the nearest chunks within
// the distance threshold.
type RetrieverService struct {
	embedder driven.EmbeddingService
	index    driven.IndexStore
	manifest driven.ManifestStore
}

// NewRetrieverService creates a new retriever.
// The manifest is optional; when set, queries against a collection built
// with another embedding model are rejected.
func NewRetrieverService(
	embedder driven.EmbeddingService,
	index driven.IndexStore,
	manifest driven.ManifestStore,
) *RetrieverService {
	return &RetrieverService{
		embedder: embedder,
		index:    index,
		manifest: manifest,
	}
}

// Retrieve returns at most opts.K results ordered by ascending distance.
// Results without a distance are kept.
func (s *RetrieverService) Retrieve(
	ctx context.Context, query string, opts domain.RetrieveOptions,
) ([]domain.RetrievalResult, error) {
	logger.Section("Retrieve")
	logger.Debug("Query: %q, k: %d, max distance: %.2f", query, opts.K, opts.MaxDistance)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RetrievalResult{}, nil
	}

	if opts.K <= 0 {
		opts.K = domain.DefaultTopK
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if err := s.checkCollection(ctx, len(embedding)); err != nil {
		return nil, err
	}

	hits, err := s.index.Query(ctx, embedding, opts.K)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	results := make([]domain.RetrievalResult, 0, len(hits))
	for _, h := range hits {
		if h.Distance != nil && *h.Distance > opts.MaxDistance {
			logger.Debug("Dropping %s (distance %.3f)", h.ChunkID, *h.Distance)
			continue
		}
		results = append(results, h)
		if len(results) == opts.K {
			break
		}
	}

	logger.Debug("Retrieved %d of %d candidates", len(results), len(hits))
	return results, nil
}

func (s *RetrieverService) checkCollection(ctx context.Context, dims int) error {
	if s.manifest == nil {
		return nil
	}
	c, err := s.manifest.GetCollection(ctx, s.index.Collection())
	if errors.Is(err, domain.ErrNotFound) {
		// Nothing ingested yet.
		return nil
	}
	if err != nil {
		return fmt.Errorf("read collection: %w", err)
	}
	return checkBinding(c, s.embedder.ModelName(), dims)
}
