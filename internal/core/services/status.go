package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
	"github.com/roswate/ayten-bot/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// StatusService reports what the index holds.
type StatusService struct {
	index    driven.IndexStore
	manifest driven.ManifestStore
	backend  domain.IndexBackend
}

// NewStatusService creates a new status service.
func NewStatusService(index driven.IndexStore, manifest driven.ManifestStore, backend domain.IndexBackend) *StatusService {
	return &StatusService{index: index, manifest: manifest, backend: backend}
}

// Status returns the collection binding, chunk count and ingested files.
// Collection is nil when nothing has been ingested yet.
func (s *StatusService) Status(ctx context.Context) (*domain.IndexStatus, error) {
	status := &domain.IndexStatus{Backend: s.backend}

	c, err := s.manifest.GetCollection(ctx, s.index.Collection())
	switch {
	case err == nil:
		status.Collection = c
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("read collection: %w", err)
	}

	n, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	status.Chunks = n

	files, err := s.manifest.ListFiles(ctx, s.index.Collection())
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	status.Files = files

	return status, nil
}
