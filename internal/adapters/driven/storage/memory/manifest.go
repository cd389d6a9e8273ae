package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

// Ensure ManifestStore implements the interface.
var _ driven.ManifestStore = (*ManifestStore)(nil)

type fileKey struct {
	collection string
	source     string
}

// ManifestStore is an in-memory implementation of driven.ManifestStore.
type ManifestStore struct {
	mu          sync.RWMutex
	collections map[string]domain.Collection
	files       map[fileKey]domain.IngestedFile
}

// NewManifestStore creates an empty in-memory manifest.
func NewManifestStore() *ManifestStore {
	return &ManifestStore{
		collections: make(map[string]domain.Collection),
		files:       make(map[fileKey]domain.IngestedFile),
	}
}

// GetCollection retrieves a collection binding by name.
func (s *ManifestStore) GetCollection(_ context.Context, name string) (*domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

// SaveCollection creates or updates a collection binding.
func (s *ManifestStore) SaveCollection(_ context.Context, c domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.collections[c.Name]; ok {
		c.CreatedAt = existing.CreatedAt
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Metric == "" {
		c.Metric = domain.MetricCosine
	}
	s.collections[c.Name] = c
	return nil
}

// GetFile retrieves the ingestion record of a source.
func (s *ManifestStore) GetFile(_ context.Context, collection, source string) (*domain.IngestedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[fileKey{collection, source}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

// SaveFile creates or updates an ingestion record.
func (s *ManifestStore) SaveFile(_ context.Context, f domain.IngestedFile) error {
	if f.IngestedAt.IsZero() {
		f.IngestedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[fileKey{f.Collection, f.Source}] = f
	return nil
}

// DeleteFile removes an ingestion record.
func (s *ManifestStore) DeleteFile(_ context.Context, collection, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, fileKey{collection, source})
	return nil
}

// ListFiles returns all ingestion records of a collection ordered by source.
func (s *ManifestStore) ListFiles(_ context.Context, collection string) ([]domain.IngestedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var files []domain.IngestedFile
	for k, f := range s.files {
		if k.collection == collection {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Source < files[j].Source })
	return files, nil
}
