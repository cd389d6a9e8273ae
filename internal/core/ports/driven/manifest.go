package driven

import (
	"context"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// ManifestStore persists collection bindings and per-file ingestion records.
type ManifestStore interface {
	// GetCollection returns the collection binding.
	// Returns domain.ErrNotFound if the collection has not been created.
	GetCollection(ctx context.Context, name string) (*domain.Collection, error)

	// SaveCollection creates or updates a collection binding.
	SaveCollection(ctx context.Context, c domain.Collection) error

	// GetFile returns the ingestion record for a source in a collection.
	// Returns domain.ErrNotFound if the source was never ingested.
	GetFile(ctx context.Context, collection, source string) (*domain.IngestedFile, error)

	// SaveFile creates or updates an ingestion record.
	SaveFile(ctx context.Context, f domain.IngestedFile) error

	// DeleteFile removes an ingestion record.
	DeleteFile(ctx context.Context, collection, source string) error

	// ListFiles returns all ingestion records of a collection ordered by source.
	ListFiles(ctx context.Context, collection string) ([]domain.IngestedFile, error)
}
