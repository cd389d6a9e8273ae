package driving

import (
	"context"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// IngestService turns corpus files into indexed chunks.
type IngestService interface {
	// IngestFile loads, chunks, embeds and upserts a single file.
	// Load failures are returned as *domain.LoadError.
	IngestFile(ctx context.Context, path string, opts domain.IngestOptions) (domain.FileResult, error)

	// IngestDocument indexes an already-read document under raw.Name.
	IngestDocument(ctx context.Context, raw domain.RawDocument, opts domain.IngestOptions) (domain.FileResult, error)

	// IngestDir ingests every file under dir that matches pattern.
	// Unreadable files are skipped and counted in the report.
	IngestDir(ctx context.Context, dir, pattern string, opts domain.IngestOptions) (*domain.IngestReport, error)

	// Remove deletes every chunk and the manifest record of a source.
	Remove(ctx context.Context, source string) error
}

// StatusService reports on the active collection.
type StatusService interface {
	// Status returns the collection binding, entry count and ingested files.
	Status(ctx context.Context) (*domain.IndexStatus, error)
}
