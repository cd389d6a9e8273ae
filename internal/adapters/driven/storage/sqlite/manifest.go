package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

// manifestStore implements driven.ManifestStore.
type manifestStore struct {
	store *Store
}

var _ driven.ManifestStore = (*manifestStore)(nil)

// GetCollection retrieves a collection binding by name.
func (s *manifestStore) GetCollection(ctx context.Context, name string) (*domain.Collection, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT name, metric, model, dimensions, created_at
		FROM collections WHERE name = ?
	`, name)

	var c domain.Collection
	var metric string
	if err := row.Scan(&c.Name, &metric, &c.Model, &c.Dimensions, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning collection: %w", err)
	}
	c.Metric = domain.Metric(metric)
	return &c, nil
}

// SaveCollection creates or updates a collection binding.
func (s *manifestStore) SaveCollection(ctx context.Context, c domain.Collection) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Metric == "" {
		c.Metric = domain.MetricCosine
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO collections (name, metric, model, dimensions, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			metric = excluded.metric,
			model = excluded.model,
			dimensions = excluded.dimensions
	`, c.Name, string(c.Metric), c.Model, c.Dimensions, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving collection: %w", err)
	}
	return nil
}

// GetFile retrieves the ingestion record of a source.
func (s *manifestStore) GetFile(ctx context.Context, collection, source string) (*domain.IngestedFile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT collection, source, path, hash, pages, chunks, ingested_at
		FROM ingested_files WHERE collection = ? AND source = ?
	`, collection, source)

	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning ingested file: %w", err)
	}
	return f, nil
}

// SaveFile creates or updates an ingestion record.
func (s *manifestStore) SaveFile(ctx context.Context, f domain.IngestedFile) error {
	if f.IngestedAt.IsZero() {
		f.IngestedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingested_files (collection, source, path, hash, pages, chunks, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, source) DO UPDATE SET
			path = excluded.path,
			hash = excluded.hash,
			pages = excluded.pages,
			chunks = excluded.chunks,
			ingested_at = excluded.ingested_at
	`, f.Collection, f.Source, f.Path, f.Hash, f.Pages, f.Chunks, f.IngestedAt)
	if err != nil {
		return fmt.Errorf("saving ingested file: %w", err)
	}
	return nil
}

// DeleteFile removes an ingestion record. Missing records are not an error.
func (s *manifestStore) DeleteFile(ctx context.Context, collection, source string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM ingested_files WHERE collection = ? AND source = ?", collection, source)
	if err != nil {
		return fmt.Errorf("deleting ingested file: %w", err)
	}
	return nil
}

// ListFiles returns all ingestion records of a collection ordered by source.
func (s *manifestStore) ListFiles(ctx context.Context, collection string) ([]domain.IngestedFile, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT collection, source, path, hash, pages, chunks, ingested_at
		FROM ingested_files WHERE collection = ?
		ORDER BY source
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("listing ingested files: %w", err)
	}
	defer rows.Close()

	var files []domain.IngestedFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ingested file: %w", err)
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (*domain.IngestedFile, error) {
	var f domain.IngestedFile
	if err := row.Scan(&f.Collection, &f.Source, &f.Path, &f.Hash, &f.Pages, &f.Chunks, &f.IngestedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
