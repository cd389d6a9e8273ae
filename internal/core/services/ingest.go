package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
	"github.com/roswate/ayten-bot/internal/core/ports/driving"
	"github.com/roswate/ayten-bot/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// embedBatchSize bounds the texts sent to the embedder in one call.
const embedBatchSize = 64

// IngestService runs the ingestion pipeline:
// load -> chunk -> embed -> upsert -> prune stale chunks -> record manifest.
type IngestService struct {
	loaders    driven.LoaderRegistry
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	index      driven.IndexStore
	manifest   driven.ManifestStore
	connectors driven.ConnectorFactory
	now        func() time.Time

	mu    sync.Mutex
	bound *domain.Collection
}

// NewIngestService creates a new ingest service.
// connectors may be nil when only single files are ingested.
func NewIngestService(
	loaders driven.LoaderRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	index driven.IndexStore,
	manifest driven.ManifestStore,
	connectors driven.ConnectorFactory,
) *IngestService {
	return &IngestService{
		loaders:    loaders,
		chunker:    chunker,
		embedder:   embedder,
		index:      index,
		manifest:   manifest,
		connectors: connectors,
		now:        time.Now,
	}
}

// IngestFile reads path from disk and indexes it under its base name.
func (s *IngestService) IngestFile(ctx context.Context, path string, opts domain.IngestOptions) (domain.FileResult, error) {
	name := filepath.Base(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.FileResult{Source: name}, &domain.LoadError{Source: name, Err: err}
	}
	return s.IngestDocument(ctx, domain.RawDocument{Name: name, Path: path, Content: content}, opts)
}

// IngestDocument indexes a document. Re-ingesting unchanged content is a
// no-op unless opts.Force is set. Chunks of the source that are no longer
// produced are deleted after the upsert.
func (s *IngestService) IngestDocument(
	ctx context.Context, raw domain.RawDocument, opts domain.IngestOptions,
) (domain.FileResult, error) {
	result := domain.FileResult{Source: raw.Name}
	collection := s.index.Collection()
	hash := contentHash(raw.Content)

	logger.Debug("Ingesting %s (%d bytes, sha256 %s)", raw.Name, len(raw.Content), hash[:12])

	if !opts.Force {
		prev, err := s.manifest.GetFile(ctx, collection, raw.Name)
		switch {
		case err == nil && prev.Hash == hash:
			logger.Debug("%s unchanged, skipping", raw.Name)
			result.Unchanged = true
			result.Chunks = prev.Chunks
			result.Pages = prev.Pages
			return result, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return result, fmt.Errorf("read manifest: %w", err)
		}
	}

	pages, err := s.loaders.Load(ctx, &raw)
	if err != nil {
		var loadErr *domain.LoadError
		if errors.As(err, &loadErr) {
			return result, loadErr
		}
		return result, &domain.LoadError{Source: raw.Name, Err: err}
	}

	result.Pages = len(pages)
	for _, p := range pages {
		if p.Err != nil {
			result.PagesFailed++
			logger.Warn("Skipping page: %v", p.Err)
		}
	}

	chunks := s.chunker.ChunkPages(raw.Name, pages)
	if err := s.embed(ctx, chunks); err != nil {
		return result, err
	}

	if len(chunks) > 0 {
		if err := s.bindCollection(ctx, len(chunks[0].Embedding)); err != nil {
			return result, err
		}
		if err := s.index.Upsert(ctx, chunks); err != nil {
			return result, fmt.Errorf("upsert %s: %w", raw.Name, err)
		}
	}

	keep := make([]string, len(chunks))
	for i, c := range chunks {
		keep[i] = c.ID
	}
	pruned, err := s.index.DeleteStale(ctx, raw.Name, keep)
	if err != nil {
		return result, fmt.Errorf("prune %s: %w", raw.Name, err)
	}
	if pruned > 0 {
		logger.Debug("Pruned %d stale chunks of %s", pruned, raw.Name)
	}

	result.Chunks = len(chunks)
	record := domain.IngestedFile{
		Collection: collection,
		Source:     raw.Name,
		Path:       raw.Path,
		Hash:       hash,
		Pages:      result.Pages,
		Chunks:     result.Chunks,
		IngestedAt: s.now().UTC(),
	}
	if err := s.manifest.SaveFile(ctx, record); err != nil {
		return result, fmt.Errorf("record %s: %w", raw.Name, err)
	}

	logger.Info("Indexed %s: %d chunks", raw.Name, result.Chunks)
	return result, nil
}

// embed fills in the embedding of every chunk, in batches.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbeddingUnavailable, len(vectors), len(texts))
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}

// bindCollection creates the collection on first use and afterwards rejects
// vectors from a different model or of a different size.
func (s *IngestService) bindCollection(ctx context.Context, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	model := s.embedder.ModelName()

	if s.bound == nil {
		c, err := s.manifest.GetCollection(ctx, s.index.Collection())
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c = &domain.Collection{
				Name:       s.index.Collection(),
				Metric:     domain.MetricCosine,
				Model:      model,
				Dimensions: dims,
				CreatedAt:  s.now().UTC(),
			}
			if err := s.manifest.SaveCollection(ctx, *c); err != nil {
				return fmt.Errorf("create collection: %w", err)
			}
			logger.Info("Created collection %s (%s, %d dims, cosine)", c.Name, model, dims)
		case err != nil:
			return fmt.Errorf("read collection: %w", err)
		}
		s.bound = c
	}

	return checkBinding(s.bound, model, dims)
}

func checkBinding(c *domain.Collection, model string, dims int) error {
	if c.Metric != "" && c.Metric != domain.MetricCosine {
		return fmt.Errorf("%w: collection %s uses %s", domain.ErrMetricMismatch, c.Name, c.Metric)
	}
	if c.Model != "" && c.Model != model {
		return fmt.Errorf("%w: collection %s was built with %s, embedder is %s",
			domain.ErrModelMismatch, c.Name, c.Model, model)
	}
	if c.Dimensions != 0 && c.Dimensions != dims {
		return fmt.Errorf("%w: collection %s has %d dims, got %d",
			domain.ErrDimensionMismatch, c.Name, c.Dimensions, dims)
	}
	return nil
}

// IngestDir ingests every matching file under dir.
// Files that cannot be loaded are skipped and reported; any other error
// aborts the run.
func (s *IngestService) IngestDir(
	ctx context.Context, dir, pattern string, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	logger.Section("Ingest")
	logger.Debug("Directory: %s, pattern: %s, force: %t", dir, pattern, opts.Force)

	if s.connectors == nil {
		return nil, fmt.Errorf("%w: no connector configured", domain.ErrNotImplemented)
	}
	conn, err := s.connectors(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	report := &domain.IngestReport{}
	docs, errs := conn.FullSync(ctx)

	for docs != nil || errs != nil {
		select {
		case raw, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			res, err := s.IngestDocument(ctx, raw, opts)
			if err != nil {
				var loadErr *domain.LoadError
				if !errors.As(err, &loadErr) {
					return report, err
				}
				logger.Warn("Skipping %s: %v", raw.Name, loadErr.Err)
				report.Skip(loadErr)
				continue
			}
			report.Add(res)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			var loadErr *domain.LoadError
			if !errors.As(err, &loadErr) {
				return report, fmt.Errorf("scan corpus: %w", err)
			}
			logger.Warn("Skipping %s: %v", loadErr.Source, loadErr.Err)
			report.Skip(loadErr)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	logger.Info("Ingested %d files (%d unchanged, %d skipped), %d chunks",
		report.Succeeded, report.Unchanged, report.Skipped, report.Chunks)
	return report, nil
}

// Remove deletes the chunks and manifest record of a source.
func (s *IngestService) Remove(ctx context.Context, source string) error {
	n, err := s.index.DeleteStale(ctx, source, nil)
	if err != nil {
		return fmt.Errorf("remove %s: %w", source, err)
	}
	if err := s.manifest.DeleteFile(ctx, s.index.Collection(), source); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("remove %s from manifest: %w", source, err)
	}
	logger.Info("Removed %s (%d chunks)", source, n)
	return nil
}

func contentHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
