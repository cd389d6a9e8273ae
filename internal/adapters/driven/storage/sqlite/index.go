package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

// indexStore implements driven.IndexStore for one collection.
type indexStore struct {
	store      *Store
	collection string
}

var _ driven.IndexStore = (*indexStore)(nil)

// Collection returns the collection name.
func (s *indexStore) Collection() string {
	return s.collection
}

// dimensions returns the vector length stored in the collection, or 0 when empty.
func (s *indexStore) dimensions(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}) (int, error) {
	var dims int
	err := q.QueryRowContext(ctx,
		"SELECT dimensions FROM chunks WHERE collection = ? LIMIT 1", s.collection).Scan(&dims)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("reading dimensions", err)
	}
	return dims, nil
}

// Upsert inserts or overwrites chunks by ID in a single transaction.
func (s *indexStore) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	dims := len(chunks[0].Embedding)
	if dims == 0 {
		return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunks[0].ID)
	}
	for _, c := range chunks {
		if len(c.Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, batch has %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), dims)
		}
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := s.dimensions(ctx, tx)
	if err != nil {
		return err
	}
	if existing != 0 && existing != dims {
		return fmt.Errorf("%w: collection %s has %d dimensions, got %d",
			domain.ErrDimensionMismatch, s.collection, existing, dims)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (collection, id, source, page, seq, content, metadata, embedding, dimensions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			source = excluded.source,
			page = excluded.page,
			seq = excluded.seq,
			content = excluded.content,
			metadata = excluded.metadata,
			embedding = excluded.embedding,
			dimensions = excluded.dimensions
	`)
	if err != nil {
		return unavailable("preparing statement", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		metadataJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, s.collection, c.ID, c.Source, c.Page, c.Sequence,
			c.Content, string(metadataJSON), float32SliceToBytes(c.Embedding), dims); err != nil {
			return unavailable("saving chunk", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing transaction", err)
	}
	return nil
}

type scored struct {
	result domain.RetrievalResult
	dist   float64
}

// Query scans the collection and returns the k nearest entries.
// Entries at equal distance keep their insertion order.
func (s *indexStore) Query(ctx context.Context, embedding []float32, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 || len(embedding) == 0 {
		return nil, nil
	}

	dims, err := s.dimensions(ctx, s.store.db)
	if err != nil {
		return nil, err
	}
	if dims == 0 {
		return nil, nil
	}
	if dims != len(embedding) {
		return nil, fmt.Errorf("%w: collection %s has %d dimensions, query has %d",
			domain.ErrDimensionMismatch, s.collection, dims, len(embedding))
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, content, metadata, embedding
		FROM chunks WHERE collection = ?
		ORDER BY rowid
	`, s.collection)
	if err != nil {
		return nil, unavailable("querying chunks", err)
	}
	defer rows.Close()

	var all []scored
	for rows.Next() {
		var (
			id, content, metadataJSON string
			blob                      []byte
		)
		if err := rows.Scan(&id, &content, &metadataJSON, &blob); err != nil {
			return nil, unavailable("scanning chunk", err)
		}
		var metadata map[string]string
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
			return nil, fmt.Errorf("%w: unmarshalling metadata of %s: %w", domain.ErrIndexUnavailable, id, err)
		}
		dist := domain.CosineDistance(embedding, bytesToFloat32Slice(blob))
		all = append(all, scored{
			result: domain.RetrievalResult{
				ChunkID:  id,
				Text:     content,
				Metadata: metadata,
				Distance: domain.Float64Ptr(dist),
			},
			dist: dist,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating chunks", err)
	}

	return nearest(all, k), nil
}

// nearest sorts by distance, keeping insertion order for ties, and truncates to k.
func nearest(all []scored, k int) []domain.RetrievalResult {
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].dist < all[j].dist
	})
	if len(all) > k {
		all = all[:k]
	}
	results := make([]domain.RetrievalResult, len(all))
	for i, sc := range all {
		results[i] = sc.result
	}
	return results
}

// DeleteStale removes chunks of source whose IDs are not in keep.
func (s *indexStore) DeleteStale(ctx context.Context, source string, keep []string) (int, error) {
	query := "DELETE FROM chunks WHERE collection = ? AND source = ?"
	args := []any{s.collection, source}
	if len(keep) > 0 {
		query += " AND id NOT IN (" + strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",") + ")"
		for _, id := range keep {
			args = append(args, id)
		}
	}

	res, err := s.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, unavailable("deleting stale chunks", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("counting deleted chunks", err)
	}
	return int(n), nil
}

// Count returns the number of chunks in the collection.
func (s *indexStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE collection = ?", s.collection).Scan(&n); err != nil {
		return 0, unavailable("counting chunks", err)
	}
	return n, nil
}

// Close is a no-op; the owning Store closes the connection.
func (s *indexStore) Close() error {
	return nil
}
