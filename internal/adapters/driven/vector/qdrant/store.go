// Package qdrant implements the index store on a Qdrant server over gRPC.
//
// Chunk IDs are mapped to deterministic UUIDv5 point IDs so that
// re-ingestion overwrites points. The original chunk ID travels in the
// payload together with the text and metadata.
package qdrant

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

// Payload keys.
const (
	payloadText    = "text"
	payloadChunkID = "chunk_id"
)

// pointNamespace seeds the UUIDv5 point IDs.
var pointNamespace = uuid.MustParse("6f1d3c2e-9a4b-5e7f-8c1d-2b3a4c5d6e7f")

// pointsClient is the subset of *qdrant.Client used by the store.
type pointsClient interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	CreateFieldIndex(ctx context.Context, request *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Close() error
}

// Config holds Qdrant connection settings.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	Collection string
}

// Store implements driven.IndexStore on a Qdrant collection.
type Store struct {
	client     pointsClient
	collection string

	mu   sync.Mutex
	dims int
}

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// New connects to Qdrant. The collection is created on the first upsert.
func New(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidInput)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant at %s:%d: %w",
			domain.ErrIndexUnavailable, cfg.Host, cfg.Port, err)
	}
	return newWithClient(client, cfg.Collection), nil
}

func newWithClient(client pointsClient, collection string) *Store {
	return &Store{client: client, collection: collection}
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// PointID maps a chunk ID to its deterministic Qdrant point UUID.
func PointID(collection, chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(collection+"/"+chunkID)).String()
}

// collectionDims returns the vector size of the collection, or 0 if it does not exist.
func (s *Store) collectionDims(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dims != 0 {
		return s.dims, nil
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return 0, unavailable("checking collection", err)
	}
	if !exists {
		return 0, nil
	}

	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return 0, unavailable("reading collection info", err)
	}
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return 0, fmt.Errorf("%w: collection %s uses named vectors", domain.ErrIndexUnavailable, s.collection)
	}
	if params.GetDistance() != qdrant.Distance_Cosine {
		return 0, fmt.Errorf("%w: collection %s uses %s", domain.ErrMetricMismatch, s.collection, params.GetDistance())
	}
	s.dims = int(params.GetSize())
	return s.dims, nil
}

func (s *Store) ensureCollection(ctx context.Context, dims int) error {
	existing, err := s.collectionDims(ctx)
	if err != nil {
		return err
	}
	if existing != 0 {
		if existing != dims {
			return fmt.Errorf("%w: collection %s has %d dimensions, got %d",
				domain.ErrDimensionMismatch, s.collection, existing, dims)
		}
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return unavailable("creating collection", err)
	}
	if _, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collection,
		FieldName:      domain.MetaSource,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	}); err != nil {
		return unavailable("indexing source field", err)
	}

	s.mu.Lock()
	s.dims = dims
	s.mu.Unlock()
	return nil
}

// Upsert writes chunks as points keyed by their deterministic UUIDs.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	dims := len(chunks[0].Embedding)
	if dims == 0 {
		return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunks[0].ID)
	}
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, batch has %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), dims)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(PointID(s.collection, c.ID)),
			Vectors: qdrant.NewVectors(c.Embedding...),
			Payload: qdrant.NewValueMap(payload(c)),
		}
	}

	if err := s.ensureCollection(ctx, dims); err != nil {
		return err
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return unavailable("upserting points", err)
	}
	return nil
}

// Query returns the k nearest points. Qdrant reports cosine similarity,
// which is converted to distance.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 || len(embedding) == 0 {
		return nil, nil
	}

	dims, err := s.collectionDims(ctx)
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

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, unavailable("querying points", err)
	}

	results := make([]domain.RetrievalResult, 0, len(points))
	for _, p := range points {
		results = append(results, toResult(p))
	}
	return results, nil
}

// DeleteStale removes points of source whose chunk IDs are not in keep.
func (s *Store) DeleteStale(ctx context.Context, source string, keep []string) (int, error) {
	dims, err := s.collectionDims(ctx)
	if err != nil {
		return 0, err
	}
	if dims == 0 {
		return 0, nil
	}

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch(domain.MetaSource, source)},
	}
	if len(keep) > 0 {
		ids := make([]*qdrant.PointId, len(keep))
		for i, id := range keep {
			ids[i] = qdrant.NewIDUUID(PointID(s.collection, id))
		}
		filter.MustNot = []*qdrant.Condition{qdrant.NewHasID(ids...)}
	}

	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, unavailable("counting stale points", err)
	}
	if n == 0 {
		return 0, nil
	}

	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	if err != nil {
		return 0, unavailable("deleting stale points", err)
	}
	return int(n), nil
}

// Count returns the number of points in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	dims, err := s.collectionDims(ctx)
	if err != nil {
		return 0, err
	}
	if dims == 0 {
		return 0, nil
	}
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, unavailable("counting points", err)
	}
	return int(n), nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func payload(c domain.Chunk) map[string]any {
	p := map[string]any{
		payloadText:    c.Content,
		payloadChunkID: c.ID,
	}
	for k, v := range c.Metadata {
		p[k] = v
	}
	return p
}

func toResult(p *qdrant.ScoredPoint) domain.RetrievalResult {
	metadata := make(map[string]string, len(p.GetPayload()))
	var text, chunkID string
	for k, v := range p.GetPayload() {
		switch k {
		case payloadText:
			text = v.GetStringValue()
		case payloadChunkID:
			chunkID = v.GetStringValue()
		default:
			metadata[k] = v.GetStringValue()
		}
	}
	return domain.RetrievalResult{
		ChunkID:  chunkID,
		Text:     text,
		Metadata: metadata,
		Distance: domain.Float64Ptr(1 - float64(p.GetScore())),
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: qdrant %s: %w", domain.ErrIndexUnavailable, op, err)
}
