// Package gemini provides an embedding service adapter using the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768

	// maxBatch is the BatchEmbedContents request limit.
	maxBatch = 100
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Google AI Studio API key (required).
	APIKey string

	// Model is the embedding model to use (default: text-embedding-004).
	Model string

	// Dimensions is the expected vector size (default: 768).
	Dimensions int
}

// batchFunc embeds one request worth of texts.
type batchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// EmbeddingService generates embeddings using Gemini.
type EmbeddingService struct {
	client *genai.Client
	model  string
	embed  batchFunc

	mu         sync.RWMutex
	dimensions int
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	em := client.EmbeddingModel(cfg.Model)
	em.TaskType = genai.TaskTypeRetrievalDocument

	s := newWithBatchFunc(cfg, func(ctx context.Context, texts []string) ([][]float32, error) {
		batch := em.NewBatch()
		for _, text := range texts {
			batch.AddContent(genai.Text(text))
		}
		res, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, err
		}
		out := make([][]float32, 0, len(res.Embeddings))
		for _, e := range res.Embeddings {
			if e == nil {
				out = append(out, nil)
				continue
			}
			out = append(out, e.Values)
		}
		return out, nil
	})
	s.client = client
	return s, nil
}

func newWithBatchFunc(cfg Config, fn batchFunc) *EmbeddingService {
	return &EmbeddingService{
		model:      cfg.Model,
		embed:      fn,
		dimensions: cfg.Dimensions,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts, preserving order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))
		batch, err := s.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("gemini: embed texts %d-%d: %w", start, end-1, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("gemini: got %d embeddings for %d inputs", len(batch), end-start)
		}
		for i, e := range batch {
			if len(e) == 0 {
				return nil, fmt.Errorf("gemini: empty embedding for input %d", start+i)
			}
		}
		embeddings = append(embeddings, batch...)
	}

	s.mu.Lock()
	s.dimensions = len(embeddings[0])
	s.mu.Unlock()
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a short probe text.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *EmbeddingService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
