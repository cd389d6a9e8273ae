// Package lazy wraps an embedding provider so the model is loaded on first
// use, probed once, and retried on CPU when the default device fails.
package lazy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
	"github.com/roswate/ayten-bot/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// probeText is embedded once after loading to confirm the model works.
const probeText = "test"

// EmbeddingService loads the underlying model on first use and
// L2-normalises every vector it returns.
type EmbeddingService struct {
	factory driven.EmbeddingFactory
	model   string

	mu     sync.Mutex
	inner  driven.EmbeddingService
	device driven.Device
}

// New creates a lazy embedding service. model is reported by ModelName
// before the provider has been loaded.
func New(factory driven.EmbeddingFactory, model string) *EmbeddingService {
	return &EmbeddingService{factory: factory, model: model}
}

// load returns the ready provider, creating it if needed. A failed load is
// not cached so a later call can try again.
func (s *EmbeddingService) load(ctx context.Context) (driven.EmbeddingService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inner != nil {
		return s.inner, nil
	}

	inner, errAuto := s.open(ctx, driven.DeviceAuto)
	if errAuto == nil {
		s.inner, s.device = inner, driven.DeviceAuto
		return inner, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, ctx.Err())
	}
	logger.Warn("embedding model failed on default device, retrying on CPU: %v", errAuto)

	inner, errCPU := s.open(ctx, driven.DeviceCPU)
	if errCPU != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, errors.Join(errAuto, errCPU))
	}
	s.inner, s.device = inner, driven.DeviceCPU
	return inner, nil
}

func (s *EmbeddingService) open(ctx context.Context, device driven.Device) (driven.EmbeddingService, error) {
	inner, err := s.factory(ctx, device)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", device, err)
	}
	if _, err := inner.Embed(ctx, probeText); err != nil {
		_ = inner.Close()
		return nil, fmt.Errorf("%s probe: %w", device, err)
	}
	logger.Debug("embedding model %s loaded on %s (dim=%d)", inner.ModelName(), device, inner.Dimensions())
	return inner, nil
}

// Device reports where the loaded model runs. It is empty before loading.
func (s *EmbeddingService) Device() driven.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// Embed returns the normalised embedding of text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	inner, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	vec, err := inner.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return domain.Normalize(vec), nil
}

// EmbedBatch returns normalised embeddings in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	inner, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	vecs, err := inner.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	for _, v := range vecs {
		domain.Normalize(v)
	}
	return vecs, nil
}

// Dimensions returns the vector size of the loaded model, or 0 before loading.
func (s *EmbeddingService) Dimensions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inner == nil {
		return 0
	}
	return s.inner.Dimensions()
}

// ModelName returns the configured model name.
func (s *EmbeddingService) ModelName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inner != nil {
		return s.inner.ModelName()
	}
	return s.model
}

// Ping loads the model if necessary.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.load(ctx)
	return err
}

// Close releases the loaded provider.
func (s *EmbeddingService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inner == nil {
		return nil
	}
	err := s.inner.Close()
	s.inner = nil
	s.device = ""
	return err
}
