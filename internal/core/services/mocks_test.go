package services

import (
	"context"
	"sync"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
// Texts listed in vectors get that vector; anything else gets fallback.
type mockEmbedder struct {
	mu       sync.Mutex
	model    string
	vectors  map[string][]float32
	fallback []float32
	err      error
	calls    int
	embedded int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		model:    "test-embed",
		vectors:  map[string][]float32{},
		fallback: []float32{1, 0, 0},
	}
}

func (m *mockEmbedder) vector(text string) []float32 {
	v, ok := m.vectors[text]
	if !ok {
		v = m.fallback
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	m.embedded++
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	m.embedded += len(texts)
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return len(m.fallback) }
func (m *mockEmbedder) ModelName() string { return m.model }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.err }
func (m *mockEmbedder) Close() error { return nil }

// mockLLM implements driven.LLMService for testing.
// Replies are returned in order; the last one repeats.
type mockLLM struct {
	replies []string
	err     error

	prompts  []string
	chats    [][]driven.ChatMessage
	lastOpts driven.GenerateOptions
}

func (m *mockLLM) next() (string, error) {
	if m.err != nil {
		return "", m.err
	}
	n := len(m.prompts) + len(m.chats) - 1
	if n >= len(m.replies) {
		n = len(m.replies) - 1
	}
	return m.replies[n], nil
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.lastOpts = opts
	return m.next()
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.GenerateOptions) (string, error) {
	cp := make([]driven.ChatMessage, len(messages))
	copy(cp, messages)
	m.chats = append(m.chats, cp)
	m.lastOpts = opts
	return m.next()
}

func (m *mockLLM) ModelName() string { return "test-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

// mockRetriever implements driving.RetrieverService for testing.
type mockRetriever struct {
	results  []domain.RetrievalResult
	err      error
	lastOpts domain.RetrieveOptions
	queries  []string
}

func (m *mockRetriever) Retrieve(
	_ context.Context, query string, opts domain.RetrieveOptions,
) ([]domain.RetrievalResult, error) {
	m.queries = append(m.queries, query)
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// mockConnector implements driven.Connector for testing.
type mockConnector struct {
	docs   []domain.RawDocument
	errs   []error
	closed bool
}

func (m *mockConnector) Root() string { return "/corpus" }

func (m *mockConnector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error)
	go func() {
		defer close(docs)
		for _, d := range m.docs {
			select {
			case docs <- d:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		defer close(errs)
		for _, e := range m.errs {
			select {
			case errs <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return docs, errs
}

func (m *mockConnector) Watch(_ context.Context) (<-chan domain.RawDocumentChange, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockConnector) Close() error {
	m.closed = true
	return nil
}

// stubIndex implements driven.IndexStore with canned query results.
type stubIndex struct {
	results []domain.RetrievalResult
	err     error
}

func (s *stubIndex) Collection() string { return "stub" }

func (s *stubIndex) Upsert(_ context.Context, _ []domain.Chunk) error { return s.err }

func (s *stubIndex) Query(_ context.Context, _ []float32, k int) ([]domain.RetrievalResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	if k < len(s.results) {
		return s.results[:k], nil
	}
	return s.results, nil
}

func (s *stubIndex) DeleteStale(_ context.Context, _ string, _ []string) (int, error) { return 0, s.err }

func (s *stubIndex) Count(_ context.Context) (int, error) { return len(s.results), s.err }

func (s *stubIndex) Close() error { return nil }
