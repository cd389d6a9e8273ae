// Package gemini provides an LLM service adapter using the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is the generator used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Gemini names the assistant role "model".
const roleModel = "model"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Google AI Studio API key (required).
	APIKey string

	// Model is the generative model to use (default: gemini-2.5-flash).
	Model string
}

// request is one generation call after conversion to Gemini types.
type request struct {
	history []*genai.Content
	parts   []genai.Part
	opts    driven.GenerateOptions
}

type generateFunc func(ctx context.Context, req request) (*genai.GenerateContentResponse, error)

// LLMService provides LLM operations using Gemini.
type LLMService struct {
	client   *genai.Client
	model    string
	generate generateFunc
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	s := &LLMService{client: client, model: cfg.Model}
	s.generate = func(ctx context.Context, req request) (*genai.GenerateContentResponse, error) {
		// A model value is configured per call so concurrent requests
		// with different options do not share state.
		m := client.GenerativeModel(cfg.Model)
		configure(m, req.opts)
		if len(req.history) == 0 {
			return m.GenerateContent(ctx, req.parts...)
		}
		cs := m.StartChat()
		cs.History = req.history
		return cs.SendMessage(ctx, req.parts...)
	}
	return s, nil
}

func configure(m *genai.GenerativeModel, opts driven.GenerateOptions) {
	if opts.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(opts.System)}}
	}
	if opts.Temperature > 0 {
		m.SetTemperature(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if len(opts.StopWords) > 0 {
		m.StopSequences = opts.StopWords
	}
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.do(ctx, request{parts: []genai.Part{genai.Text(prompt)}, opts: opts})
}

// Chat conducts a multi-turn conversation. The last message must be from the user.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.GenerateOptions) (string, error) {
	history, last, err := toHistory(messages)
	if err != nil {
		return "", err
	}
	for _, msg := range messages {
		if msg.Role == driven.RoleSystem {
			opts.System = strings.TrimSpace(opts.System + "\n\n" + msg.Content)
		}
	}
	return s.do(ctx, request{history: history, parts: []genai.Part{genai.Text(last)}, opts: opts})
}

func (s *LLMService) do(ctx context.Context, req request) (string, error) {
	resp, err := s.generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", domain.ErrGeneration, err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: gemini: empty response", domain.ErrGeneration)
	}
	return text, nil
}

// toHistory splits messages into prior turns and the final user text.
// System messages are dropped here; Chat moves them to the system instruction.
func toHistory(messages []driven.ChatMessage) ([]*genai.Content, string, error) {
	var turns []driven.ChatMessage
	for _, msg := range messages {
		if msg.Role != driven.RoleSystem {
			turns = append(turns, msg)
		}
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != driven.RoleUser {
		return nil, "", fmt.Errorf("gemini: conversation must end with a user message: %w", domain.ErrInvalidInput)
	}

	history := make([]*genai.Content, 0, len(turns)-1)
	for _, msg := range turns[:len(turns)-1] {
		role := driven.RoleUser
		if msg.Role == driven.RoleAssistant {
			role = roleModel
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}
	return history, turns[len(turns)-1].Content, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models to validate the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.ListModels(ctx).Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
