package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
	"github.com/roswate/ayten-bot/internal/core/ports/driving"
	"github.com/roswate/ayten-bot/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// AskConfig holds the retrieval and sampling parameters of the ask service.
type AskConfig struct {
	Retrieve    domain.RetrieveOptions
	Temperature float64
}

// AskService answers user messages as Ayten using retrieved context.
type AskService struct {
	retriever driving.RetrieverService
	llm       driven.LLMService
	prompts   driven.PromptStore
	cfg       AskConfig
}

// NewAskService creates a new ask service.
// prompts may be nil, in which case the built-in persona and style guard are used.
func NewAskService(
	retriever driving.RetrieverService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	cfg AskConfig,
) *AskService {
	if cfg.Retrieve.K <= 0 {
		cfg.Retrieve = domain.DefaultRetrieveOptions()
	}
	return &AskService{
		retriever: retriever,
		llm:       llm,
		prompts:   prompts,
		cfg:       cfg,
	}
}

// Ask answers a single message without conversation history.
func (s *AskService) Ask(ctx context.Context, message string) (*domain.Answer, error) {
	return s.Chat(ctx, nil, message)
}

// Chat answers message in the context of earlier turns. The retrieval uses
// only the new message.
func (s *AskService) Chat(ctx context.Context, history []domain.Message, message string) (*domain.Answer, error) {
	logger.Section("Ask")

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	persona, style := s.loadPrompts()

	results, err := s.retriever.Retrieve(ctx, message, s.cfg.Retrieve)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using %d context passages, %d history turns", len(results), len(history))

	prompt := BuildPrompt(persona, style, message, results)
	opts := driven.GenerateOptions{
		System:      persona + "\n\n" + style,
		Temperature: s.cfg.Temperature,
	}

	messages := toChatMessages(history)
	messages = append(messages, driven.ChatMessage{Role: driven.RoleUser, Content: prompt})

	reply, err := s.generate(ctx, messages, opts)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{Text: reply, Prompt: prompt, Context: results}

	if isMetaReply(reply) {
		logger.Debug("Meta reply detected, retrying with the style guard only")
		messages = append(messages,
			driven.ChatMessage{Role: driven.RoleAssistant, Content: reply},
			driven.ChatMessage{Role: driven.RoleUser, Content: retryPrompt(style, message)},
		)
		reply, err = s.generate(ctx, messages, opts)
		if err != nil {
			return nil, err
		}
		answer.Text = reply
		answer.Retried = true
	}

	return answer, nil
}

// generate uses a single-shot call when there is no history.
func (s *AskService) generate(ctx context.Context, messages []driven.ChatMessage, opts driven.GenerateOptions) (string, error) {
	var (
		reply string
		err   error
	)
	if len(messages) == 1 {
		reply, err = s.llm.Generate(ctx, messages[0].Content, opts)
	} else {
		reply, err = s.llm.Chat(ctx, messages, opts)
	}
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func (s *AskService) loadPrompts() (persona, style string) {
	persona, style = domain.DefaultPersona, domain.DefaultStyleGuard
	if s.prompts == nil {
		return persona, style
	}
	if p, err := s.prompts.Load(driven.PromptPersona); err != nil {
		logger.Warn("Using built-in persona: %v", err)
	} else if strings.TrimSpace(p) != "" {
		persona = p
	}
	if p, err := s.prompts.Load(driven.PromptStyleGuard); err != nil {
		logger.Warn("Using built-in style guard: %v", err)
	} else if strings.TrimSpace(p) != "" {
		style = p
	}
	return persona, style
}

func toChatMessages(history []domain.Message) []driven.ChatMessage {
	out := make([]driven.ChatMessage, 0, len(history)+3)
	for _, m := range history {
		role := driven.RoleUser
		if m.Role == domain.RoleAssistant {
			role = driven.RoleAssistant
		}
		out = append(out, driven.ChatMessage{Role: role, Content: m.Content})
	}
	return out
}
