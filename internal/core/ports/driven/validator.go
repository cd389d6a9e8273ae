package driven

import "github.com/roswate/ayten-bot/internal/core/domain"

// AIConfigValidator checks provider settings against the live service.
type AIConfigValidator interface {
	// ValidateEmbedding creates the embedding provider and pings it.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM creates the generator and pings it.
	ValidateLLM(config *domain.LLMSettings) error
}
