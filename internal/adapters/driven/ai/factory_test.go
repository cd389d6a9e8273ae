package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ollamaembed "github.com/roswate/ayten-bot/internal/adapters/driven/embedding/ollama"
	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantErr     bool
		errContains string
	}{
		{
			name:     "nil settings returns error",
			settings: nil,
			wantErr:  true,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "paraphrase-multilingual",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			name: "openai without key is not configured",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				Model:    "text-embedding-3-small",
			},
			wantErr:     true,
			errContains: "not configured",
		},
		{
			name: "anthropic provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantErr:     true,
			errContains: "anthropic does not support embeddings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(context.Background(), tt.settings, driven.DeviceAuto)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.Equal(t, tt.settings.Model, svc.ModelName())
			assert.NoError(t, svc.Close())
		})
	}
}

func TestCreateEmbeddingService_OllamaDevice(t *testing.T) {
	settings := &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "paraphrase-multilingual"}

	svc, err := CreateEmbeddingService(context.Background(), settings, driven.DeviceCPU)
	require.NoError(t, err)

	ollama, ok := svc.(*ollamaembed.EmbeddingService)
	require.True(t, ok)
	assert.Equal(t, driven.DeviceCPU, ollama.Device())
	assert.Equal(t, 768, ollama.Dimensions())
}

func TestNewEmbeddingService(t *testing.T) {
	_, err := NewEmbeddingService(&domain.EmbeddingSettings{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	svc, err := NewEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "paraphrase-multilingual",
	})
	require.NoError(t, err)
	assert.Equal(t, "paraphrase-multilingual", svc.ModelName())
	assert.Equal(t, 0, svc.Dimensions())
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantErr  bool
	}{
		{"nil settings", nil, true},
		{"ollama", &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}, false},
		{"openai", &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"}, false},
		{"anthropic", &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k", Model: "claude-3-5-sonnet-latest"}, false},
		{"gemini without key", &domain.LLMSettings{Provider: domain.AIProviderGemini, Model: "gemini-2.5-flash"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(context.Background(), tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.settings.Model, svc.ModelName())
		})
	}
}

func TestValidateConfig_Unconfigured(t *testing.T) {
	assert.NoError(t, ValidateEmbeddingConfig(nil))
	assert.NoError(t, ValidateLLMConfig(&domain.LLMSettings{}))
}
