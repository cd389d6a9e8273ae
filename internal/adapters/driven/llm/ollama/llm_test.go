package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

func TestGenerate(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "Afiyet olsun!", Done: true})
	}))
	defer server.Close()

	s := NewLLMService(LLMConfig{BaseURL: server.URL})
	out, err := s.Generate(context.Background(), "Kullanıcı: selam\nAyten:", driven.GenerateOptions{Temperature: 0.7})
	require.NoError(t, err)

	assert.Equal(t, "Afiyet olsun!", out)
	assert.Equal(t, DefaultLLMModel, got.Model)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Options)
	assert.InDelta(t, 0.7, got.Options.Temperature, 1e-9)
}

func TestChat_PrependsSystem(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Role: "assistant", Content: "Buyur canım"}})
	}))
	defer server.Close()

	s := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "qwen2.5"})
	out, err := s.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleUser, Content: "Merhaba"},
	}, driven.GenerateOptions{System: "Sen Ayten'sin."})
	require.NoError(t, err)

	assert.Equal(t, "Buyur canım", out)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, driven.RoleSystem, got.Messages[0].Role)
	assert.Nil(t, got.Options)
}

func TestGenerate_ErrorWrapsGeneration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).Generate(context.Background(), "x", driven.GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Contains(t, err.Error(), "model not loaded")

	_, err = NewLLMService(LLMConfig{BaseURL: "http://127.0.0.1:1"}).Generate(context.Background(), "x", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrGeneration)
}
