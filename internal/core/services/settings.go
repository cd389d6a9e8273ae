package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
	"github.com/roswate/ayten-bot/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAppName          = "app.name"
	keyChunkSize        = "chunking.size"
	keyChunkOverlap     = "chunking.overlap"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMTemperature   = "llm.temperature"
	keyTopK             = "retrieval.top_k"
	keyMaxDistance      = "retrieval.max_distance"
	keyIndexBackend     = "index.backend"
	keyIndexPath        = "index.path"
	keyIndexCollection  = "index.collection"
	keyQdrantHost       = "index.qdrant_host"
	keyQdrantPort       = "index.qdrant_port"
	keyCorpusInputDir   = "corpus.input_dir"
	keyCorpusPattern    = "corpus.pattern"
	keyCrawlMaxPages    = "crawl.max_pages"
	keyCrawlDepth       = "crawl.depth"
	keyCrawlDelay       = "crawl.delay_ms"
	keyCrawlMinTextSize = "crawl.min_text_length"
)

// Default directory names below the data home.
const (
	defaultIndexDir  = "index"
	defaultCorpusDir = "kitaplar"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
)

// settingKeys lists every key accepted by Set with its value type.
var settingKeys = map[string]keyKind{
	keyAppName:          kindString,
	keyChunkSize:        kindInt,
	keyChunkOverlap:     kindInt,
	keyEmbedProvider:    kindString,
	keyEmbedModel:       kindString,
	keyEmbedBaseURL:     kindString,
	keyEmbedAPIKey:      kindString,
	keyLLMProvider:      kindString,
	keyLLMModel:         kindString,
	keyLLMBaseURL:       kindString,
	keyLLMAPIKey:        kindString,
	keyLLMTemperature:   kindFloat,
	keyTopK:             kindInt,
	keyMaxDistance:      kindFloat,
	keyIndexBackend:     kindString,
	keyIndexPath:        kindString,
	keyIndexCollection:  kindString,
	keyQdrantHost:       kindString,
	keyQdrantPort:       kindInt,
	keyCorpusInputDir:   kindString,
	keyCorpusPattern:    kindString,
	keyCrawlMaxPages:    kindInt,
	keyCrawlDepth:       kindInt,
	keyCrawlDelay:       kindInt,
	keyCrawlMinTextSize: kindInt,
}

// SettingKeys returns the configurable keys, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	homeDir     string
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
// Relative default paths are resolved against homeDir.
func NewSettingsService(
	configStore driven.ConfigStore, aiValidator driven.AIConfigValidator, homeDir string,
) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		homeDir:     homeDir,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := s.GetDefaults()

	settings := &domain.AppSettings{
		AppName: s.getString(keyAppName, d.AppName),
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, d.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, d.Chunking.Overlap),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Temperature: s.getFloat(keyLLMTemperature, d.LLM.Temperature),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:        s.getInt(keyTopK, d.Retrieval.TopK),
			MaxDistance: s.getFloat(keyMaxDistance, d.Retrieval.MaxDistance),
		},
		Index: domain.IndexSettings{
			Backend:    s.getBackend(d.Index.Backend),
			Path:       s.getString(keyIndexPath, d.Index.Path),
			Collection: s.getString(keyIndexCollection, d.Index.Collection),
			QdrantHost: s.getString(keyQdrantHost, d.Index.QdrantHost),
			QdrantPort: s.getInt(keyQdrantPort, d.Index.QdrantPort),
		},
		Corpus: domain.CorpusSettings{
			InputDir: s.getString(keyCorpusInputDir, d.Corpus.InputDir),
			Pattern:  s.getString(keyCorpusPattern, d.Corpus.Pattern),
		},
		Crawl: domain.CrawlSettings{
			MaxPages:      s.getInt(keyCrawlMaxPages, d.Crawl.MaxPages),
			Depth:         s.getInt(keyCrawlDepth, d.Crawl.Depth),
			DelayMillis:   s.getInt(keyCrawlDelay, d.Crawl.DelayMillis),
			MinTextLength: s.getInt(keyCrawlMinTextSize, d.Crawl.MinTextLength),
		},
	}

	if settings.Embedding.BaseURL == "" && settings.Embedding.Provider.IsLocal() {
		settings.Embedding.BaseURL = d.Embedding.BaseURL
	}

	// Model defaults follow the provider.
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyAppName, settings.AppName},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyTopK, settings.Retrieval.TopK},
		{keyMaxDistance, settings.Retrieval.MaxDistance},
		{keyIndexBackend, settings.Index.Backend.String()},
		{keyIndexPath, settings.Index.Path},
		{keyIndexCollection, settings.Index.Collection},
		{keyQdrantHost, settings.Index.QdrantHost},
		{keyQdrantPort, settings.Index.QdrantPort},
		{keyCorpusInputDir, settings.Corpus.InputDir},
		{keyCorpusPattern, settings.Corpus.Pattern},
		{keyCrawlMaxPages, settings.Crawl.MaxPages},
		{keyCrawlDepth, settings.Crawl.Depth},
		{keyCrawlDelay, settings.Crawl.DelayMillis},
		{keyCrawlMinTextSize, settings.Crawl.MinTextLength},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when set, so environment keys stay out of the file.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// Set parses value according to the type of key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer: %w", domain.ErrInvalidInput, key, err)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number: %w", domain.ErrInvalidInput, key, err)
		}
		parsed = f
	default:
		parsed = value
	}

	switch key {
	case keyEmbedProvider, keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
	case keyIndexBackend:
		if !domain.IndexBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, value)
		}
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the current settings against their constraints.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
		}
		return err
	}

	if !settings.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider %q", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if !settings.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider %q", domain.ErrInvalidInput, settings.LLM.Provider)
	}
	if !settings.Index.Backend.IsValid() {
		return fmt.Errorf("%w: invalid index backend %q", domain.ErrInvalidInput, settings.Index.Backend)
	}

	return nil
}

// GetDefaults returns default settings with paths resolved against the data home.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	d := domain.DefaultAppSettings()
	d.Index.Path = filepath.Join(s.homeDir, defaultIndexDir)
	d.Corpus.InputDir = filepath.Join(s.homeDir, defaultCorpusDir)
	return d
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.
// Numeric keys fall back only when absent, so an explicit zero is kept.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	p := domain.AIProvider(s.configStore.GetString(key))
	if !p.IsValid() {
		return defaultVal
	}
	return p
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	b := domain.IndexBackend(s.configStore.GetString(keyIndexBackend))
	if !b.IsValid() {
		return defaultVal
	}
	return b
}
