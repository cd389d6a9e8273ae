package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API or a compatible server.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend selects where vectors are stored.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite stores vectors in a local SQLite database.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendQdrant stores vectors in a Qdrant server.
	IndexBackendQdrant IndexBackend = "qdrant"

	// IndexBackendMemory keeps vectors in process memory only.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendQdrant, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// ChunkingSettings holds the window size and overlap in characters.
type ChunkingSettings struct {
	Size    int `validate:"gt=0"`
	Overlap int `validate:"gte=0,ltfield=Size"`
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string `validate:"required"`

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generator configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Temperature controls sampling randomness.
	Temperature float64 `validate:"gte=0,lte=2"`
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings holds top-k and the distance threshold.
type RetrievalSettings struct {
	TopK        int     `validate:"gt=0"`
	MaxDistance float64 `validate:"gte=0,lte=2"`
}

// IndexSettings holds index store configuration.
type IndexSettings struct {
	// Backend selects the vector store.
	Backend IndexBackend

	// Path is the on-disk directory for the SQLite backend.
	Path string `validate:"required"`

	// Collection is the collection name.
	Collection string `validate:"required"`

	// QdrantHost and QdrantPort locate the Qdrant gRPC endpoint.
	QdrantHost string
	QdrantPort int
}

// CorpusSettings locates the input documents.
type CorpusSettings struct {
	// InputDir is the directory scanned for documents.
	InputDir string `validate:"required"`

	// Pattern is a glob matched against file names.
	Pattern string `validate:"required"`
}

// CrawlSettings holds web crawler defaults.
type CrawlSettings struct {
	MaxPages      int `validate:"gt=0"`
	Depth         int `validate:"gte=0"`
	DelayMillis   int `validate:"gte=0"`
	MinTextLength int `validate:"gte=0"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	// AppName is the display name of the assistant.
	AppName string

	Chunking  ChunkingSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Index     IndexSettings
	Corpus    CorpusSettings
	Crawl     CrawlSettings
}

// Defaults for the ingestion and retrieval pipeline.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 150
	DefaultCollection   = "ayten_docs"
	DefaultPattern      = "*.{pdf,txt}"
	DefaultAppName      = "Ayten — Gaziantep Mutfağı Asistanı"
)

// DefaultAppSettings returns settings with the reference defaults.
// Paths are left empty and resolved against the data directory by the caller.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		AppName: DefaultAppName,
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
			BaseURL:  "http://localhost:11434",
		},
		LLM: LLMSettings{
			Provider:    AIProviderGemini,
			Model:       DefaultLLMModels()[AIProviderGemini],
			Temperature: 0.7,
		},
		Retrieval: RetrievalSettings{
			TopK:        DefaultTopK,
			MaxDistance: DefaultMaxDistance,
		},
		Index: IndexSettings{
			Backend:    IndexBackendSQLite,
			Collection: DefaultCollection,
			QdrantHost: "localhost",
			QdrantPort: 6334,
		},
		Corpus: CorpusSettings{
			Pattern: DefaultPattern,
		},
		Crawl: CrawlSettings{
			MaxPages:      30,
			Depth:         1,
			DelayMillis:   400,
			MinTextLength: 120,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "paraphrase-multilingual",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.5-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"paraphrase-multilingual": 768,
		"nomic-embed-text":        768,
		"mxbai-embed-large":       1024,
		"all-minilm":              384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
