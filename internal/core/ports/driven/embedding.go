package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - Ollama (paraphrase-multilingual, nomic-embed-text)
//   - OpenAI (text-embedding-3-small) and compatible servers
//   - Google Gemini (text-embedding-004)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one embedding per text, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This is determined by the model and is fixed per collection.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable and the model loads.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Device selects where a local embedding model executes.
type Device string

// Supported devices.
const (
	// DeviceAuto lets the runtime pick (GPU when available).
	DeviceAuto Device = "auto"

	// DeviceCPU forces CPU-only execution.
	DeviceCPU Device = "cpu"
)

// EmbeddingFactory creates an embedding service for a device.
// Remote providers may ignore the device.
type EmbeddingFactory func(ctx context.Context, device Device) (EmbeddingService, error)
