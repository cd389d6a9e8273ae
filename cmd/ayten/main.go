// Command ayten is a Gaziantep cooking assistant that answers from an
// indexed collection of recipe books and crawled pages.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/roswate/ayten-bot/internal/adapters/driven/ai"
	"github.com/roswate/ayten-bot/internal/adapters/driven/config/file"
	"github.com/roswate/ayten-bot/internal/adapters/driven/storage/memory"
	"github.com/roswate/ayten-bot/internal/adapters/driven/storage/sqlite"
	"github.com/roswate/ayten-bot/internal/adapters/driven/vector/qdrant"
	"github.com/roswate/ayten-bot/internal/adapters/driving/cli"
	"github.com/roswate/ayten-bot/internal/chunker"
	"github.com/roswate/ayten-bot/internal/connectors/filesystem"
	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
	"github.com/roswate/ayten-bot/internal/core/services"
	"github.com/roswate/ayten-bot/internal/loaders"
	"github.com/roswate/ayten-bot/internal/loaders/pdf"
	"github.com/roswate/ayten-bot/internal/loaders/plaintext"
	"github.com/roswate/ayten-bot/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

// qdrantAPIKeyEnv holds the optional Qdrant API key.
const qdrantAPIKeyEnv = "QDRANT_API_KEY"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment and config file still apply.
	_ = godotenv.Load()

	home, err := file.HomeDir()
	if err != nil {
		return err
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator(), home)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	index, manifest, closeIndex, err := openIndex(settings.Index)
	if err != nil {
		return err
	}
	defer closeIndex()

	s := cli.Services{
		Settings:   settingsService,
		Status:     services.NewStatusService(index, manifest, settings.Index.Backend),
		Connectors: connectorFactory,
		HomeDir:    home,
		ConfigPath: configStore.Path(),
	}

	// The pipeline services need a configured embedding provider. Without one
	// the config and status commands still work and the rest report why.
	embedder, err := ai.NewEmbeddingService(&settings.Embedding)
	if err != nil {
		s.Unavailable = err
		logger.Debug("Embedding unavailable: %v", err)
	} else {
		defer embedder.Close()

		chunk, err := chunker.New(
			chunker.WithSize(settings.Chunking.Size),
			chunker.WithOverlap(settings.Chunking.Overlap),
		)
		if err != nil {
			return fmt.Errorf("chunking settings: %w", err)
		}

		registry := loaders.NewRegistry(pdf.New(), plaintext.New())
		retriever := services.NewRetrieverService(embedder, index, manifest)

		s.Ingest = services.NewIngestService(registry, chunk, embedder, index, manifest, connectorFactory)
		s.Retriever = retriever

		ask, llm, err := newAskService(settings, retriever, home)
		if err != nil {
			s.Unavailable = err
			logger.Debug("Generator unavailable: %v", err)
		} else {
			defer llm.Close()
			s.Ask = ask
		}
	}

	cli.SetServices(s)
	cli.SetVersion(version)
	return cli.Execute()
}

// openIndex opens the configured vector index and the file manifest.
// The Qdrant backend keeps its manifest in the local SQLite database.
func openIndex(cfg domain.IndexSettings) (driven.IndexStore, driven.ManifestStore, func(), error) {
	switch cfg.Backend {
	case domain.IndexBackendMemory:
		return memory.NewIndexStore(cfg.Collection), memory.NewManifestStore(), func() {}, nil

	case domain.IndexBackendQdrant:
		db, err := sqlite.NewStore(cfg.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open manifest: %w", err)
		}
		store, err := qdrant.New(qdrant.Config{
			Host:       cfg.QdrantHost,
			Port:       cfg.QdrantPort,
			APIKey:     os.Getenv(qdrantAPIKeyEnv),
			Collection: cfg.Collection,
		})
		if err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		closeAll := func() {
			_ = store.Close()
			_ = db.Close()
		}
		return store, db.ManifestStore(), closeAll, nil

	case domain.IndexBackendSQLite, "":
		db, err := sqlite.NewStore(cfg.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open index: %w", err)
		}
		return db.IndexStore(cfg.Collection), db.ManifestStore(), func() { _ = db.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}

// newAskService connects the generator and returns it alongside the
// service so the caller can close it.
func newAskService(
	settings *domain.AppSettings, retriever *services.RetrieverService, home string,
) (*services.AskService, driven.LLMService, error) {
	llm, err := ai.CreateLLMService(context.Background(), &settings.LLM)
	if err != nil {
		if !errors.Is(err, domain.ErrLLMUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		return nil, nil, err
	}

	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		_ = llm.Close()
		return nil, nil, err
	}

	ask := services.NewAskService(retriever, llm, prompts, services.AskConfig{
		Retrieve: domain.RetrieveOptions{
			K:           settings.Retrieval.TopK,
			MaxDistance: settings.Retrieval.MaxDistance,
		},
		Temperature: settings.LLM.Temperature,
	})
	return ask, llm, nil
}

// connectorFactory opens a filesystem connector over the corpus directory.
func connectorFactory(root, pattern string) (driven.Connector, error) {
	return filesystem.New(root, pattern)
}
