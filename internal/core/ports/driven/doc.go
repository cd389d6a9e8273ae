// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Ingestion Path
//
//   - Connector: Lists and watches corpus files
//   - Loader: Extracts page text from one file type (PDF, TXT)
//   - LoaderRegistry: Selects a loader by MIME type
//   - EmbeddingService: Generates normalised vector embeddings
//   - IndexStore: Persistent vector collection with idempotent upsert
//   - ManifestStore: Collection bindings and per-file ingestion records
//
// # Query Path
//
//   - EmbeddingService and IndexStore, shared with ingestion
//   - LLMService: The external generator, treated as generate(prompt) -> text
//   - PromptStore: Persona and style-guard prompts
//
// # Configuration
//
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or loader package
package driven
