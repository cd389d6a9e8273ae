// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The ingestion pipeline (IngestService) loads, chunks, embeds and indexes
// documents. RetrieverService and AskService answer queries against the
// index, and BuildPrompt assembles the generator prompt.
//
// Services are pure Go with no CGO or external dependencies.
package services
