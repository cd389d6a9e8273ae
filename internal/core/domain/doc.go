// Package domain defines the core business entities for Ayten.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded window of source text, the atomic unit of indexing
//   - RawDocument: Opaque bytes read from the corpus directory or the crawler
//   - Page: Extracted text of one PDF page (or a whole TXT file)
//   - Collection: A named vector collection bound to one model and metric
//   - RetrievalResult: A chunk returned for a query with its distance
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
