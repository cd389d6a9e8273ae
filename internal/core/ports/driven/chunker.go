package driven

import "github.com/roswate/ayten-bot/internal/core/domain"

// Chunker splits extracted pages into tagged, overlapping chunks.
type Chunker interface {
	// ChunkPages returns the chunks of all pages in page order.
	// Pages that failed extraction yield no chunks.
	ChunkPages(source string, pages []domain.Page) []domain.Chunk
}
