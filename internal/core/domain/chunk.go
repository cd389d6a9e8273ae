package domain

import "strconv"

// Metadata keys attached to every chunk.
const (
	MetaSource = "source"
	MetaPage   = "page"
	MetaChunk  = "chunk"
)

// Chunk is a bounded, overlapping window of source text.
// Chunks are the atomic unit of indexing.
type Chunk struct {
	// ID is deterministic so re-ingesting the same input overwrites entries.
	ID string

	// Source is the file name the chunk was read from.
	Source string

	// Page is the 1-based PDF page number, or 0 for unpaged sources.
	Page int

	// Sequence is the chunk index within its source page.
	Sequence int

	// Content is the normalised text of the window.
	Content string

	// Embedding is the L2-normalised vector for Content.
	Embedding []float32

	// Metadata carries source, page and chunk sequence as strings.
	Metadata map[string]string
}

// NewChunk builds a chunk with its deterministic ID and metadata.
func NewChunk(source string, page, sequence int, content string) Chunk {
	return Chunk{
		ID:       ChunkID(source, page, sequence),
		Source:   source,
		Page:     page,
		Sequence: sequence,
		Content:  content,
		Metadata: ChunkMetadata(source, page, sequence),
	}
}

// ChunkID returns "{source}_p{page}_c{seq}" for paged sources
// and "{source}_c{seq}" otherwise.
func ChunkID(source string, page, sequence int) string {
	if page > 0 {
		return source + "_p" + strconv.Itoa(page) + "_c" + strconv.Itoa(sequence)
	}
	return source + "_c" + strconv.Itoa(sequence)
}

// ChunkMetadata returns the metadata map stored next to a chunk.
// The page is empty for unpaged sources.
func ChunkMetadata(source string, page, sequence int) map[string]string {
	p := ""
	if page > 0 {
		p = strconv.Itoa(page)
	}
	return map[string]string{
		MetaSource: source,
		MetaPage:   p,
		MetaChunk:  strconv.Itoa(sequence),
	}
}
