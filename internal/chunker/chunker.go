// Package chunker splits extracted page text into overlapping fixed-size windows.
package chunker

import (
	"fmt"
	"strings"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// Chunker splits text into windows of Size runes that share Overlap runes
// with their predecessor.
type Chunker struct {
	size    int
	overlap int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithSize sets the window size in characters.
func WithSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets the number of characters shared by consecutive windows.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker. It defaults to 800 characters with 150 overlap.
// An overlap that is not smaller than the size is rejected, since the
// window cursor would never advance.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:    domain.DefaultChunkSize,
		overlap: domain.DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", domain.ErrInvalidInput, c.size)
	}
	if c.overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap %d", domain.ErrInvalidInput, c.overlap)
	}
	if c.overlap >= c.size {
		return nil, fmt.Errorf("%w: overlap %d, size %d", domain.ErrInvalidOverlap, c.overlap, c.size)
	}
	return c, nil
}

// Size returns the window size.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the window overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Normalize collapses every whitespace run to a single space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Split normalises text and cuts it into windows.
// Every window except the last has exactly Size characters and the
// last window ends at the end of the text. Empty input yields nil.
func (c *Chunker) Split(text string) []string {
	runes := []rune(Normalize(text))
	n := len(runes)
	if n == 0 {
		return nil
	}

	step := c.size - c.overlap
	windows := make([]string, 0, n/step+1)
	for i := 0; ; {
		j := min(n, i+c.size)
		windows = append(windows, string(runes[i:j]))
		if j == n {
			break
		}
		i = j - c.overlap
	}
	return windows
}

// ChunkPage splits one page of a source into chunks with deterministic IDs.
// Pages that failed extraction or hold only whitespace produce no chunks.
func (c *Chunker) ChunkPage(source string, page domain.Page) []domain.Chunk {
	if page.Err != nil {
		return nil
	}
	windows := c.Split(page.Text)
	if len(windows) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, 0, len(windows))
	for seq, w := range windows {
		chunks = append(chunks, domain.NewChunk(source, page.Number, seq, w))
	}
	return chunks
}

// ChunkPages chunks every page of a source in page order.
func (c *Chunker) ChunkPages(source string, pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	for _, p := range pages {
		chunks = append(chunks, c.ChunkPage(source, p)...)
	}
	return chunks
}
