package driven

import (
	"context"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// Loader extracts plain text from one kind of document.
// Loaders never chunk or index; they only return pages.
type Loader interface {
	// SupportedMIMETypes returns the MIME types this loader handles.
	SupportedMIMETypes() []string

	// Load returns the pages of the document in order.
	// A page that cannot be extracted is returned with empty Text and a non-nil Err.
	// An error is returned only when the document cannot be read at all.
	Load(ctx context.Context, raw *domain.RawDocument) ([]domain.Page, error)
}
