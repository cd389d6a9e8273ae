package driven

import (
	"context"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// LoaderRegistry selects the appropriate loader for a document.
type LoaderRegistry interface {
	// Load extracts pages using the loader registered for the document's MIME type.
	// Returns domain.ErrUnsupportedType when no loader matches.
	Load(ctx context.Context, raw *domain.RawDocument) ([]domain.Page, error)

	// Register adds a loader to the registry.
	Register(loader Loader)

	// SupportedMIMETypes returns all MIME types that can be loaded.
	SupportedMIMETypes() []string
}
