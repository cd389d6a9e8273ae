package driven

import (
	"context"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// Connector lists corpus documents and optionally watches for changes.
type Connector interface {
	// Root returns the directory or location the connector reads from.
	Root() string

	// FullSync emits every matching document.
	// The error channel carries per-item and fatal errors and is closed when done.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch emits changes until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close releases resources.
	Close() error
}

// ConnectorFactory opens a connector over root for files matching pattern.
type ConnectorFactory func(root, pattern string) (Connector, error)
