package loaders

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.LoaderRegistry = (*Registry)(nil)

const octetStream = "application/octet-stream"

// Registry maps MIME types to loaders.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]driven.Loader
}

// NewRegistry creates a registry holding the given loaders.
func NewRegistry(loaders ...driven.Loader) *Registry {
	r := &Registry{loaders: make(map[string]driven.Loader)}
	for _, l := range loaders {
		r.Register(l)
	}
	return r
}

// Register adds a loader for every MIME type it supports.
// A later registration for the same type replaces the earlier one.
func (r *Registry) Register(loader driven.Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mt := range loader.SupportedMIMETypes() {
		r.loaders[baseType(mt)] = loader
	}
}

// SupportedMIMETypes returns all registered MIME types in sorted order.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.loaders))
	for mt := range r.loaders {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Detect returns the MIME type used to pick a loader for content.
// It walks the detected type's hierarchy (text/csv -> text/plain) looking
// for a registered loader, then falls back to the file extension.
func (r *Registry) Detect(name string, content []byte) string {
	detected := mimetype.Detect(content)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for m := detected; m != nil; m = m.Parent() {
		if _, ok := r.loaders[baseType(m.String())]; ok {
			return baseType(m.String())
		}
	}

	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return baseType(byExt)
	}
	return baseType(detected.String())
}

// Load extracts pages with the loader registered for raw.MIMEType.
// An empty MIME type is detected from the content first.
func (r *Registry) Load(ctx context.Context, raw *domain.RawDocument) ([]domain.Page, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if raw.MIMEType == "" || raw.MIMEType == octetStream {
		raw.MIMEType = r.Detect(raw.Name, raw.Content)
	}

	r.mu.RLock()
	loader, ok := r.loaders[baseType(raw.MIMEType)]
	r.mu.RUnlock()
	if !ok {
		return nil, &domain.LoadError{
			Source: raw.Name,
			Err:    fmt.Errorf("%w: %s", domain.ErrUnsupportedType, raw.MIMEType),
		}
	}
	return loader.Load(ctx, raw)
}

// baseType strips parameters such as charset from a MIME type.
func baseType(mt string) string {
	base, _, err := mime.ParseMediaType(mt)
	if err != nil {
		return mt
	}
	return base
}
