// Package plaintext loads UTF-8 text files as a single unpaged page.
package plaintext

import (
	"bytes"
	"context"
	"errors"
	"unicode/utf8"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// errInvalidUTF8 is returned for files that are not valid UTF-8.
var errInvalidUTF8 = errors.New("invalid UTF-8")

// Loader handles plain text documents.
type Loader struct{}

// New creates a new plain text loader.
func New() *Loader {
	return &Loader{}
}

// SupportedMIMETypes returns the MIME types this loader handles.
func (l *Loader) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
	}
}

// Load returns the whole file as page 0.
func (l *Loader) Load(_ context.Context, raw *domain.RawDocument) ([]domain.Page, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := bytes.TrimPrefix(raw.Content, utf8BOM)
	if !utf8.Valid(content) {
		return nil, &domain.LoadError{Source: raw.Name, Err: errInvalidUTF8}
	}

	return []domain.Page{{Number: 0, Text: string(content)}}, nil
}
