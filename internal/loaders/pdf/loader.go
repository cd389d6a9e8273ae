// Package pdf extracts text from PDF documents page by page.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
	"github.com/roswate/ayten-bot/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// errNoPage is recorded for page objects missing from the page tree.
var errNoPage = errors.New("page object missing")

// Loader handles PDF documents.
type Loader struct{}

// New creates a new PDF loader.
func New() *Loader {
	return &Loader{}
}

// SupportedMIMETypes returns the MIME types this loader handles.
func (l *Loader) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Load extracts the text of every page in order.
// Pages that fail are returned with empty text and a *domain.LoadError,
// and extraction continues with the next page.
func (l *Loader) Load(ctx context.Context, raw *domain.RawDocument) (pages []domain.Page, err error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := open(raw.Content)
	if err != nil {
		return nil, &domain.LoadError{Source: raw.Name, Err: err}
	}

	n := reader.NumPage()
	pages = make([]domain.Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, perr := pageText(reader, i)
		if perr != nil {
			logger.Debug("pdf: %s page %d: %v", raw.Name, i, perr)
			pages = append(pages, domain.Page{
				Number: i,
				Err:    &domain.LoadError{Source: raw.Name, Page: i, Err: perr},
			})
			continue
		}
		pages = append(pages, domain.Page{Number: i, Text: text})
	}
	return pages, nil
}

// open parses the document trailer. The parser panics on some malformed
// inputs, so panics are converted to errors.
func open(content []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(content), int64(len(content)))
}

func pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed page: %v", rec)
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		return "", errNoPage
	}
	return p.GetPlainText(nil)
}
