package domain

// RawDocument represents opaque bytes read from the corpus.
// It is the input to a Loader.
type RawDocument struct {
	// Name is the file name used as the chunk source.
	Name string

	// Path is the location on disk, if any.
	Path string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Page is the extracted text of a single page.
// Unpaged sources produce one page numbered 0.
type Page struct {
	// Number is the 1-based page number, or 0 when the source has no pages.
	Number int

	// Text is the raw extracted text. It is empty when extraction failed.
	Text string

	// Err records why extraction failed for this page.
	Err error
}

// ChangeType represents the type of corpus change.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed file.
	ChangeDeleted
)

// String returns a short label for the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// RawDocumentChange represents a change event from a connector.
type RawDocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Document is the affected document. Content is empty for deletions.
	Document RawDocument
}
