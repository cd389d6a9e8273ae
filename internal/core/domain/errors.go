package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidOverlap indicates a chunk overlap that would stall the window cursor.
	ErrInvalidOverlap = errors.New("chunk overlap must be smaller than chunk size")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates a file type no loader can handle.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLoad indicates an unreadable or corrupt source file or page.
	// Ingestion skips the item and carries on with the rest.
	ErrLoad = errors.New("load failed")

	// ErrEmbeddingUnavailable indicates the embedding model could not be loaded,
	// even after the CPU fallback. Nothing downstream can proceed without vectors.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the index store is unreachable or corrupt.
	ErrIndexUnavailable = errors.New("index store unavailable")

	// ErrDimensionMismatch indicates a vector whose length differs from the collection's.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrModelMismatch indicates a collection built with a different embedding model.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrMetricMismatch indicates a collection created with another distance metric.
	ErrMetricMismatch = errors.New("distance metric mismatch")

	// ErrLLMUnavailable indicates the generation service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrGeneration indicates a transport, quota or API failure from the generator.
	ErrGeneration = errors.New("generation failed")
)

// LoadError describes a source file or page that could not be read.
// Page is zero when the whole file failed.
type LoadError struct {
	Source string
	Page   int
	Err    error
}

// Error implements error.
func (e *LoadError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("load %s page %d: %v", e.Source, e.Page, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

// Unwrap exposes both ErrLoad and the underlying cause to errors.Is.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrLoad}
	}
	return []error{ErrLoad, e.Err}
}
