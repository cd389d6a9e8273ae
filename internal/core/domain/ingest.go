package domain

import "time"

// IngestedFile records what was indexed for a source file.
// It lets re-ingestion skip unchanged files and prune stale chunks.
type IngestedFile struct {
	Collection string
	Source     string
	Path       string
	Hash       string
	Pages      int
	Chunks     int
	IngestedAt time.Time
}

// FileResult is the outcome of ingesting one file.
type FileResult struct {
	Source      string
	Chunks      int
	Pages       int
	PagesFailed int
	Unchanged   bool
}

// IngestReport summarises an ingestion run.
// Per-file load failures are counted, not returned as errors.
type IngestReport struct {
	// Succeeded is the number of files indexed (or already up to date).
	Succeeded int

	// Skipped is the number of files that could not be loaded.
	Skipped int

	// Unchanged is the number of files skipped because their content hash matched.
	Unchanged int

	// Chunks is the number of chunks upserted.
	Chunks int

	// PagesFailed is the number of PDF pages that yielded no text due to errors.
	PagesFailed int

	// Files holds per-file results in processing order.
	Files []FileResult

	// Failures holds the load errors behind Skipped.
	Failures []*LoadError
}

// Add merges a file result into the report.
func (r *IngestReport) Add(res FileResult) {
	r.Succeeded++
	if res.Unchanged {
		r.Unchanged++
	}
	r.Chunks += res.Chunks
	r.PagesFailed += res.PagesFailed
	r.Files = append(r.Files, res)
}

// Skip records a file that could not be loaded.
func (r *IngestReport) Skip(err *LoadError) {
	r.Skipped++
	r.Failures = append(r.Failures, err)
}

// IngestOptions configures an ingestion run.
type IngestOptions struct {
	// Force re-indexes files even when their content hash is unchanged.
	Force bool
}
