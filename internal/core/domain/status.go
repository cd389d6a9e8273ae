package domain

// IndexStatus describes the state of the active collection.
type IndexStatus struct {
	// Collection is the collection binding, nil if nothing was ingested yet.
	Collection *Collection

	// Backend is the configured index backend.
	Backend IndexBackend

	// Chunks is the number of entries in the index.
	Chunks int

	// Files lists the ingested files ordered by source.
	Files []IngestedFile
}

// FileCount returns the number of ingested files.
func (s IndexStatus) FileCount() int {
	return len(s.Files)
}
