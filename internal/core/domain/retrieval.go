package domain

import "time"

// Default retrieval parameters.
const (
	DefaultTopK        = 4
	DefaultMaxDistance = 0.28
)

// RetrieveOptions configures a retrieval query.
type RetrieveOptions struct {
	// K is the number of nearest chunks requested from the index.
	K int

	// MaxDistance drops any result whose distance exceeds it.
	MaxDistance float64
}

// DefaultRetrieveOptions returns the reference top-k and distance threshold.
func DefaultRetrieveOptions() RetrieveOptions {
	return RetrieveOptions{K: DefaultTopK, MaxDistance: DefaultMaxDistance}
}

// RetrievalResult is a chunk returned for a query.
type RetrievalResult struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// Text is the chunk content.
	Text string

	// Metadata carries source, page and chunk sequence.
	Metadata map[string]string

	// Distance is the cosine distance to the query.
	// Nil when the backing store did not report one.
	Distance *float64
}

// Source returns the source file name from the metadata.
func (r RetrievalResult) Source() string {
	return r.Metadata[MetaSource]
}

// Metric is a vector distance metric.
type Metric string

// MetricCosine is cosine distance (1 - cosine similarity).
const MetricCosine Metric = "cosine"

// Collection is a named vector collection.
// Metric, model and dimensions are fixed when the collection is created.
type Collection struct {
	Name       string
	Metric     Metric
	Model      string
	Dimensions int
	CreatedAt  time.Time
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 {
	return &f
}
