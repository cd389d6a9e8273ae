package mcp

import (
	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retriever finds passages relevant to a query.
	Retriever driving.RetrieverService

	// Ask answers questions as Ayten. Optional.
	Ask driving.AskService

	// Status reports the index contents. Optional.
	Status driving.StatusService

	// RetrieveDefaults are the configured top-k and distance threshold used
	// by the retrieve tool when the caller does not set them. Zero fields
	// fall back to domain.DefaultRetrieveOptions.
	RetrieveDefaults domain.RetrieveOptions
}

// retrieveDefaults returns RetrieveDefaults with unset fields filled in.
func (p *Ports) retrieveDefaults() domain.RetrieveOptions {
	opts := domain.DefaultRetrieveOptions()
	if p.RetrieveDefaults.K > 0 {
		opts.K = p.RetrieveDefaults.K
	}
	if p.RetrieveDefaults.MaxDistance > 0 {
		opts.MaxDistance = p.RetrieveDefaults.MaxDistance
	}
	return opts
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetrieverService
	}
	return nil
}
