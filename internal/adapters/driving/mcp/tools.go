package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query       string  `json:"query" jsonschema:"the question or keywords to look up"`
	K           int     `json:"k,omitempty" jsonschema:"maximum number of passages to return (defaults to the configured top k)"`
	MaxDistance float64 `json:"max_distance,omitempty" jsonschema:"cosine distance threshold (defaults to the configured maximum)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput represents a single retrieved passage.
type PassageOutput struct {
	ChunkID  string   `json:"chunk_id"`
	Source   string   `json:"source"`
	Page     string   `json:"page,omitempty"`
	Text     string   `json:"text"`
	Distance *float64 `json:"distance,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Message string `json:"message" jsonschema:"the user's message to Ayten, in Turkish"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string          `json:"answer"`
	Passages []PassageOutput `json:"passages,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find passages about Gaziantep cooking in the indexed recipe books",
	}, s.handleRetrieve)

	if s.ports.Ask != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Ask Ayten, a Gaziantep cooking assistant, a question answered from the recipe books",
		}, s.handleAsk)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	opts := s.ports.retrieveDefaults()
	if input.K > 0 {
		opts.K = input.K
	}
	if input.MaxDistance > 0 {
		opts.MaxDistance = input.MaxDistance
	}

	results, err := s.ports.Retriever.Retrieve(ctx, input.Query, opts)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{
		Passages: toPassages(results),
		Count:    len(results),
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Ask == nil {
		return nil, AskOutput{}, ErrAskUnavailable
	}

	answer, err := s.ports.Ask.Ask(ctx, input.Message)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:   answer.Text,
		Passages: toPassages(answer.Context),
	}, nil
}

func toPassages(results []domain.RetrievalResult) []PassageOutput {
	out := make([]PassageOutput, len(results))
	for i, r := range results {
		out[i] = PassageOutput{
			ChunkID:  r.ChunkID,
			Source:   r.Source(),
			Page:     r.Metadata[domain.MetaPage],
			Text:     r.Text,
			Distance: r.Distance,
		}
	}
	return out
}
