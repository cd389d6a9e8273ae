package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Ayten resources.
	uriScheme = "ayten://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Index collection, embedding model and ingested files",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

type statusFile struct {
	Source     string    `json:"source"`
	Pages      int       `json:"pages"`
	Chunks     int       `json:"chunks"`
	IngestedAt time.Time `json:"ingested_at"`
}

type statusInfo struct {
	Collection string       `json:"collection,omitempty"`
	Backend    string       `json:"backend"`
	Model      string       `json:"model,omitempty"`
	Dimensions int          `json:"dimensions,omitempty"`
	Chunks     int          `json:"chunks"`
	Files      []statusFile `json:"files"`
}

// handleStatusResource returns the index status as JSON.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := statusInfo{Files: []statusFile{}}

	if s.ports.Status != nil {
		status, err := s.ports.Status.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading status: %w", err)
		}
		info.Backend = status.Backend.String()
		info.Chunks = status.Chunks
		if c := status.Collection; c != nil {
			info.Collection = c.Name
			info.Model = c.Model
			info.Dimensions = c.Dimensions
		}
		for _, f := range status.Files {
			info.Files = append(info.Files, statusFile{
				Source:     f.Source,
				Pages:      f.Pages,
				Chunks:     f.Chunks,
				IngestedAt: f.IngestedAt,
			})
		}
	}

	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
