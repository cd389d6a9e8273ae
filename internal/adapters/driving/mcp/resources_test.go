package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns status as JSON", func(t *testing.T) {
		ingested := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
		mockStatus := &mockStatusService{status: &domain.IndexStatus{
			Collection: &domain.Collection{
				Name:       "ayten_docs",
				Metric:     domain.MetricCosine,
				Model:      "paraphrase-multilingual",
				Dimensions: 768,
			},
			Backend: domain.IndexBackendSQLite,
			Chunks:  42,
			Files: []domain.IngestedFile{
				{Source: "tarifler.pdf", Pages: 12, Chunks: 42, IngestedAt: ingested},
			},
		}}
		server, err := NewServer(&Ports{Retriever: &mockRetrieverService{}, Status: mockStatus})
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest("ayten://status"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "ayten://status", result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var info statusInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &info))
		assert.Equal(t, "ayten_docs", info.Collection)
		assert.Equal(t, "sqlite", info.Backend)
		assert.Equal(t, "paraphrase-multilingual", info.Model)
		assert.Equal(t, 768, info.Dimensions)
		assert.Equal(t, 42, info.Chunks)
		require.Len(t, info.Files, 1)
		assert.Equal(t, "tarifler.pdf", info.Files[0].Source)
		assert.True(t, ingested.Equal(info.Files[0].IngestedAt))
	})

	t.Run("empty without status service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetrieverService{}})
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest("ayten://status"))

		require.NoError(t, err)
		assert.JSONEq(t, `{"backend":"","chunks":0,"files":[]}`, result.Contents[0].Text)
	})

	t.Run("returns error on status failure", func(t *testing.T) {
		mockStatus := &mockStatusService{err: errors.New("db locked")}
		server, err := NewServer(&Ports{Retriever: &mockRetrieverService{}, Status: mockStatus})
		require.NoError(t, err)

		_, err = server.handleStatusResource(ctx, makeReadResourceRequest("ayten://status"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "db locked")
	})
}
