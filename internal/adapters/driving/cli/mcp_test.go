package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_Long(t *testing.T) {
	assert.Contains(t, mcpServeCmd.Long, "ayten mcp serve")
	assert.Contains(t, mcpServeCmd.Long, "retrieve and ask")
}

func TestMCPServeCmd_RequiresRetriever(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	retrieverService = nil

	_, err := execute(t, "mcp", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retriever service not configured")
}

func TestMCPPorts_CarryRetrievalSettings(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Retrieval = domain.RetrievalSettings{TopK: 5, MaxDistance: 0.25}

	ports := mcpPorts()

	assert.Equal(t, domain.RetrieveOptions{K: 5, MaxDistance: 0.25}, ports.RetrieveDefaults)
	assert.Equal(t, ts.retriever, ports.Retriever)
	assert.Equal(t, ts.ask, ports.Ask)
}
