package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roswate/ayten-bot/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes two tools, retrieve and ask, and a status resource
describing the index. By default it communicates over stdio using JSON-RPC
and can be used by any MCP-compatible client.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for desktop clients)
  ayten mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  ayten mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "ayten": {
        "command": "/path/to/ayten",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	if retrieverService == nil {
		return notConfigured("retriever service")
	}

	server, err := mcp.NewServer(mcpPorts())
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// mcpPorts collects the services and retrieval settings for the MCP server.
func mcpPorts() *mcp.Ports {
	return &mcp.Ports{
		Retriever:        retrieverService,
		Ask:              askService,
		Status:           statusService,
		RetrieveDefaults: configuredRetrieveOptions(),
	}
}
