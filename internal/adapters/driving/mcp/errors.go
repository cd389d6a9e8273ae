// Package mcp provides an MCP (Model Context Protocol) server adapter for Ayten.
// It lets AI assistants retrieve recipe passages from the local index and
// ask Ayten directly.
package mcp

import "errors"

// ErrMissingRetrieverService is returned when the retriever is not provided.
var ErrMissingRetrieverService = errors.New("mcp: retriever service is required")

// ErrAskUnavailable is returned by the ask tool when no generator is configured.
var ErrAskUnavailable = errors.New("mcp: ask is not available without an LLM provider")
