// ABOUTME: MCP server initialization and configuration
// ABOUTME: Sets up server with trip and point tools and resources for AI agents

package mcp

import (
	"context"
	"fmt"

	"github.com/harper/wander/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with the wander store.
type Server struct {
	mcp   *mcp.Server
	store *storage.Store
}

// NewServer creates MCP server with all capabilities.
func NewServer(store *storage.Store) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "wander",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:   mcpServer,
		store: store,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
