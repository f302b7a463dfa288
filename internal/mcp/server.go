package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
)

// ServerName is the name reported to MCP clients.
const ServerName = "sdkref"

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	mcp *server.MCPServer
}

// NewMCPServer creates an MCP server exposing the symbol tools. The searcher
// and reader are owned by the caller.
func NewMCPServer(version string, searcher SymbolSearcher, reader SymbolReader) (*MCPServer, error) {
	if searcher == nil {
		return nil, fmt.Errorf("symbol searcher is required")
	}
	if reader == nil {
		return nil, fmt.Errorf("symbol reader is required")
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	AddSymbolSearchTool(mcpServer, searcher)
	AddFileSymbolsTool(mcpServer, reader)

	return &MCPServer{mcp: mcpServer}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
