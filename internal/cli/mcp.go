package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/sdkref/internal/indexer"
	"github.com/mvp-joe/sdkref/internal/mcp"
	"github.com/mvp-joe/sdkref/internal/watcher"
)

var mcpWatchFlag bool

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for SDK symbol search",
	Long: `Start the Model Context Protocol (MCP) server that lets coding assistants
search the SDK symbol index.

The MCP server:
- Serves the sdk_symbol_search and sdk_file_symbols tools
- Reads the index built by 'sdkref index'
- Communicates via stdio (standard MCP transport)

With --watch the server also indexes the project on startup and keeps the
index current as files change. The index is locked by the server while it
runs, so use --watch instead of a separate 'sdkref index --watch'.

Example:
  sdkref mcp --watch`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().BoolVarP(&mcpWatchFlag, "watch", "w", false, "Index on startup and reindex changed files")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// stdout belongs to the MCP transport.
	log.SetOutput(os.Stderr)

	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	exists, err := indexExists(rootDir)
	if err != nil {
		return err
	}
	if !exists && !mcpWatchFlag {
		log.Printf("Warning: no index found in %s; run 'sdkref index' or start with --watch", rootDir)
	}

	ws, err := openWorkspace(rootDir)
	if err != nil {
		return err
	}
	defer ws.Close()

	fmt.Fprintf(os.Stderr, "sdkref MCP Server\n")
	fmt.Fprintf(os.Stderr, "Project: %s\n", rootDir)
	fmt.Fprintf(os.Stderr, "Index:   %s\n\n", ws.idxCfg.IndexPath)

	if mcpWatchFlag {
		idx, err := ws.newIndexer(false, &indexer.NoOpProgressReporter{})
		if err != nil {
			return err
		}
		defer idx.Close()

		fw, err := ws.newWatcher()
		if err != nil {
			return err
		}

		coordinator := watcher.NewWatchCoordinator(fw, idx)
		go func() {
			if err := coordinator.Start(ctx); err != nil && ctx.Err() == nil {
				log.Printf("Error: watch mode stopped: %v", err)
			}
		}()
	}

	server, err := mcp.NewMCPServer(Version, ws.index, ws.store)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := server.Serve(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
