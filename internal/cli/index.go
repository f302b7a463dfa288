package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/sdkref/internal/indexer"
	"github.com/mvp-joe/sdkref/internal/watcher"
)

var (
	quietFlag bool
	watchFlag bool
	forceFlag bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Extract SDK symbols and build the search index",
	Long: `Index walks the configured sources, extracts the public symbols of every
Go, Python and TypeScript file and stores them in the symbol database and
the full-text search index under .sdkref/.

Files whose content has not changed since the last run are skipped, and
files that disappeared are removed from the index.

Examples:
  # Index the current directory
  sdkref index

  # Index with progress bars disabled
  sdkref index --quiet

  # Re-extract every file, ignoring stored content hashes
  sdkref index --force

  # Keep the index up to date as files change
  sdkref index --watch
`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and reindex incrementally")
	indexCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Re-extract files even when their content is unchanged")
}

func runIndex(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling indexing...")
			cancel()
		case <-ctx.Done():
		}
	}()

	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	ws, err := openWorkspace(rootDir)
	if err != nil {
		return err
	}
	defer ws.Close()

	if watchFlag {
		return runIndexWatch(ctx, ws)
	}

	idx, err := ws.newIndexer(forceFlag, newProgressReporter(cmd.OutOrStdout(), quietFlag))
	if err != nil {
		return err
	}
	defer idx.Close()

	if _, err := idx.Run(ctx); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	return nil
}

// runIndexWatch performs an initial pass and then reindexes changed files
// until the context is cancelled. Per-pass summaries go to the log.
func runIndexWatch(ctx context.Context, ws *workspace) error {
	idx, err := ws.newIndexer(forceFlag, &indexer.NoOpProgressReporter{})
	if err != nil {
		return err
	}
	defer idx.Close()

	fw, err := ws.newWatcher()
	if err != nil {
		return err
	}

	if !quietFlag {
		fmt.Fprintln(os.Stderr, "Watching for changes (Ctrl+C to stop)...")
	}

	coordinator := watcher.NewWatchCoordinator(fw, idx)
	if err := coordinator.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
