package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/sdkref/internal/config"
)

var cleanQuietFlag bool

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the symbol database and search index",
	Long: `Clean removes the symbol database and the search index, forcing a full
reindex on the next 'sdkref index' run.

The configuration file (.sdkref/config.yml) is preserved.

Examples:
  # Remove the index
  sdkref clean

  # Remove with minimal output
  sdkref clean --quiet
`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
}

func runClean(cmd *cobra.Command, args []string) error {
	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	idxCfg := cfg.ToIndexerConfig(rootDir)

	removed, err := removePaths(idxCfg.IndexPath, idxCfg.StoragePath)
	if err != nil {
		return err
	}

	if cleanQuietFlag {
		return nil
	}
	out := cmd.OutOrStdout()
	if removed == 0 {
		fmt.Fprintln(out, "Nothing to clean")
		return nil
	}
	fmt.Fprintln(out, "✓ Removed symbol database and search index")
	fmt.Fprintln(out, "Next 'sdkref index' will perform a full reindex")
	return nil
}

// removePaths deletes each existing path and reports how many existed.
// SQLite side files (-wal, -shm, -journal) go with the database.
func removePaths(paths ...string) (int, error) {
	removed := 0
	for _, path := range paths {
		if path == "" {
			continue
		}
		for _, p := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
			if _, err := os.Stat(p); os.IsNotExist(err) {
				continue
			}
			if err := os.RemoveAll(p); err != nil {
				return removed, fmt.Errorf("failed to remove %s: %w", p, err)
			}
			if p == path {
				removed++
			}
		}
	}
	return removed, nil
}
