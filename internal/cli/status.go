package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/sdkref/internal/storage"
)

var statusJSONFlag bool

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the index contains",
	Long: `Status reports the number of indexed files, symbols and search documents,
with per-language and per-kind symbol counts.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSONFlag, "json", false, "Print status as JSON")
}

// indexStatus is the status command's report.
type indexStatus struct {
	*storage.Stats
	Documents uint64 `json:"documents"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	exists, err := indexExists(rootDir)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintln(cmd.OutOrStdout(), "Not indexed. Run 'sdkref index' first.")
		return nil
	}

	ws, err := openWorkspace(rootDir)
	if err != nil {
		return err
	}
	defer ws.Close()

	stats, err := ws.store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	docs, err := ws.index.Count()
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}

	status := indexStatus{Stats: stats, Documents: docs}
	if statusJSONFlag {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}
	printStatus(cmd.OutOrStdout(), status)
	return nil
}

func printStatus(w io.Writer, status indexStatus) {
	fmt.Fprintf(w, "Files:     %s\n", formatNumber(status.Files))
	fmt.Fprintf(w, "Symbols:   %s\n", formatNumber(status.Symbols))
	fmt.Fprintf(w, "Documents: %s\n", formatNumber(int(status.Documents)))

	printCounts(w, "By language", status.ByLanguage)
	printCounts(w, "By kind", status.ByKind)
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-12s %s\n", k, formatNumber(counts[k]))
	}
}
