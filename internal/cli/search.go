package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/sdkref/internal/search"
)

var (
	searchLimitFlag        int
	searchLanguageFlag     string
	searchNamespaceFlag    string
	searchKindFlag         string
	searchNoDeprecatedFlag bool
	searchJSONFlag         bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the symbol index",
	Long: `Search runs a full-text query against the symbol index built by
'sdkref index'. The query uses bleve query-string syntax, so field queries
such as name:Client or +comments:retry work. An empty query lists symbols
matching the filters.

Examples:
  sdkref search "create user"
  sdkref search fetch --language typescript --kind method
  sdkref search --namespace payments --no-deprecated --json
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "l", 15, "Maximum number of results (1-100)")
	searchCmd.Flags().StringVar(&searchLanguageFlag, "language", "", "Only symbols of this language (go, python, typescript)")
	searchCmd.Flags().StringVar(&searchNamespaceFlag, "namespace", "", "Only symbols of this namespace")
	searchCmd.Flags().StringVar(&searchKindFlag, "kind", "", "Only symbols of this kind (function, type, class, method)")
	searchCmd.Flags().BoolVar(&searchNoDeprecatedFlag, "no-deprecated", false, "Exclude deprecated symbols")
	searchCmd.Flags().BoolVar(&searchJSONFlag, "json", false, "Print results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	exists, err := indexExists(rootDir)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("no index found in %s; run 'sdkref index' first", rootDir)
	}

	ws, err := openWorkspace(rootDir)
	if err != nil {
		return err
	}
	defer ws.Close()

	var query string
	if len(args) > 0 {
		query = strings.TrimSpace(args[0])
	}

	opts := &search.Options{
		Limit:             searchLimitFlag,
		Language:          strings.ToLower(searchLanguageFlag),
		Namespace:         searchNamespaceFlag,
		Kind:              strings.ToLower(searchKindFlag),
		IncludeDeprecated: !searchNoDeprecatedFlag,
	}

	results, err := ws.index.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSONFlag {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if results == nil {
			results = []*search.Result{}
		}
		return enc.Encode(results)
	}
	printResults(cmd.OutOrStdout(), results)
	return nil
}

// printResults writes one block per result: location, signature and the
// first line of the doc comment.
func printResults(w io.Writer, results []*search.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}

	for i, r := range results {
		doc := r.Document
		name := doc.Name
		if doc.Parent != "" {
			name = doc.Parent + "." + doc.Name
		}

		fmt.Fprintf(w, "%d. %s [%s %s]", i+1, name, doc.Language, doc.Kind)
		if doc.Deprecated {
			fmt.Fprint(w, " (deprecated)")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "   %s\n", doc.Signature)
		fmt.Fprintf(w, "   %s:%d", doc.File, doc.Line+1)
		if doc.Namespace != "" {
			fmt.Fprintf(w, " (%s)", doc.Namespace)
		}
		fmt.Fprintln(w)
		if summary := commentSummary(doc.Comments); summary != "" {
			fmt.Fprintf(w, "   %s\n", summary)
		}
	}
}

// commentSummary returns the first non-empty comment line without its
// comment markers.
func commentSummary(comments string) string {
	for _, line := range strings.Split(comments, "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range []string{"/**", "*/", "//", "/*", "#", "*"} {
			line = strings.TrimSpace(strings.TrimPrefix(line, marker))
		}
		line = strings.TrimSpace(strings.TrimSuffix(line, "*/"))
		if line != "" {
			return line
		}
	}
	return ""
}
