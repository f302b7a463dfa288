package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/sdkref/internal/indexer"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	quiet          bool
	out            io.Writer
	fileBar        *progressbar.ProgressBar
	startTime      time.Time
	totalFiles     int
	processedFiles int
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to stdout.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return newProgressReporter(os.Stdout, quiet)
}

func newProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:     quiet,
		out:       out,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Println("Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	log.Printf("Found %s source files\n", formatNumber(files))
}

func (c *CLIProgressReporter) OnExtractionStart(totalFiles int) {
	if c.quiet {
		return
	}
	c.totalFiles = totalFiles
	c.processedFiles = 0

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Extracting symbols"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(fileName string) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.processedFiles++
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnIndexingStart(totalDocuments int) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	log.Printf("Indexing %s documents...\n", formatNumber(totalDocuments))
}

func (c *CLIProgressReporter) OnComplete(stats *indexer.Stats) {
	if c.quiet {
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "✓ Indexing complete: %s symbols from %s files in %.1fs\n",
		formatNumber(stats.Symbols),
		formatNumber(stats.FilesAdded+stats.FilesModified),
		stats.Duration.Seconds())
	fmt.Fprintf(c.out, "  Added:     %s\n", formatNumber(stats.FilesAdded))
	fmt.Fprintf(c.out, "  Modified:  %s\n", formatNumber(stats.FilesModified))
	fmt.Fprintf(c.out, "  Deleted:   %s\n", formatNumber(stats.FilesDeleted))
	fmt.Fprintf(c.out, "  Unchanged: %s\n", formatNumber(stats.FilesUnchanged))
	if stats.FilesSkipped > 0 {
		fmt.Fprintf(c.out, "  Skipped:   %s\n", formatNumber(stats.FilesSkipped))
	}
}

// formatNumber formats an integer with thousands separators.
func formatNumber(n int) string {
	if n < 1000 && n > -1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	sign := ""
	if n < 0 {
		sign, str = "-", str[1:]
	}

	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return sign + result
}
