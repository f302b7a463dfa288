package cli

// Test Plan for the progress reporter:
// - formatNumber inserts thousands separators, including negatives
// - OnComplete prints the summary with per-outcome counts
// - Skipped files only appear when there are some
// - Quiet mode writes nothing
// - The extraction bar tolerates file callbacks without a started bar

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mvp-joe/sdkref/internal/indexer"
)

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := map[int]string{
		0:        "0",
		7:        "7",
		999:      "999",
		1000:     "1,000",
		12345:    "12,345",
		1234567:  "1,234,567",
		-1500:    "-1,500",
		-999:     "-999",
		100000:   "100,000",
		10000000: "10,000,000",
	}
	for n, want := range tests {
		assert.Equal(t, want, formatNumber(n), "%d", n)
	}
}

func TestProgressReporter_Summary(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	reporter := newProgressReporter(&out, false)

	reporter.OnComplete(&indexer.Stats{
		FilesAdded:     1200,
		FilesModified:  3,
		FilesDeleted:   2,
		FilesUnchanged: 40,
		Symbols:        15000,
		Duration:       2500 * time.Millisecond,
	})

	text := out.String()
	assert.Contains(t, text, "✓ Indexing complete: 15,000 symbols from 1,203 files in 2.5s")
	assert.Contains(t, text, "Added:     1,200")
	assert.Contains(t, text, "Modified:  3")
	assert.Contains(t, text, "Deleted:   2")
	assert.Contains(t, text, "Unchanged: 40")
	assert.NotContains(t, text, "Skipped")

	out.Reset()
	reporter.OnComplete(&indexer.Stats{FilesSkipped: 4})
	assert.Contains(t, out.String(), "Skipped:   4")
}

func TestProgressReporter_Quiet(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	reporter := newProgressReporter(&out, true)

	reporter.OnDiscoveryStart()
	reporter.OnDiscoveryComplete(3)
	reporter.OnExtractionStart(3)
	reporter.OnFileProcessed("a.go")
	reporter.OnIndexingStart(5)
	reporter.OnComplete(&indexer.Stats{Symbols: 5})

	assert.Empty(t, out.String())
}

func TestProgressReporter_FileBeforeExtraction(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	reporter := newProgressReporter(&out, false)

	assert.NotPanics(t, func() {
		reporter.OnFileProcessed("a.go")
	})
	assert.Equal(t, 0, reporter.processedFiles)

	reporter.OnExtractionStart(2)
	reporter.OnFileProcessed("a.go")
	reporter.OnFileProcessed("b.go")
	assert.Equal(t, 2, reporter.processedFiles)
	assert.Equal(t, 2, reporter.totalFiles)
}
