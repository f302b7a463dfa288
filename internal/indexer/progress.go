package indexer

// ProgressReporter provides callbacks for reporting indexing progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnExtractionStart is called before changed files are extracted and stored.
	OnExtractionStart(totalFiles int)

	// OnFileProcessed is called after each changed file is stored.
	OnFileProcessed(fileName string)

	// OnIndexingStart is called before documents are written to the search index.
	OnIndexingStart(totalDocuments int)

	// OnComplete is called when indexing completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                  {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)      {}
func (n *NoOpProgressReporter) OnExtractionStart(totalFiles int)   {}
func (n *NoOpProgressReporter) OnFileProcessed(fileName string)    {}
func (n *NoOpProgressReporter) OnIndexingStart(totalDocuments int) {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)            {}
